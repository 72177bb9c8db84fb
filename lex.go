package calc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	src    string
	prec   uint
	tokens []Token
	// operand is whether the next token must start an operand. It is true
	// at the start and after any operator or open bracket.
	operand bool
	// assign is whether the expression is an assignment.
	assign bool
}

// Tokenize splits a space-free expression into tokens, parsing numbers to prec
// bits (DefaultPrec if prec is 0). If the expression is invalid, the result is
// nil with a *LexError.
func Tokenize(src string, prec uint) ([]Token, error) {
	if prec == 0 {
		prec = DefaultPrec
	}
	l := lexer{
		src:  src,
		prec: prec,
		// Each byte yields at most one token, plus one implicit
		// multiplication for each open bracket.
		tokens:  make([]Token, 0, 2*len(src)),
		operand: true,
	}
	for i := 0; i < len(src); i++ {
		var err error
		i, err = l.next(i)
		if err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

// StripSpaces removes all whitespace from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func (l *lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

func (l *lexer) last() Token {
	if len(l.tokens) == 0 {
		return Token{}
	}
	return l.tokens[len(l.tokens)-1]
}

// next scans the token starting at byte i and returns the index of the last
// byte it consumed.
func (l *lexer) next(i int) (int, error) {
	c := l.src[i]
	col := i + 1
	switch {
	case 'A' <= c && c <= 'Z':
		l.emit(Token{Kind: TokenVar, Var: c, Col: col})
		l.operand = false
	case c == '=' && len(l.tokens) > 0:
		switch {
		case len(l.tokens) == 1 && l.tokens[0].Kind == TokenVar:
			l.emit(Token{Kind: TokenOp, Op: OpSetVar, Col: col})
			l.assign = true
		case !l.assign:
			l.emit(Token{Kind: TokenOp, Op: OpEqual, Col: col})
		default:
			return i, l.error(i, ReasonConflict)
		}
		l.operand = true
	case '0' <= c && c <= '9':
		return l.number(i)
	case c == '(':
		if l.last().operand() {
			// 2(x) -> 2 * (x)
			l.emit(Token{Kind: TokenOp, Op: OpMul, Col: col})
		}
		l.emit(Token{Kind: TokenOp, Op: OpLeft, Col: col})
		l.operand = true
	case c == ')':
		l.emit(Token{Kind: TokenOp, Op: OpRight, Col: col})
	case l.operand:
		switch c {
		case '+':
			// Unary plus does nothing.
		case '-':
			if l.last().is(OpNeg) {
				// --x -> x
				l.tokens = l.tokens[:len(l.tokens)-1]
			} else {
				l.emit(Token{Kind: TokenOp, Op: OpNeg, Col: col})
			}
		default:
			return i, l.error(i, ReasonOperator)
		}
	default:
		var op Op
		switch c {
		case '+':
			op = OpAdd
		case '-':
			op = OpSub
		case '*':
			op = OpMul
		case '/':
			op = OpDiv
		default:
			return i, l.error(i, ReasonSyntax)
		}
		l.emit(Token{Kind: TokenOp, Op: op, Col: col})
		l.operand = true
	}
	return i, nil
}

// number scans a number starting at byte i.
func (l *lexer) number(i int) (int, error) {
	start := i
	dot := false
scan:
	for ; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case '0' <= c && c <= '9':
		case c == '.':
			if dot {
				return i, l.error(i, ReasonDot)
			}
			dot = true
		case c == ',':
			return i, l.error(i, ReasonComma)
		default:
			break scan
		}
	}
	x, err := ParseNumber(l.src[start:i], l.prec)
	if err != nil {
		// The scan above only accepts valid numbers.
		panic("calc: lexed invalid number " + l.src[start:i] + ": " + err.Error())
	}
	l.emit(Token{Kind: TokenNum, Num: x, Col: start + 1})
	l.operand = false
	return i - 1, nil
}

func (l *lexer) error(i int, reason string) error {
	// Drop everything scanned so far so that no partial result escapes.
	l.tokens = nil
	r, _ := utf8.DecodeRuneInString(l.src[i:])
	return &LexError{
		Col:    i + 1,
		Text:   string(r),
		Reason: reason,
	}
}
