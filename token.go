package calc

import (
	"math/big"
	"strconv"
	"strings"
)

// Token is a single lexical element of an expression.
type Token struct {
	// Kind selects which of the other fields is meaningful.
	Kind TokenKind
	// Num is the value of a TokenNum.
	Num *big.Float
	// Var is the letter of a TokenVar, 'A' through 'Z'.
	Var byte
	// Op is the operator of a TokenOp.
	Op Op
	// Col is the 1-based column of the token in the source. Implicit
	// multiplications have the column of the bracket that implies them.
	Col int
}

// TokenKind is the kind of a token.
type TokenKind int8

const (
	tokenNone TokenKind = iota
	// TokenNum is a number literal.
	TokenNum
	// TokenVar is a single-letter variable, not yet looked up.
	TokenVar
	// TokenOp is an operator or bracket.
	TokenOp
)

func (k TokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case TokenNum:
		return "Num"
	case TokenVar:
		return "Var"
	case TokenOp:
		return "Op"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Op is an operator kind.
type Op int8

const (
	opNone Op = iota

	OpAdd    // a + b
	OpSub    // a - b
	OpNeg    // -a
	OpMul    // a * b, or an implicit a(b)
	OpDiv    // a / b
	OpLeft   // (
	OpRight  // )
	OpSetVar // X = a
	OpEqual  // a = b
)

var opnames = [...]string{
	opNone:   "None",
	OpAdd:    "+",
	OpSub:    "-",
	OpNeg:    "neg",
	OpMul:    "*",
	OpDiv:    "/",
	OpLeft:   "(",
	OpRight:  ")",
	OpSetVar: "set",
	OpEqual:  "==",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opnames[op]
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
}

// info gets the precedence and associativity of an operator. Brackets have
// none; the evaluator treats them structurally.
func (op Op) info() operator {
	switch op {
	case OpAdd, OpSub:
		return operator{1, false}
	case OpMul, OpDiv:
		return operator{2, false}
	case OpNeg:
		return operator{5, false}
	case OpSetVar:
		return operator{0, true}
	case OpEqual:
		return operator{0, false}
	default:
		return operator{}
	}
}

// Prec returns the operator's precedence. Higher binds tighter.
func (op Op) Prec() int {
	return int(op.info().prec)
}

// RightAssoc returns whether the operator is right-associative.
func (op Op) RightAssoc() bool {
	return op.info().right
}

// yields reports whether op, on top of the operator stack, must be applied
// before pushing cur.
func (op Op) yields(cur Op) bool {
	if op == OpLeft || op == OpRight {
		return false
	}
	t, c := op.info(), cur.info()
	if t.prec != c.prec {
		return t.prec > c.prec
	}
	return !c.right
}

func (t Token) is(op Op) bool {
	return t.Kind == TokenOp && t.Op == op
}

// operand reports whether t completes an operand, so that a following open
// bracket is an implicit multiplication.
func (t Token) operand() bool {
	return t.Kind == TokenNum || t.Kind == TokenVar || t.is(OpRight)
}

func (t Token) String() string {
	var b strings.Builder
	t.fmt(&b)
	return b.String()
}

func (t Token) fmt(b *strings.Builder) {
	switch t.Kind {
	case TokenNum:
		b.WriteString(t.Num.Text('f', -1))
	case TokenVar:
		b.WriteByte(t.Var)
	case TokenOp:
		b.WriteString(t.Op.String())
	default:
		// Invalid tokens use invalid characters.
		b.WriteString("$#$")
	}
	b.WriteByte('@')
	b.WriteString(strconv.Itoa(t.Col))
}

// FormatTokens writes a token list as space-separated tokens with their
// columns, for diagnostics.
func FormatTokens(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		t.fmt(&b)
	}
	return b.String()
}
