package calc

import (
	"errors"
	"math/big"
	"strings"
)

// DefaultPrec is the precision in bits of numbers when a context doesn't set
// one.
const DefaultPrec = 256

// DefaultDigits is the number of significant decimal digits used to format
// results when a context doesn't set a digit count.
const DefaultDigits = 30

// newNum creates a zero number with the given precision. Every number the
// calculator creates rounds to nearest even.
func newNum(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(big.ToNearestEven)
}

// ParseNumber parses decimal text with an optional leading sign, digits, and
// at most one decimal point.
func ParseNumber(s string, prec uint) (*big.Float, error) {
	if s == "" {
		return nil, errBadNumber
	}
	body := strings.TrimLeft(s[:1], "+-") + s[1:]
	if body == "" || body == "." || strings.Count(body, ".") > 1 {
		return nil, errBadNumber
	}
	for _, c := range body {
		if c != '.' && (c < '0' || c > '9') {
			return nil, errBadNumber
		}
	}
	return parseBase(s, prec, 10)
}

// ParseLiteral parses any literal big.Float understands in base 0, including
// decimal exponents, hexadecimal mantissas, and infinities. This is the form
// in which persisted variables are read.
func ParseLiteral(s string, prec uint) (*big.Float, error) {
	return parseBase(s, prec, 0)
}

func parseBase(s string, prec uint, base int) (*big.Float, error) {
	r, _, err := newNum(prec).Parse(s, base)
	if err != nil {
		return nil, err
	}
	return r, nil
}

var errBadNumber = errors.New("calc: invalid number")

// FormatNumber formats x in %g style with the given number of significant
// digits. If digits is negative, the result is the shortest text that reads
// back to x exactly.
func FormatNumber(x *big.Float, digits int) string {
	if digits == 0 {
		digits = DefaultDigits
	}
	return x.Text('g', digits)
}

// arith applies a binary operation to copies of its operands, with big.ErrNaN
// panics converted to DomainError.
func arith(op Op, l, r *big.Float, prec uint, col int) (x *big.Float, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		x, err = nil, &DomainError{Col: col, Op: op, X: l, Y: r}
	}()
	x = newNum(prec)
	switch op {
	case OpAdd:
		x.Add(l, r)
	case OpSub:
		x.Sub(l, r)
	case OpMul:
		x.Mul(l, r)
	case OpDiv:
		x.Quo(l, r)
	default:
		panic("calc: arith on " + op.String())
	}
	return x, nil
}

// isTrue reports whether x is the value equality yields for true.
func isTrue(x *big.Float) bool {
	return x.Cmp(big.NewFloat(1)) == 0
}
