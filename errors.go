package calc

import (
	"math/big"
	"strconv"
)

// LexError indicates a character that cannot appear where it does. It
// implements InputError.
type LexError struct {
	// Col is the 1-based column of the offending character.
	Col int
	// Text is the offending character.
	Text string
	// Reason describes what is wrong, e.g. "unexpected operator".
	Reason string
}

func (err *LexError) Error() string {
	return errpos(err.Col, err.Reason+" "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}

// Reasons used in LexError.
const (
	ReasonOperator = "unexpected operator"
	ReasonSyntax   = "invalid syntax"
	ReasonDot      = "unexpected dot"
	ReasonComma    = "unexpected comma: use '.' instead"
	ReasonConflict = "conflicting assignment and equality"
)

// NameError is an error from a lookup for a variable that has not been
// assigned. It implements InputError.
type NameError struct {
	// Col is the position of the variable.
	Col int
	// Name is the letter that was missing.
	Name byte
}

func (err *NameError) Error() string {
	return errpos(err.Col, "undefined variable: "+strconv.QuoteRune(rune(err.Name)))
}

func (err *NameError) Pos() int {
	return err.Col
}

// DivisionError is an error indicating division by zero. It implements
// InputError.
type DivisionError struct {
	// Col is the position of the division operator.
	Col int
}

func (err *DivisionError) Error() string {
	return errpos(err.Col, "division by zero")
}

func (err *DivisionError) Pos() int {
	return err.Col
}

// DomainError is returned when an operation has no real result, such as
// subtracting infinity from itself. It implements InputError and unwraps to
// big.ErrNaN.
type DomainError struct {
	// Col is the position of the operator.
	Col int
	// Op is the operation.
	Op Op
	// X and Y are the operands.
	X, Y *big.Float
}

func (err *DomainError) Error() string {
	return errpos(err.Col, err.X.String()+" "+err.Op.String()+" "+err.Y.String()+" is not a number")
}

func (err *DomainError) Pos() int {
	return err.Col
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}

// AssignError is an error indicating an assignment to something other than a
// variable. It implements InputError.
type AssignError struct {
	// Col is the position of the assignment.
	Col int
}

func (err *AssignError) Error() string {
	return errpos(err.Col, "can only assign to a variable")
}

func (err *AssignError) Pos() int {
	return err.Col
}

// BracketError is an error indicating an open bracket that is never closed.
// It implements InputError.
type BracketError struct {
	// Col is the position of the open bracket.
	Col int
}

func (err *BracketError) Error() string {
	return errpos(err.Col, "open bracket ( with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// OperandError is an error indicating an operator without enough operands,
// as in "2+" or "X=". It implements InputError.
type OperandError struct {
	// Col is the position of the operator.
	Col int
	// Op is the operator missing an operand.
	Op Op
}

func (err *OperandError) Error() string {
	return errpos(err.Col, "missing operand for "+err.Op.String())
}

func (err *OperandError) Pos() int {
	return err.Col
}

// StackError indicates that an expression did not reduce to exactly one
// value, e.g. "(2)3" or "()".
type StackError struct {
	// Len is the number of values left after applying every operator.
	Len int
}

func (err *StackError) Error() string {
	if err.Len == 0 {
		return "malformed expression: no value"
	}
	return "malformed expression: " + strconv.Itoa(err.Len) + " values"
}

// EmptyExpressionError is an error indicating that there was nothing to
// evaluate.
type EmptyExpressionError struct{}

func (err *EmptyExpressionError) Error() string {
	return "no expression"
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// a specific place in the input implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based column of the character or token that caused
	// the error.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*NameError)(nil)
	_ InputError = (*OperandError)(nil)
	_ InputError = (*DivisionError)(nil)
	_ InputError = (*DomainError)(nil)
	_ InputError = (*AssignError)(nil)
	_ InputError = (*BracketError)(nil)
)
