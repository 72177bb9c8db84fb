// Package calc implements an arbitrary-precision calculator with letter
// variables.
//
// Expressions are written without spaces, like "2(3+4)" or "X=-5/3". The
// operators are + - * / and parentheses, with unary minus. A number or
// variable directly followed by an open parenthesis is a multiplication, so
// "2(3)" is 6. The letters A through Z are variables: "X=expr" assigns to X
// when X is the first thing in the expression, and any other "a=b" compares
// two values and yields true or false.
//
// Evaluation uses two stacks (shunting-yard) over big.Float values of
// DefaultPrec bits unless the Context sets another precision, rounding to
// nearest even. Results are printed with DefaultDigits significant
// digits, so 1/3 is 0.333333333333333333333333333333 rather than the 0.333333
// of a %g-style printf; the Digits option changes this. Variables live in a Vars,
// which can be backed by a Persister so that assignments survive restarts.
package calc
