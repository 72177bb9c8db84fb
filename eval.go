package calc

import (
	"log/slog"
	"math/big"
)

// Context is a context for evaluating expressions. Each call to Eval keeps its
// own stacks, so a Context may be used concurrently; its Vars serializes
// assignments.
type Context struct {
	vars   *Vars
	prec   uint
	digits int
	log    *slog.Logger
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption(*Context)
}

type (
	varsopt   struct{ v *Vars }
	precopt   uint
	digitsopt int
	logopt    struct{ l *slog.Logger }
)

func (o varsopt) ctxOption(ctx *Context)   { ctx.vars = o.v }
func (o precopt) ctxOption(ctx *Context)   { ctx.prec = uint(o) }
func (o digitsopt) ctxOption(ctx *Context) { ctx.digits = int(o) }
func (o logopt) ctxOption(ctx *Context)    { ctx.log = o.l }

// WithVars sets the variable table the context reads and assigns.
func WithVars(v *Vars) ContextOption {
	return varsopt{v}
}

// Prec sets the precision of calculations in bits. Zero means DefaultPrec.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// Digits sets the number of significant digits in numeric results. Zero means
// DefaultDigits; a negative count formats results exactly.
func Digits(n int) ContextOption {
	return digitsopt(n)
}

// WithLogger sets the logger for failures that don't affect results, namely
// failing to persist variables.
func WithLogger(l *slog.Logger) ContextOption {
	return logopt{l}
}

// NewContext creates a new evaluation context. Without options, it has a fresh
// Vars with no persister, DefaultPrec precision, and DefaultDigits digits.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: DefaultPrec, digits: DefaultDigits}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.ctxOption(&ctx)
	}
	if ctx.vars == nil {
		ctx.vars = NewVars(nil)
	}
	if ctx.prec == 0 {
		ctx.prec = DefaultPrec
	}
	if ctx.digits == 0 {
		ctx.digits = DefaultDigits
	}
	if ctx.log == nil {
		ctx.log = slog.Default()
	}
	return &ctx
}

// Vars returns the context's variables.
func (ctx *Context) Vars() *Vars {
	return ctx.vars
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// ResultKind identifies which part of a Result is populated.
type ResultKind int8

const (
	// ResultError means Err is set.
	ResultError ResultKind = iota
	// ResultNumber means Text is a formatted number.
	ResultNumber
	// ResultBool means Text is "true" or "false".
	ResultBool
)

func (k ResultKind) String() string {
	switch k {
	case ResultError:
		return "error"
	case ResultNumber:
		return "number"
	case ResultBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// Result is the outcome of evaluating an expression.
type Result struct {
	Kind ResultKind
	// Text is the rendered value when Kind is ResultNumber or ResultBool.
	Text string
	// Err is the reason evaluation failed when Kind is ResultError.
	Err error
}

func errResult(err error) Result {
	return Result{Kind: ResultError, Err: err}
}

// EvalString strips whitespace from src, tokenizes it, and evaluates it.
func (ctx *Context) EvalString(src string) Result {
	tokens, err := Tokenize(StripSpaces(src), ctx.prec)
	if err != nil {
		return errResult(err)
	}
	return ctx.Eval(tokens)
}

// operand is a value on the operand stack: either a number or a variable that
// is looked up when an operator uses it.
type operand struct {
	num  *big.Float
	name byte
	col  int
}

// evaluation is the state of a single call to Eval.
type evaluation struct {
	ctx  *Context
	ops  []Token
	vals []operand
	// boolean is set when the last operator applied was an equality.
	boolean bool
}

// Eval evaluates a tokenized expression. Assignments that complete before an
// error remain in effect.
func (ctx *Context) Eval(tokens []Token) Result {
	if len(tokens) == 0 {
		return errResult(&EmptyExpressionError{})
	}
	ev := evaluation{
		ctx:  ctx,
		ops:  make([]Token, 0, len(tokens)),
		vals: make([]operand, 0, len(tokens)),
	}
	if err := ev.run(tokens); err != nil {
		return errResult(err)
	}
	return ev.result()
}

func (ev *evaluation) run(tokens []Token) error {
	for _, t := range tokens {
		switch t.Kind {
		case TokenNum:
			ev.vals = append(ev.vals, operand{num: newNum(ev.ctx.prec).Set(t.Num), col: t.Col})
		case TokenVar:
			ev.vals = append(ev.vals, operand{name: t.Var, col: t.Col})
		case TokenOp:
			switch t.Op {
			case OpLeft:
				ev.ops = append(ev.ops, t)
			case OpRight:
				// A close bracket with no open bracket ends up popping
				// everything, which is harmless.
				for len(ev.ops) > 0 {
					top := ev.popOp()
					if top.is(OpLeft) {
						break
					}
					if err := ev.apply(top); err != nil {
						return err
					}
				}
			default:
				for len(ev.ops) > 0 && ev.ops[len(ev.ops)-1].Op.yields(t.Op) {
					if err := ev.apply(ev.popOp()); err != nil {
						return err
					}
				}
				ev.ops = append(ev.ops, t)
			}
		default:
			panic("calc: invalid token " + t.String())
		}
	}
	for len(ev.ops) > 0 {
		top := ev.popOp()
		if top.is(OpLeft) {
			return &BracketError{Col: top.Col}
		}
		if err := ev.apply(top); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluation) popOp() Token {
	t := ev.ops[len(ev.ops)-1]
	ev.ops = ev.ops[:len(ev.ops)-1]
	return t
}

// pop removes the top operand. The second result is false if the stack is
// empty.
func (ev *evaluation) pop() (operand, bool) {
	if len(ev.vals) == 0 {
		return operand{}, false
	}
	r := ev.vals[len(ev.vals)-1]
	ev.vals = ev.vals[:len(ev.vals)-1]
	return r, true
}

func (ev *evaluation) push(x *big.Float, col int) {
	ev.vals = append(ev.vals, operand{num: x, col: col})
}

// resolve gets the numeric value of an operand.
func (ev *evaluation) resolve(x operand) (*big.Float, error) {
	if x.num != nil {
		return x.num, nil
	}
	v, ok := ev.ctx.vars.Get(x.name)
	if !ok {
		return nil, &NameError{Col: x.col, Name: x.name}
	}
	return v, nil
}

// apply applies an operator to the operand stack.
func (ev *evaluation) apply(op Token) error {
	ev.boolean = false
	if op.Op == OpNeg {
		x, ok := ev.pop()
		if !ok {
			return &OperandError{Col: op.Col, Op: op.Op}
		}
		v, err := ev.resolve(x)
		if err != nil {
			return err
		}
		ev.push(newNum(ev.ctx.prec).Neg(v), op.Col)
		return nil
	}
	r, ok := ev.pop()
	if !ok {
		return &OperandError{Col: op.Col, Op: op.Op}
	}
	l, ok := ev.pop()
	if !ok {
		return &OperandError{Col: op.Col, Op: op.Op}
	}
	switch op.Op {
	case OpSetVar:
		if l.num != nil {
			return &AssignError{Col: op.Col}
		}
		v, saveErr, err := ev.ctx.vars.commit(l.name, r, ev.ctx.prec)
		if err != nil {
			return err
		}
		ev.push(v, l.col)
		if saveErr != nil {
			ev.ctx.log.Warn("saving variables failed", slog.String("var", string(rune(l.name))), slog.Any("err", saveErr))
		}
		return nil
	case OpEqual, OpAdd, OpSub, OpMul, OpDiv:
		// handled below
	default:
		panic("calc: cannot apply " + op.String())
	}
	x, err := ev.resolve(l)
	if err != nil {
		return err
	}
	y, err := ev.resolve(r)
	if err != nil {
		return err
	}
	switch op.Op {
	case OpEqual:
		v := newNum(ev.ctx.prec)
		if x.Cmp(y) == 0 {
			v.SetInt64(1)
		}
		ev.push(v, l.col)
		ev.boolean = true
		return nil
	case OpDiv:
		if y.Sign() == 0 {
			return &DivisionError{Col: op.Col}
		}
	}
	v, err := arith(op.Op, x, y, ev.ctx.prec, op.Col)
	if err != nil {
		return err
	}
	ev.push(v, l.col)
	return nil
}

// result renders the single remaining operand.
func (ev *evaluation) result() Result {
	if len(ev.vals) != 1 {
		return errResult(&StackError{Len: len(ev.vals)})
	}
	v, err := ev.resolve(ev.vals[0])
	if err != nil {
		return errResult(err)
	}
	if ev.boolean {
		if isTrue(v) {
			return Result{Kind: ResultBool, Text: "true"}
		}
		return Result{Kind: ResultBool, Text: "false"}
	}
	return Result{Kind: ResultNumber, Text: FormatNumber(v, ev.ctx.digits)}
}

// EvalString is a shortcut to evaluate a string expression in a new context.
func EvalString(src string, opts ...ContextOption) Result {
	return NewContext(opts...).EvalString(src)
}
