package calc_test

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/calc"
)

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind calc.ResultKind
		r    string
	}{
		{"num", "1", calc.ResultNumber, "1"},
		{"dec", "1.25", calc.ResultNumber, "1.25"},
		{"add", "2+2", calc.ResultNumber, "4"},
		{"sub", "4-5-6", calc.ResultNumber, "-7"},
		{"mul", "4*5*6", calc.ResultNumber, "120"},
		{"div", "8/4/2", calc.ResultNumber, "1"},
		{"div-frac", "1/4", calc.ResultNumber, "0.25"},
		{"third", "1/3", calc.ResultNumber, "0.333333333333333333333333333333"},
		{"prec", "2+3*4", calc.ResultNumber, "14"},
		{"prec-div", "2-6/3", calc.ResultNumber, "0"},
		{"paren", "2*(3+4)", calc.ResultNumber, "14"},
		{"nested", "((2))*((3)+(4))", calc.ResultNumber, "14"},
		{"implicit", "2(3)", calc.ResultNumber, "6"},
		{"implicit-paren", "(2)(3)", calc.ResultNumber, "6"},
		{"implicit-sum", "2(3+4)", calc.ResultNumber, "14"},
		{"neg", "-5", calc.ResultNumber, "-5"},
		{"negneg", "--5", calc.ResultNumber, "5"},
		{"negnegneg", "---5", calc.ResultNumber, "-5"},
		{"plus", "+5", calc.ResultNumber, "5"},
		{"neg-mul", "-2*3", calc.ResultNumber, "-6"},
		{"mul-neg", "2*-3", calc.ResultNumber, "-6"},
		{"sub-neg", "2--3", calc.ResultNumber, "5"},
		{"neg-paren", "-(2+3)", calc.ResultNumber, "-5"},
		{"neg-zero", "-0", calc.ResultNumber, "-0"},
		{"tenth", "0.1+0.2", calc.ResultNumber, "0.3"},
		{"big", "12345678901234567890*10", calc.ResultNumber, "123456789012345678900"},
		{"huge", "1000000000000000000000000000000*10", calc.ResultNumber, "1e+31"},
		{"extra-close", "2+3)", calc.ResultNumber, "5"},
		{"eq", "3=3", calc.ResultBool, "true"},
		{"neq", "3=4", calc.ResultBool, "false"},
		{"eq-expr", "1+2=6/2", calc.ResultBool, "true"},
		{"eq-paren", "(3=3)", calc.ResultBool, "true"},
		{"eq-zero", "0=-0", calc.ResultBool, "true"},
		{"eq-chain", "2=2=1", calc.ResultBool, "true"},
		{"eq-then-add", "(1=1)+1", calc.ResultNumber, "2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := calc.EvalString(c.src)
			if r.Err != nil {
				t.Fatalf("evaluating %q: %v", c.src, r.Err)
			}
			if r.Kind != c.kind {
				t.Errorf("evaluating %q: want %v result, got %v", c.src, c.kind, r.Kind)
			}
			if r.Text != c.r {
				t.Errorf("evaluating %q: want %q, got %q", c.src, c.r, r.Text)
			}
		})
	}
}

func TestEvalVars(t *testing.T) {
	ctx := calc.NewContext()
	steps := []struct {
		src string
		r   string
	}{
		{"X=5", "5"},
		{"X+1", "6"},
		{"X", "5"},
		{"Y=X*2", "10"},
		{"Y", "10"},
		{"X=Y", "10"},
		{"X", "10"},
		{"Z=-X", "-10"},
		{"Z=-3", "-3"},
		{"-Z", "3"},
		{"X(2)", "20"},
		{"X=X+1", "11"},
		{"2X", ""},
	}
	for _, s := range steps {
		r := ctx.EvalString(s.src)
		if s.r == "" {
			if r.Kind != calc.ResultError {
				t.Errorf("evaluating %q: want error, got %v %q", s.src, r.Kind, r.Text)
			}
			continue
		}
		if r.Err != nil {
			t.Fatalf("evaluating %q: %v", s.src, r.Err)
		}
		if r.Text != s.r {
			t.Errorf("evaluating %q: want %q, got %q", s.src, s.r, r.Text)
		}
	}
}

func TestEvalUndefNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    byte
	}{
		{"x", "Y", 'Y'},
		{"plus", "+Y", 'Y'},
		{"neg", "-Y", 'Y'},
		{"add-lhs", "Y+1", 'Y'},
		{"add-rhs", "1+Y", 'Y'},
		{"sub-lhs", "Y-1", 'Y'},
		{"sub-rhs", "1-Y", 'Y'},
		{"mul-lhs", "Y*1", 'Y'},
		{"mul-rhs", "1*Y", 'Y'},
		{"div-lhs", "Y/1", 'Y'},
		{"div-rhs", "1/Y", 'Y'},
		{"eq", "1=Y", 'Y'},
		{"assign", "X=Y", 'Y'},
		{"self", "X=X", 'X'},
		{"implicit", "Y(2)", 'Y'},
	}
	ure := regexp.MustCompile(`(?i)\bundef`)
	vre := regexp.MustCompile(`(?i)\bvar`)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := calc.NewContext()
			r := ctx.EvalString(c.src)
			if r.Kind != calc.ResultError {
				t.Fatalf("evaluating %q gave %v %q", c.src, r.Kind, r.Text)
			}
			var u *calc.NameError
			if !errors.As(r.Err, &u) {
				t.Fatalf("error was %#v, not NameError", r.Err)
			}
			if u.Name != c.r {
				t.Errorf("NameError on %c, want %c", u.Name, c.r)
			}
			msg := r.Err.Error()
			if !ure.MatchString(msg) {
				t.Errorf(`%q doesn't mention "undef"`, msg)
			}
			if !vre.MatchString(msg) {
				t.Errorf(`%q doesn't mention "var"`, msg)
			}
			if !strings.Contains(msg, string(c.r)) {
				t.Errorf("%q doesn't mention %c", msg, c.r)
			}
			if ctx.Vars().IsSet('X') {
				t.Errorf("evaluating %q set X", c.src)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  interface{}
	}{
		{"div-zero", "2/0", new(*calc.DivisionError)},
		{"div-neg-zero", "2/-0", new(*calc.DivisionError)},
		{"div-zero-expr", "2/(1-1)", new(*calc.DivisionError)},
		{"zero-div-zero", "0/0", new(*calc.DivisionError)},
		{"lex", "2^3", new(*calc.LexError)},
		{"empty", "", new(*calc.EmptyExpressionError)},
		{"spaces", "   ", new(*calc.EmptyExpressionError)},
		{"adjacent", "(2)3", new(*calc.StackError)},
		{"adjacent-vars", "XY", new(*calc.StackError)},
		{"dangling", "2+", new(*calc.OperandError)},
		{"dangling-paren", "(2+)", new(*calc.OperandError)},
		{"dangling-eq", "1=", new(*calc.OperandError)},
		{"dangling-assign", "X=", new(*calc.OperandError)},
		{"lone-neg", "-", new(*calc.OperandError)},
		{"only-parens", "()", new(*calc.StackError)},
		{"unclosed", "(2+3", new(*calc.BracketError)},
		{"unclosed-implicit", "2(3", new(*calc.BracketError)},
		{"assign-num", "2X", new(*calc.StackError)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := calc.EvalString(c.src)
			if r.Kind != calc.ResultError {
				t.Fatalf("evaluating %q gave %v %q", c.src, r.Kind, r.Text)
			}
			if r.Text != "" {
				t.Errorf("error result has text %q", r.Text)
			}
			if !errors.As(r.Err, c.err) {
				t.Errorf("evaluating %q: error %#v is not %T", c.src, r.Err, c.err)
			}
		})
	}
}

func TestEvalMissingOperand(t *testing.T) {
	cases := []struct {
		src string
		op  calc.Op
		msg string
	}{
		{"2+", calc.OpAdd, "2: missing operand for +"},
		{"1=", calc.OpEqual, "2: missing operand for =="},
		{"X=", calc.OpSetVar, "2: missing operand for set"},
		{"-", calc.OpNeg, "1: missing operand for neg"},
		{"(2+)", calc.OpAdd, "3: missing operand for +"},
	}
	for _, c := range cases {
		r := calc.EvalString(c.src)
		var oerr *calc.OperandError
		if !errors.As(r.Err, &oerr) {
			t.Errorf("evaluating %q: want OperandError, got %#v", c.src, r.Err)
			continue
		}
		if oerr.Op != c.op {
			t.Errorf("evaluating %q: missing operand for %v, want %v", c.src, oerr.Op, c.op)
		}
		if msg := r.Err.Error(); msg != c.msg {
			t.Errorf("evaluating %q: message %q, want %q", c.src, msg, c.msg)
		}
	}
}

func TestEvalInputErrorPos(t *testing.T) {
	cases := []struct {
		src string
		pos int
	}{
		{"2/0", 2},
		{"1+2/(3-3)", 4},
		{"1+Y", 3},
		{"(1+2", 1},
		{"1+2$", 4},
		{"2+", 2},
		{"X=", 2},
		{"-", 1},
	}
	for _, c := range cases {
		r := calc.EvalString(c.src)
		var ierr calc.InputError
		if !errors.As(r.Err, &ierr) {
			t.Errorf("evaluating %q: error %#v is not InputError", c.src, r.Err)
			continue
		}
		if ierr.Pos() != c.pos {
			t.Errorf("evaluating %q: error at %d, want %d (%v)", c.src, ierr.Pos(), c.pos, ierr)
		}
	}
}

func TestEvalDomain(t *testing.T) {
	vars := calc.NewVars(nil)
	vars.Set('I', new(big.Float).SetInf(false))
	ctx := calc.NewContext(calc.WithVars(vars))
	for _, src := range []string{"I-I", "I/I", "0*I", "-I+I"} {
		r := ctx.EvalString(src)
		var derr *calc.DomainError
		if !errors.As(r.Err, &derr) {
			t.Errorf("evaluating %q: want DomainError, got %v %q %v", src, r.Kind, r.Text, r.Err)
		}
		if !errors.As(r.Err, new(big.ErrNaN)) {
			t.Errorf("evaluating %q: %v doesn't unwrap to big.ErrNaN", src, r.Err)
		}
	}
	if r := ctx.EvalString("I+1"); r.Text != "+Inf" {
		t.Errorf("I+1 gave %v %q", r.Err, r.Text)
	}
}

func TestEvalNoRollback(t *testing.T) {
	ctx := calc.NewContext()
	if r := ctx.EvalString("X=4"); r.Err != nil {
		t.Fatal(r.Err)
	}
	// The division fails before the assignment applies.
	if r := ctx.EvalString("X=1/0"); r.Err == nil {
		t.Fatalf("X=1/0 gave %q", r.Text)
	}
	if r := ctx.EvalString("X"); r.Text != "4" {
		t.Errorf("X changed to %q after failed assignment", r.Text)
	}
}

func TestEvalWrapped(t *testing.T) {
	exprs := []string{
		"2+2", "2*(3+4)", "2(3)", "--5", "-5", "1/3", "(2)(3)-1", "3=3", "1=2",
		"7/2*2", "1-2-3", "-(2-3)*4",
	}
	for _, src := range exprs {
		want := calc.EvalString(src)
		for _, w := range []string{"(" + src + ")", "((" + src + "))"} {
			got := calc.EvalString(w)
			if got.Kind != want.Kind || got.Text != want.Text {
				t.Errorf("%q gave %v %q but %q gave %v %q", src, want.Kind, want.Text, w, got.Kind, got.Text)
			}
		}
	}
}

func TestEvalLexErrorKeepsVars(t *testing.T) {
	ctx := calc.NewContext()
	ctx.EvalString("A=1")
	ctx.EvalString("B=2.5")
	before := ctx.Vars().Snapshot()
	for _, src := range []string{"A=3,5", "B=1.2.3", "A=1=2", "C=2x", "*A"} {
		r := ctx.EvalString(src)
		var lerr *calc.LexError
		if !errors.As(r.Err, &lerr) {
			t.Fatalf("%q gave %v, want LexError", src, r.Err)
		}
	}
	after := ctx.Vars().Snapshot()
	for i := range before {
		switch {
		case before[i] == nil && after[i] == nil: // do nothing
		case before[i] == nil || after[i] == nil || before[i].Cmp(after[i]) != 0:
			t.Errorf("%c changed from %v to %v", 'A'+i, before[i], after[i])
		}
	}
}

func TestEvalDigits(t *testing.T) {
	cases := []struct {
		digits int
		r      string
	}{
		{0, "0.666666666666666666666666666667"},
		{5, "0.66667"},
		{1, "0.7"},
	}
	for _, c := range cases {
		r := calc.EvalString("2/3", calc.Digits(c.digits))
		if r.Text != c.r {
			t.Errorf("%d digits: want %q, got %q", c.digits, c.r, r.Text)
		}
	}
	r := calc.EvalString("2/3", calc.Digits(-1), calc.Prec(8))
	if r.Text != "0.668" {
		t.Errorf("exact 8-bit 2/3: got %q", r.Text)
	}
}

type failPersister struct {
	saves int
}

func (p *failPersister) Load() (calc.Snapshot, error) {
	return calc.Snapshot{}, nil
}

func (p *failPersister) Save(calc.Snapshot) error {
	p.saves++
	return errors.New("disk full")
}

func TestEvalPersistFailure(t *testing.T) {
	p := new(failPersister)
	ctx := calc.NewContext(calc.WithVars(calc.NewVars(p)))
	r := ctx.EvalString("X=2")
	if r.Err != nil || r.Text != "2" {
		t.Errorf("assignment with failing persister gave %v %q", r.Err, r.Text)
	}
	if p.saves != 1 {
		t.Errorf("saved %d times", p.saves)
	}
	ctx.EvalString("X+1")
	ctx.EvalString("X=1/0")
	if p.saves != 1 {
		t.Errorf("saved %d times after non-assignments", p.saves)
	}
}

func BenchmarkEval(b *testing.B) {
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		ctx := calc.NewContext()
		tokens, err := calc.Tokenize("2+3*(4-1)/7", 0)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Eval(tokens)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ctx := calc.NewContext()
		ctx.EvalString("X=2")
		ctx.EvalString("Y=3")
		tokens, err := calc.Tokenize("X+Y*X", 0)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Eval(tokens)
		}
	})
}

func Example() {
	ctx := calc.NewContext()
	for _, src := range []string{"X = 2", "X(X+1)", "X/3", "X*X = 4", "Y + 1"} {
		r := ctx.EvalString(src)
		if r.Err != nil {
			fmt.Printf("%-9s error: %v\n", src, r.Err)
			continue
		}
		fmt.Printf("%-9s %s\n", src, r.Text)
	}

	// Output:
	// X = 2     2
	// X(X+1)    6
	// X/3       0.666666666666666666666666666667
	// X*X = 4   true
	// Y + 1     error: 1: undefined variable: 'Y'
}
