package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/zephyrtronium/calc"
)

const help = `You can use + - * / and parentheses '()'
You can use A-Z as variables, e.g. X=2 then 3(X+1)
a=b compares two values
Enter 'q' to quit
`

var caret = color.New(color.FgRed, color.Bold)

// session evaluates lines of input against one context.
type session struct {
	calc *calc.Context
	out  io.Writer
	errw io.Writer
	log  *slog.Logger
}

// line handles one line of input. It returns true when the user asks to quit.
func (s *session) line(src string) bool {
	switch strings.TrimSpace(src) {
	case "":
		fmt.Fprintln(s.out, "Empty expression")
		return false
	case "h":
		fmt.Fprint(s.out, help)
		return false
	case "q":
		if err := s.calc.Vars().Persist(); err != nil {
			s.log.Warn("saving variables", slog.Any("err", err))
		}
		return true
	}
	r := s.calc.EvalString(src)
	if r.Err != nil {
		s.diagnose(src, r.Err)
		return false
	}
	fmt.Fprintf(s.out, "Result: %s\n", r.Text)
	return false
}

// diagnose prints an evaluation error. Errors at a position also print the
// expression as it was evaluated with a caret under the position.
func (s *session) diagnose(src string, err error) {
	fmt.Fprintf(s.errw, "Error: %v\n", err)
	var ierr calc.InputError
	if !errors.As(err, &ierr) || ierr.Pos() < 1 {
		return
	}
	fmt.Fprintln(s.errw, calc.StripSpaces(src))
	caret.Fprintln(s.errw, strings.Repeat("-", ierr.Pos()-1)+"^")
}

// oneshot evaluates each expression and prints its bare result. The exit code
// is 1 if any expression fails.
func (s *session) oneshot(exprs []string) int {
	code := 0
	for _, src := range exprs {
		r := s.calc.EvalString(src)
		if r.Err != nil {
			s.diagnose(src, r.Err)
			code = 1
			continue
		}
		fmt.Fprintln(s.out, r.Text)
	}
	return code
}

// batch evaluates lines from a non-terminal reader until EOF or quit.
func (s *session) batch(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s.line(sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

// interactive runs a line-editing prompt on a terminal.
func (s *session) interactive(in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("couldn't set up terminal: %w", err)
	}
	defer term.Restore(fd, old)
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, ">  ")
	s.out, s.errw = t, t
	fmt.Fprintln(t, "Start typing an expression or enter 'h' for help")
	for {
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if s.line(line) {
			return nil
		}
	}
}
