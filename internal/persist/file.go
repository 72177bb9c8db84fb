// Package persist stores calculator variables between sessions.
package persist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/natefinch/atomic"

	"github.com/zephyrtronium/calc"
)

// File stores variables in a text file with one line per assigned variable,
// like "X=1.5e+00", in letter order.
type File struct {
	// Path is the file name.
	Path string
	// Prec is the precision in bits of loaded values.
	Prec uint
	// Log receives warnings about lines that can't be read. If nil, the
	// default logger is used.
	Log *slog.Logger
}

var _ calc.Persister = (*File)(nil)

// NewFile creates a file persister.
func NewFile(path string, prec uint) *File {
	return &File{Path: path, Prec: prec}
}

func (f *File) logger() *slog.Logger {
	if f.Log == nil {
		return slog.Default()
	}
	return f.Log
}

// Load reads variables from the file. A missing file holds no variables.
func (f *File) Load() (calc.Snapshot, error) {
	r, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return calc.Snapshot{}, nil
		}
		return calc.Snapshot{}, err
	}
	defer r.Close()
	return decode(r, f.Prec, f.logger())
}

// Save atomically replaces the file with the given variables.
func (f *File) Save(s calc.Snapshot) error {
	var b bytes.Buffer
	if err := Encode(&b, s); err != nil {
		return err
	}
	if err := atomic.WriteFile(f.Path, &b); err != nil {
		return fmt.Errorf("couldn't save variables to %s: %w", f.Path, err)
	}
	return nil
}

// Encode writes variables in the file format.
func Encode(w io.Writer, s calc.Snapshot) error {
	bw := bufio.NewWriter(w)
	for i, x := range s {
		if x == nil {
			continue
		}
		bw.WriteByte(byte('A' + i))
		bw.WriteByte('=')
		bw.WriteString(x.Text('e', -1))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Decode reads variables in the file format. Lines that don't start with a
// letter A through Z followed by = are ignored. A line whose value can't be
// parsed leaves its variable unset.
func Decode(r io.Reader, prec uint) (calc.Snapshot, error) {
	return decode(r, prec, slog.Default())
}

func decode(r io.Reader, prec uint, log *slog.Logger) (calc.Snapshot, error) {
	var s calc.Snapshot
	sc := bufio.NewScanner(r)
	// Values at high precision can be long.
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if len(line) < 2 || line[1] != '=' || line[0] < 'A' || line[0] > 'Z' {
			continue
		}
		k := line[0] - 'A'
		x, err := calc.ParseLiteral(string(line[2:]), prec)
		if err != nil {
			log.Warn("skipping unreadable variable", slog.String("var", string(line[:1])), slog.Any("err", err))
			s[k] = nil
			continue
		}
		s[k] = x
	}
	if err := sc.Err(); err != nil {
		return calc.Snapshot{}, err
	}
	return s, nil
}
