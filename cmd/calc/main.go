package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/config"
	"github.com/zephyrtronium/calc/internal/persist"
)

const usage = `usage: calc [options] [expression ...]

options:
  -c FILE   read settings from a JSON config file
  -p BITS   precision of calculations in bits
  -d N      significant digits in results (default 30, far more than
            printf's usual 6); -1 for exact
  -s STORE  variable store: file, sqlite, or none
  -f PATH   variable file or database
  -w        reload variables when another process changes them
  -n        disable colored diagnostics
  -l LEVEL  log level: debug, info, warn, error, or none
  -h        show this help

With no expressions, calc reads one expression per line from standard input.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, optind, err := getopt.Getopts(args, "c:p:d:s:f:wnl:h")
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return 2
	}
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		if opt.Option == 'c' {
			cfg, err = config.Load(opt.Value)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
		}
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'p':
			p, err := strconv.ParseUint(opt.Value, 10, 32)
			if err != nil || p == 0 {
				fmt.Fprintf(stderr, "invalid precision %q\n", opt.Value)
				return 2
			}
			cfg.Precision = uint(p)
		case 'd':
			d, err := strconv.Atoi(opt.Value)
			if err != nil || d == 0 {
				fmt.Fprintf(stderr, "invalid digit count %q\n", opt.Value)
				return 2
			}
			cfg.Digits = d
		case 's':
			cfg.Store = opt.Value
		case 'f':
			cfg.VarsPath = opt.Value
		case 'w':
			cfg.Watch = true
		case 'n':
			cfg.Color = false
		case 'l':
			cfg.LogLevel = opt.Value
		case 'h':
			fmt.Fprint(stdout, usage)
			return 0
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if !cfg.Color {
		color.NoColor = true
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	p, closer, err := openStore(cfg, log)
	if err != nil {
		log.Error("opening variable store", slog.String("store", cfg.Store), slog.Any("err", err))
		return 1
	}
	defer closer()
	vars := calc.NewVars(p)
	if err := vars.Hydrate(); err != nil {
		// Start with no variables rather than refusing to calculate.
		log.Warn("loading variables", slog.String("path", cfg.VarsPath), slog.Any("err", err))
	}
	if cfg.Watch && p != nil {
		stop, err := persist.Watch(ctx, cfg.VarsPath, func() {
			changed, err := vars.Reload()
			if err != nil {
				log.Warn("reloading variables", slog.String("path", cfg.VarsPath), slog.Any("err", err))
				return
			}
			if changed {
				log.Debug("reloaded variables", slog.String("path", cfg.VarsPath))
			}
		})
		if err != nil {
			log.Warn("watching variables", slog.Any("err", err))
		} else {
			defer stop()
		}
	}

	s := &session{
		calc: calc.NewContext(calc.WithVars(vars), calc.Prec(cfg.Precision), calc.Digits(cfg.Digits), calc.WithLogger(log)),
		out:  stdout,
		errw: stderr,
		log:  log,
	}
	if exprs := args[optind:]; len(exprs) > 0 {
		return s.oneshot(exprs)
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if err := s.interactive(f, stdout); err != nil {
			log.Error("reading input", slog.Any("err", err))
			return 1
		}
		return 0
	}
	if err := s.batch(stdin); err != nil {
		log.Error("reading input", slog.Any("err", err))
		return 1
	}
	return 0
}

// openStore opens the configured variable store. The returned function closes
// it.
func openStore(cfg *config.Config, log *slog.Logger) (calc.Persister, func(), error) {
	switch cfg.Store {
	case config.StoreFile:
		f := persist.NewFile(cfg.VarsPath, cfg.Precision)
		f.Log = log
		return f, func() {}, nil
	case config.StoreSQLite:
		db, err := persist.OpenSQLite(cfg.VarsPath, cfg.Precision)
		if err != nil {
			return nil, nil, err
		}
		db.Log = log
		return db, func() {
			if err := db.Close(); err != nil {
				log.Warn("closing variable database", slog.Any("err", err))
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}
