package persist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn each time the file at path is written or replaced, until ctx
// is canceled or the returned stop function is called. It watches the
// containing directory so that atomic renames onto path are seen. fn runs on a
// single goroutine; once stop returns, fn is not running and won't be called
// again.
func Watch(ctx context.Context, path string, fn func()) (stop func(), err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("couldn't watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("couldn't watch %s: %w", path, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					fn()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "watching variables", slog.String("path", abs), slog.Any("err", err))
			}
		}
	}()
	stop = func() {
		cancel()
		<-done
	}
	return stop, nil
}
