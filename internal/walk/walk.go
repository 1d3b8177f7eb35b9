// Package walk fans a per-file handler out over a directory tree under a
// bounded concurrency limit.
//
// Handler failures are isolated: each is logged with its path and collected
// for the caller, and never delays or cancels sibling invocations. A walk
// is complete only once every dispatched invocation has settled.
package walk

import (
	"context"
	"fmt"
	iofs "io/fs"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"notekeeper/internal/fs"
)

// DefaultLimit bounds concurrent handler invocations when Options.Limit
// is zero.
const DefaultLimit = 64

// DefaultSuffix selects the files handlers run on when Options.Suffix
// is empty.
const DefaultSuffix = ".md"

// Handler processes one discovered file. It may block on filesystem I/O;
// the walker imposes no timeout, so callers needing bounded latency must
// wrap the handler themselves.
type Handler func(ctx context.Context, path string) error

// Options configures a [Walker].
type Options struct {
	// Limit caps simultaneously running handler invocations.
	// Zero means [DefaultLimit].
	Limit int64

	// Suffix filters which files are dispatched. Zero means [DefaultSuffix].
	Suffix string
}

// Failure pairs a handler error with the path it occurred on.
type Failure struct {
	Path string
	Err  error
}

// Stats summarizes one completed walk.
type Stats struct {
	// Matched counts files that passed the suffix filter and were
	// dispatched to the handler.
	Matched int

	// Failures holds every isolated handler error, in settlement order.
	Failures []Failure
}

// Walker applies a handler to every qualifying file under a root.
//
// A Walker holds no cross-task mutable state beyond the admission gate and
// may be reused for repeated passes.
type Walker struct {
	fs     fs.FS
	log    *log.Logger
	limit  int64
	suffix string
}

// NewWalker returns a walker over fsys that reports through logger.
// Panics if fsys or logger is nil.
func NewWalker(fsys fs.FS, logger *log.Logger, opts Options) *Walker {
	if fsys == nil {
		panic("fs is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}

	return &Walker{fs: fsys, log: logger, limit: opts.Limit, suffix: opts.Suffix}
}

// Walk enumerates files under root and dispatches each matching file to
// handler, running at most the configured limit concurrently. Discovery
// blocks while all slots are busy; files are never dropped.
//
// Handler errors do not abort the walk and are returned in Stats.Failures.
// Unreadable entries below root are logged and skipped; a root that cannot
// be enumerated fails the walk. Cancelling ctx stops dispatching new files;
// Walk still waits for in-flight handlers before returning.
func (w *Walker) Walk(ctx context.Context, root string, handler Handler) (Stats, error) {
	sem := semaphore.NewWeighted(w.limit)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		stats Stats
	)

	walkErr := w.fs.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			w.log.Warn("skipping unreadable entry", "path", path, "err", err)

			return nil
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), w.suffix) {
			return nil
		}

		acquireErr := sem.Acquire(ctx, 1)
		if acquireErr != nil {
			return acquireErr
		}

		stats.Matched++

		wg.Add(1)

		go func() {
			defer wg.Done()
			defer sem.Release(1)

			herr := handler(ctx, path)
			if herr == nil {
				return
			}

			w.log.Error("handler failed", "path", path, "err", herr)

			mu.Lock()
			stats.Failures = append(stats.Failures, Failure{Path: path, Err: herr})
			mu.Unlock()
		}()

		return nil
	})

	wg.Wait()

	if walkErr != nil {
		return stats, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	return stats, nil
}
