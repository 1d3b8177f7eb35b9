package keeper

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of filesystem events into one wake-up.
// Editors commonly fire several events per save.
const watchDebounce = 2 * time.Second

// watchChanges watches dir and emits one signal per debounced burst of
// change events. The channel is closed when ctx is cancelled or the
// watcher's event stream ends.
//
// Only the top level of dir is watched; the periodic pass still covers
// changes deeper in the tree, watch mode just shortens the latency for the
// common case of notes moving at the root.
func watchChanges(ctx context.Context, dir string, debounce time.Duration, logger *log.Logger) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	err = watcher.Add(dir)
	if err != nil {
		watcher.Close()

		return nil, fmt.Errorf("add %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer

		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				if timer == nil {
					timer = time.NewTimer(debounce)
					fire = timer.C
				} else {
					timer.Reset(debounce)
				}

			case <-fire:
				timer = nil
				fire = nil

				select {
				case out <- struct{}{}:
				default:
					// a wake-up is already pending
				}

			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				logger.Warn("watcher error", "err", watchErr)
			}
		}
	}()

	return out, nil
}
