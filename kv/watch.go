package kv

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"ghostconf/logging"
)

// watchDebounce coalesces the burst of events one atomic write produces.
const watchDebounce = 50 * time.Millisecond

// Watch calls fn whenever the file behind key is replaced or written, by this
// process or any other. It returns once the watch is set up; the watch stops
// when ctx is done.
func Watch(ctx context.Context, s *FileStore, key string, fn func()) error {
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: rename-over replaces the inode, which drops a
	// watch placed on the file itself.
	if err := w.Add(s.Dir()); err != nil {
		w.Close()
		return err
	}

	target := filepath.Clean(s.Path(key))
	go func() {
		defer w.Close()
		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case <-fire:
				fn()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn("store watch error", "key", key, "err", err)
			}
		}
	}()
	return nil
}
