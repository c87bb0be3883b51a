package config

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads Settings from path whenever the file changes on disk and
// delivers each successfully validated document on the returned channel.
// A write that produces invalid YAML or fails Validate is reported through
// onError and otherwise ignored — the gateway keeps running on the last
// good Settings rather than tearing itself down over an operator's typo.
//
// The channel is closed when ctx is done. Callers (cmd/gateway's serve
// command) range over it and atomically swap in a freshly built Manager
// for each delivered Settings.
func Watch(ctx context.Context, path string, onError func(error)) (<-chan *Settings, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan *Settings)

	go func() {
		defer watcher.Close()
		defer close(out)

		// Editors commonly replace a file via rename-into-place, which
		// fires Remove/Create instead of Write and drops the inode
		// fsnotify was watching. Re-adding the watch after every write,
		// create, rename or remove event keeps that path working without
		// special-casing it.
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				_ = watcher.Add(path)

				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(100*time.Millisecond, func() {
					settings, err := Load(path)
					if err != nil {
						onError(err)
						return
					}
					select {
					case out <- settings:
					case <-ctx.Done():
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onError(err)
			}
		}
	}()

	return out, nil
}
