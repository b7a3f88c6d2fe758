package tool

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks until ctx is done, calling onChange once per burst of
// filesystem events under dir. Bursts are debounced by debounce.
// Watcher errors are passed to onError, which may be nil.
func Watch(ctx context.Context, dir string, debounce time.Duration, onChange func(), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tool: create watcher: %w", err)
	}
	defer watcher.Close()

	ignore := newIgnoreMatcher(dir)
	if err := addWatchDirs(watcher, dir, ignore); err != nil {
		return fmt.Errorf("tool: watch %s: %w", dir, err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop() // Don't fire immediately.
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			rel, err := filepath.Rel(dir, event.Name)
			if err != nil || rel == "." || ignore.Match(rel) {
				continue
			}

			// If a new directory was created, start watching it.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			pending = true
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			onChange()
		}
	}
}

// addWatchDirs recursively adds directories to the watcher, skipping ignored ones.
func addWatchDirs(watcher *fsnotify.Watcher, root string, ignore *ignoreMatcher) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if rel != "." && ignore.MatchDir(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
