package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/environmint/envmint/internal/recommend"
	"github.com/environmint/envmint/internal/scanner"
)

// DefaultSettle is how long the tree must stay quiet before Watch rescans.
const DefaultSettle = 500 * time.Millisecond

// Update is delivered to a Watch callback after every scan.
type Update struct {
	Detection       *scanner.Result
	Recommendations *recommend.Set
	Err             error
}

// Watch scans dir, then rescans whenever files under it change and the
// tree has been quiet for settle (DefaultSettle when zero). fn runs on the
// calling goroutine after each scan. Watch blocks until ctx is done and
// returns nil, or returns early if the watcher cannot be set up.
func (s *Session) Watch(ctx context.Context, dir string, settle time.Duration, fn func(Update)) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	ignore := scanner.NewIgnoreMatcher(abs, s.Scanner.RespectGitignore)
	if err := s.watchTree(w, abs, abs, ignore); err != nil {
		return err
	}

	rescan := func() {
		res, set, err := s.Scan(ctx, abs)
		if ctx.Err() != nil {
			return
		}
		fn(Update{Detection: res, Recommendations: set, Err: err})
	}
	rescan()

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(abs, event.Name)
			if err != nil || ignore.MatchesPath(filepath.ToSlash(rel)) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := s.watchTree(w, abs, event.Name, ignore); err != nil {
						s.log.Warn("could not watch new directory", "dir", event.Name, "err", err)
					}
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			s.log.Debug("change", "path", rel, "op", event.Op.String())
			timer.Reset(settle)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", "err", err)

		case <-timer.C:
			rescan()
		}
	}
}

// watchTree adds dir and every non-ignored directory below it.
func (s *Session) watchTree(w *fsnotify.Watcher, root, dir string, ignore gitignore.IgnoreParser) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
			s.log.Debug("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return filepath.SkipDir
			}
			rel = filepath.ToSlash(rel)
			if ignore.MatchesPath(rel) || ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
		}
		if err := w.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			s.log.Debug("could not watch directory", "path", path, "err", err)
		}
		return nil
	})
}
