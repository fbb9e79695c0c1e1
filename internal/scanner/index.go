package scanner

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"
	gitignore "github.com/sabhiram/go-gitignore"
)

// gitDir is never descended into. It is still recorded so the Git rule
// sees it.
const gitDir = ".git"

// DefaultIgnorePatterns join the .gitignore patterns when the walk filter
// is enabled. They hold tooling state or vendored dependencies, not
// project sources.
var DefaultIgnorePatterns = []string{
	"node_modules",
	"__pycache__",
	".venv",
	".idea",
	".vs",
}

// NewIgnoreMatcher compiles the walk filter. Without filtering only .git
// is pruned; with it DefaultIgnorePatterns and the patterns of
// root/.gitignore are added.
func NewIgnoreMatcher(root string, filter bool) gitignore.IgnoreParser {
	patterns := []string{gitDir}
	if filter {
		patterns = append(patterns, DefaultIgnorePatterns...)
		patterns = append(patterns, readGitignoreLines(filepath.Join(root, ".gitignore"))...)
	}
	return gitignore.CompileIgnoreLines(patterns...)
}

// readGitignoreLines returns the non-comment lines of a .gitignore file,
// or nil when it cannot be read.
func readGitignoreLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// entry is one walked path, relative to the scan root with forward slashes.
type entry struct {
	rel   string
	isDir bool
	size  int64
}

// index is everything the rules need from one walk of the tree.
type index struct {
	root string
	// entries is keyed by lower-cased relative path so presence checks
	// behave the same on case-insensitive filesystems.
	entries map[string]entry
	// exts counts regular files per lower-cased extension.
	exts map[string]int
	// files lists regular files in lexical walk order.
	files []entry
}

// buildIndex walks root once. Ignored directories are recorded but not
// descended into, so a .git directory still counts as present. Unreadable
// subtrees are logged and skipped.
func buildIndex(ctx context.Context, root string, ignore gitignore.IgnoreParser, log *clog.Logger) (*index, error) {
	idx := &index{
		root:    root,
		entries: make(map[string]entry),
		exts:    make(map[string]int),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			log.Debug("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			idx.entries[strings.ToLower(rel)] = entry{rel: rel, isDir: true}
			if ignore.MatchesPath(rel) || ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignore.MatchesPath(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Debug("skipping file", "path", path, "err", err)
			return nil
		}
		e := entry{rel: rel, size: info.Size()}
		idx.entries[strings.ToLower(rel)] = e
		idx.files = append(idx.files, e)
		if ext := strings.ToLower(filepath.Ext(rel)); ext != "" {
			idx.exts[ext]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// exists reports whether the root-relative path was seen by the walk.
func (idx *index) exists(rel string) bool {
	_, ok := idx.entries[strings.ToLower(rel)]
	return ok
}

// file returns the regular file at rel, if any.
func (idx *index) file(rel string) (entry, bool) {
	e, ok := idx.entries[strings.ToLower(rel)]
	if !ok || e.isDir {
		return entry{}, false
	}
	return e, true
}

// anyExtension reports whether the census counted any of exts.
func (idx *index) anyExtension(exts []string) bool {
	for _, ext := range exts {
		if idx.exts[strings.ToLower(ext)] > 0 {
			return true
		}
	}
	return false
}

func (idx *index) abs(e entry) string {
	return filepath.Join(idx.root, filepath.FromSlash(e.rel))
}
