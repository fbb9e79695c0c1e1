package probe

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/shell"
)

const (
	// DefaultTimeout bounds a single validation script.
	DefaultTimeout = 30 * time.Second
	// DefaultConcurrency bounds BatchProbe and BatchLocate.
	DefaultConcurrency = 4

	locateDepth = 3
)

// Prober decides whether catalog tools are installed by running their
// validation scripts.
type Prober struct {
	Runner      Runner
	Dialect     shell.Dialect
	Timeout     time.Duration
	Concurrency int
	Logger      *clog.Logger
}

// New returns a Prober with default limits.
func New(runner Runner, d shell.Dialect, logger *clog.Logger) *Prober {
	return &Prober{
		Runner:      runner,
		Dialect:     d,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		Logger:      logger,
	}
}

// Probe runs the tool's validation script through the dialect's
// interpreter. The tool is installed when the script exits 0 and prints
// something. An empty script is never run. Every failure, including a
// timeout or a missing interpreter, reports false.
func (p *Prober) Probe(ctx context.Context, tool catalog.Tool) bool {
	log := logging.OrDiscard(p.Logger).With("tool", tool.Name)

	script := strings.TrimSpace(tool.ValidationScript)
	if script == "" {
		log.Debug("no validation script")
		return false
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, base := p.Dialect.Interpreter()
	args := append(append([]string(nil), base...), script)
	res := p.Runner.Run(ctx, name, args...)
	if res.Err != nil {
		log.Debug("validation script failed to run", "err", res.Err)
		return false
	}
	if res.ExitCode != 0 {
		log.Debug("validation script reported missing", "exit", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		return false
	}
	return strings.TrimSpace(res.Stdout) != ""
}

// BatchProbe probes every tool on a bounded pool and returns name to
// installed. On cancellation the partial map is discarded and ctx.Err()
// is returned.
func (p *Prober) BatchProbe(ctx context.Context, tools []catalog.Tool) (map[string]bool, error) {
	locs, err := p.BatchLocate(ctx, tools, nil)
	if err != nil {
		return nil, err
	}
	results := make(map[string]bool, len(locs))
	for name, loc := range locs {
		results[name] = loc.Validated
	}
	return results, nil
}

// BatchLocate runs Locate for every tool on a bounded pool. Every tool gets
// an entry, found or not. On cancellation the partial map is discarded and
// ctx.Err() is returned.
func (p *Prober) BatchLocate(ctx context.Context, tools []catalog.Tool, roots []string) (map[string]Location, error) {
	workers := p.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	var mu sync.Mutex
	results := make(map[string]Location, len(tools))
	wp := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for _, t := range tools {
		t := t
		wp.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			loc, _ := p.Locate(ctx, t, roots)
			mu.Lock()
			results[t.Name] = loc
			mu.Unlock()
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Location describes where Locate found a tool.
type Location struct {
	// Validated is set when the validation script succeeded.
	Validated bool `json:"validated"`
	// Path is a directory whose name contains the tool name. It is only
	// looked for when validation fails.
	Path string `json:"path,omitempty"`
}

// Found reports whether either check succeeded.
func (l Location) Found() bool { return l.Validated || l.Path != "" }

// Locate probes the tool and, failing that, searches roots. With no roots
// it is a plain Probe. The validation script runs at most once.
func (p *Prober) Locate(ctx context.Context, tool catalog.Tool, roots []string) (Location, bool) {
	if p.Probe(ctx, tool) {
		return Location{Validated: true}, true
	}
	if len(roots) == 0 {
		return Location{}, false
	}
	if dir, ok := p.Search(ctx, tool, roots); ok {
		return Location{Path: dir}, true
	}
	return Location{}, false
}

// Search looks under each root, up to three directory levels deep, for a
// directory whose name contains the tool name, ignoring case. No script is
// run.
func (p *Prober) Search(ctx context.Context, tool catalog.Tool, roots []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(tool.Name))
	if needle == "" {
		return "", false
	}
	log := logging.OrDiscard(p.Logger).With("tool", tool.Name)

	for _, root := range roots {
		if ctx.Err() != nil {
			return "", false
		}
		if dir := findDir(ctx, root, needle, log); dir != "" {
			return dir, true
		}
	}
	return "", false
}

// findDir walks root down to locateDepth levels and returns the first
// directory whose lower-cased name contains needle.
func findDir(ctx context.Context, root, needle string, log *clog.Logger) string {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Debug("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return filepath.SkipDir
		}
		depth := strings.Count(filepath.ToSlash(rel), "/") + 1
		if strings.Contains(strings.ToLower(d.Name()), needle) {
			found = path
			return fs.SkipAll
		}
		if depth >= locateDepth {
			return filepath.SkipDir
		}
		return nil
	})
	return found
}
