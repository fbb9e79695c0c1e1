package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	clog "github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/manifest"
)

const (
	// DefaultMaxFileSize is the largest file offered to content rules.
	DefaultMaxFileSize = 1 << 20
	// DefaultConcurrency bounds concurrent file reads during content grep.
	DefaultConcurrency = 8

	binarySniffLen = 4096
)

// IOError reports that the scan root itself could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read project directory %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Result is the outcome of one scan.
type Result struct {
	// Technologies holds every detected technology mapped to true.
	Technologies map[string]bool
	// Versions holds versions for the subset of technologies a manifest
	// pinned.
	Versions map[string]string
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		Technologies: make(map[string]bool),
		Versions:     make(map[string]string),
	}
}

// Has reports whether tech was detected.
func (r *Result) Has(tech string) bool { return r.Technologies[tech] }

// Detected returns the detected technologies in sorted order.
func (r *Result) Detected() []string {
	out := make([]string, 0, len(r.Technologies))
	for tech, ok := range r.Technologies {
		if ok {
			out = append(out, tech)
		}
	}
	sort.Strings(out)
	return out
}

// Empty reports whether nothing was detected.
func (r *Result) Empty() bool { return len(r.Detected()) == 0 }

func (r *Result) flag(techs ...string) {
	for _, t := range techs {
		r.Technologies[t] = true
	}
}

func (r *Result) merge(f *manifest.Findings) {
	r.flag(f.Technologies...)
	for _, tech := range f.Technologies {
		if v, ok := f.Versions[tech]; ok {
			r.Versions[tech] = v
		}
	}
}

// Scanner applies a rule battery to a project directory.
type Scanner struct {
	Rules []Rule
	// RespectGitignore enables the walk filter: DefaultIgnorePatterns plus
	// the root .gitignore.
	RespectGitignore bool
	// Concurrency bounds file reads during content grep.
	Concurrency int
	// MaxFileSize skips larger files during content grep.
	MaxFileSize int64
	Logger      *clog.Logger
}

// New returns a Scanner using DefaultRules.
func New(logger *clog.Logger) *Scanner {
	return &Scanner{
		Rules:       DefaultRules,
		Concurrency: DefaultConcurrency,
		MaxFileSize: DefaultMaxFileSize,
		Logger:      logger,
	}
}

// Scan walks root once and evaluates every rule against it. It fails only
// when root itself cannot be read; unreadable files and subtrees are
// skipped. On cancellation it returns ctx.Err() and no result.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	log := logging.OrDiscard(s.Logger).With("root", root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &IOError{Path: root, Err: fmt.Errorf("not a directory")}
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, &IOError{Path: root, Err: err}
	}

	idx, err := buildIndex(ctx, root, NewIgnoreMatcher(root, s.RespectGitignore), log)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &IOError{Path: root, Err: err}
	}
	log.Debug("indexed project", "files", len(idx.files), "extensions", len(idx.exts))

	res := NewResult()
	var greps []Rule
	for _, rule := range s.Rules {
		switch rule.Kind {
		case ManifestPresence:
			for _, p := range rule.Paths {
				if idx.exists(p) {
					res.flag(rule.Technologies...)
					break
				}
			}
		case ExtensionCensus:
			if idx.anyExtension(rule.Extensions) {
				res.flag(rule.Technologies...)
			}
		case CrossSignal:
			if crossSignal(idx, rule.Conditions) {
				res.flag(rule.Technologies...)
			}
		case StructuredParse:
			s.parseManifests(idx, rule, res, log)
		case ContentGrep:
			greps = append(greps, rule)
		default:
			log.Warn("ignoring rule of unknown kind", "kind", rule.Kind)
		}
	}

	if err := s.grepContent(ctx, idx, greps, res, log); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func crossSignal(idx *index, conds []Condition) bool {
	if len(conds) == 0 {
		return false
	}
	for _, c := range conds {
		switch {
		case len(c.Extensions) > 0:
			if !idx.anyExtension(c.Extensions) {
				return false
			}
		case c.Path != "":
			if !idx.exists(c.Path) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// parseManifests runs a StructuredParse rule. Files are parsed in order so
// version conflicts resolve deterministically. A parse failure leaves only
// the presence flags already set by other rules.
func (s *Scanner) parseManifests(idx *index, rule Rule, res *Result, log *clog.Logger) {
	parser, ok := manifest.Lookup(rule.Parser)
	if !ok {
		log.Warn("unknown manifest parser", "parser", rule.Parser)
		return
	}

	var targets []entry
	for _, p := range rule.Paths {
		if e, ok := idx.file(p); ok {
			targets = append(targets, e)
		}
	}
	if len(rule.Extensions) > 0 {
		for _, e := range idx.files {
			if hasExtension(e.rel, rule.Extensions) {
				targets = append(targets, e)
			}
		}
	}

	for _, e := range targets {
		data, err := os.ReadFile(idx.abs(e))
		if err != nil {
			log.Debug("cannot read manifest", "path", e.rel, "err", err)
			continue
		}
		findings, err := parser(e.rel, data)
		if err != nil {
			log.Debug("manifest parse failed, keeping presence only", "path", e.rel, "err", err)
			continue
		}
		res.merge(findings)
	}
}

// grepContent reads each eligible file once on a bounded pool and offers
// it to every content rule whose scope accepts it.
func (s *Scanner) grepContent(ctx context.Context, idx *index, rules []Rule, res *Result, log *clog.Logger) error {
	if len(rules) == 0 {
		return nil
	}

	maxSize := s.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	workers := s.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for _, e := range idx.files {
		if e.size > maxSize {
			log.Debug("skipping large file", "path", e.rel, "size", e.size)
			continue
		}
		applicable := rulesFor(e.rel, rules)
		if len(applicable) == 0 {
			continue
		}

		e := e
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(idx.abs(e))
			if err != nil {
				log.Debug("cannot read file", "path", e.rel, "err", err)
				return nil
			}
			if isBinary(data) {
				return nil
			}

			content := string(data)
			base := path.Base(e.rel)
			var hits []string
			for _, r := range applicable {
				if matches(content, base, r) {
					hits = append(hits, r.Technologies...)
				}
			}
			if len(hits) > 0 {
				mu.Lock()
				res.flag(hits...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// rulesFor returns the content rules whose scope accepts the file.
func rulesFor(rel string, rules []Rule) []Rule {
	var out []Rule
	for _, r := range rules {
		if len(r.FileNames) > 0 && !containsFold(r.FileNames, rel) {
			continue
		}
		if len(r.Extensions) > 0 && !hasExtension(rel, r.Extensions) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(content, base string, r Rule) bool {
	for _, sub := range r.NameContains {
		if strings.Contains(base, sub) {
			return true
		}
	}
	for _, clause := range r.Match {
		if len(clause) == 0 {
			continue
		}
		all := true
		for _, lit := range clause {
			if !strings.Contains(content, lit) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// isBinary reports whether the first 4 KiB contain a zero byte.
func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func hasExtension(rel string, exts []string) bool {
	ext := strings.ToLower(path.Ext(rel))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func containsFold(names []string, s string) bool {
	for _, v := range names {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
