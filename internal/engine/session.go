package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/config"
	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/probe"
	"github.com/environmint/envmint/internal/recommend"
	"github.com/environmint/envmint/internal/scanner"
	"github.com/environmint/envmint/internal/script"
	"github.com/environmint/envmint/internal/shell"
)

// Session errors.
var (
	ErrNothingSelected = errors.New("no tools selected")
	ErrNotScanned      = errors.New("no project has been scanned")
	ErrUnknownCategory = errors.New("no such recommendation category")
	ErrUnknownTool     = errors.New("tool is neither recommended nor in the catalog")
)

// Options configures a Session. Zero values fall back to package defaults.
type Options struct {
	Dialect          shell.Dialect
	RespectGitignore bool
	ScanConcurrency  int
	ProbeTimeout     time.Duration
	ProbeConcurrency int

	// Runner executes validation scripts. Nil means a plain ExecRunner.
	Runner probe.Runner
	Logger *clog.Logger
}

// OptionsFromSettings maps the settings file onto Options.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		Dialect:          s.Dialect(),
		RespectGitignore: s.RespectGitignore,
		ScanConcurrency:  s.ScanConcurrency,
		ProbeTimeout:     s.ProbeTimeout,
		ProbeConcurrency: s.ProbeConcurrency,
	}
}

// Session owns the components of one run and the working selection.
type Session struct {
	Catalog *catalog.Store
	Scanner *scanner.Scanner
	Mapper  *recommend.Mapper
	Prober  *probe.Prober
	Dialect shell.Dialect

	log *clog.Logger

	mu        sync.Mutex
	detection *scanner.Result
	recs      *recommend.Set
	selected  []catalog.Tool
}

// New wires a Session around cat.
func New(cat *catalog.Store, opts Options) *Session {
	d := opts.Dialect
	if d == "" {
		d = shell.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = &probe.ExecRunner{}
	}

	sc := scanner.New(opts.Logger)
	sc.RespectGitignore = opts.RespectGitignore
	if opts.ScanConcurrency > 0 {
		sc.Concurrency = opts.ScanConcurrency
	}

	pr := probe.New(runner, d, opts.Logger)
	if opts.ProbeTimeout > 0 {
		pr.Timeout = opts.ProbeTimeout
	}
	if opts.ProbeConcurrency > 0 {
		pr.Concurrency = opts.ProbeConcurrency
	}

	return &Session{
		Catalog: cat,
		Scanner: sc,
		Mapper:  recommend.New(d),
		Prober:  pr,
		Dialect: d,
		log:     logging.OrDiscard(opts.Logger),
	}
}

// Scan detects technologies under dir and maps them to recommendations.
// Both replace the previous scan only when the scan succeeds.
func (s *Session) Scan(ctx context.Context, dir string) (*scanner.Result, *recommend.Set, error) {
	res, err := s.Scanner.Scan(ctx, dir)
	if err != nil {
		return nil, nil, err
	}
	set := s.Mapper.Build(res, s.Catalog.Tools())

	s.mu.Lock()
	s.detection = res
	s.recs = set
	s.mu.Unlock()

	s.log.Debug("scan committed", "dir", dir, "technologies", len(res.Detected()), "categories", set.Len())
	return res, set, nil
}

// Detection returns the last committed scan result, or nil.
func (s *Session) Detection() *scanner.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detection
}

// Recommendations returns the last committed recommendations, or nil.
func (s *Session) Recommendations() *recommend.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs
}

// Mismatches compares recommended tool versions with the versions the
// scanned project declares.
func (s *Session) Mismatches() []recommend.Mismatch {
	s.mu.Lock()
	det, recs := s.detection, s.recs
	s.mu.Unlock()
	if det == nil || recs == nil {
		return nil
	}
	return s.Mapper.Mismatches(recs, det.Versions)
}

// Select adds t to the selection unless a tool of that name is already
// selected. It reports whether t was added.
func (s *Session) Select(t catalog.Tool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(t)
}

func (s *Session) selectLocked(t catalog.Tool) bool {
	for _, existing := range s.selected {
		if existing.Name == t.Name {
			return false
		}
	}
	s.selected = append(s.selected, t)
	return true
}

// SelectByName selects the named tool, looking first at the current
// recommendations and then at the catalog.
func (s *Session) SelectByName(name string) error {
	s.mu.Lock()
	recs := s.recs
	s.mu.Unlock()

	if recs != nil {
		for _, t := range recs.AllTools() {
			if t.Name == name {
				s.Select(t)
				return nil
			}
		}
	}
	if t, ok := s.Catalog.Find(name); ok {
		s.Select(t)
		return nil
	}
	return fmt.Errorf("selecting %q: %w", name, ErrUnknownTool)
}

// SelectCategory selects every tool in the named recommendation category
// and returns how many were newly added.
func (s *Session) SelectCategory(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recs == nil {
		return 0, ErrNotScanned
	}
	c, ok := s.recs.Category(name)
	if !ok {
		return 0, fmt.Errorf("selecting category %q: %w", name, ErrUnknownCategory)
	}
	added := 0
	for _, t := range c.Tools {
		if s.selectLocked(t) {
			added++
		}
	}
	return added, nil
}

// SelectRecommended selects every recommended tool in category order.
func (s *Session) SelectRecommended() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recs == nil {
		return 0, ErrNotScanned
	}
	added := 0
	for _, t := range s.recs.AllTools() {
		if s.selectLocked(t) {
			added++
		}
	}
	return added, nil
}

// Deselect removes the named tool and reports whether it was selected.
func (s *Session) Deselect(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.selected {
		if t.Name == name {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return true
		}
	}
	return false
}

// Selected returns the selection in insertion order.
func (s *Session) Selected() []catalog.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Tool, len(s.selected))
	copy(out, s.selected)
	return out
}

// Generate renders the setup script for the current selection.
func (s *Session) Generate(envName string) (string, error) {
	tools := s.Selected()
	if len(tools) == 0 {
		return "", ErrNothingSelected
	}
	return script.Generate(envName, tools, s.Dialect), nil
}

// ProbeCatalog probes every catalog tool and stores the outcomes in one
// catalog save. Nothing is stored when ctx is cancelled.
func (s *Session) ProbeCatalog(ctx context.Context) (map[string]bool, error) {
	locs, err := s.LocateCatalog(ctx, nil)
	if err != nil {
		return nil, err
	}
	results := make(map[string]bool, len(locs))
	for name, loc := range locs {
		results[name] = loc.Validated
	}
	return results, nil
}

// LocateCatalog is ProbeCatalog plus a directory search of roots for tools
// whose validation fails. Only validation outcomes are stored; a tool found
// by search alone stays not installed.
func (s *Session) LocateCatalog(ctx context.Context, roots []string) (map[string]probe.Location, error) {
	locs, err := s.Prober.BatchLocate(ctx, s.Catalog.Tools(), roots)
	if err != nil {
		return nil, err
	}
	results := make(map[string]bool, len(locs))
	for name, loc := range locs {
		results[name] = loc.Validated
	}
	if err := s.Catalog.ApplyProbeResults(results); err != nil {
		return nil, fmt.Errorf("recording probe results: %w", err)
	}
	return locs, nil
}
