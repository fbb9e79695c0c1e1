package catalog

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	clog "github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"

	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/platform"
	"github.com/environmint/envmint/internal/shell"
)

const filePerm os.FileMode = 0644

// Store is the persisted tool catalog. It is safe for concurrent use.
type Store struct {
	path    string
	dialect shell.Dialect
	log     *clog.Logger

	mu    sync.Mutex
	tools []Tool
}

// Open creates a Store for the file at path and loads it. The dialect picks
// the seed set used when the file is missing or unusable.
func Open(path string, dialect shell.Dialect, logger *clog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		dialect: dialect,
		log:     logging.OrDiscard(logger).With("catalog", path),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load replaces the in-memory list with the file contents. A missing, empty
// or corrupt file is replaced with the seed set, which is saved immediately.
// Entries that fail the schema are dropped and the rest are kept. In both
// cases the original file is preserved next to the catalog with a .bak
// suffix.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading catalog %s: %w", s.path, err)
	}

	tools, dropped, reason := s.decode(data, err)
	if reason == "" {
		if dropped > 0 {
			s.backup(data)
		}
		s.mu.Lock()
		s.tools = tools
		s.mu.Unlock()
		return nil
	}

	if len(bytes.TrimSpace(data)) > 0 {
		s.log.Warn("catalog unusable, restoring defaults", "reason", reason, "backup", s.path+".bak")
		s.backup(data)
	} else {
		s.log.Debug("seeding catalog", "reason", reason)
	}

	seed := Seed(s.dialect)
	if err := s.write(seed); err != nil {
		return err
	}
	s.mu.Lock()
	s.tools = seed
	s.mu.Unlock()
	return nil
}

func (s *Store) backup(data []byte) {
	if err := os.WriteFile(s.path+".bak", data, filePerm); err != nil {
		s.log.Warn("could not back up catalog", "err", err)
	}
}

// decode returns the usable tools and how many entries were dropped, or a
// non-empty reason why the seed set must be used instead.
func (s *Store) decode(data []byte, readErr error) ([]Tool, int, string) {
	if readErr != nil {
		return nil, 0, "file does not exist"
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, 0, "file is empty"
	}

	report, err := Validate(data)
	if err != nil {
		return nil, 0, err.Error()
	}
	if !report.Usable() {
		return nil, 0, "schema: " + report.File[0].String()
	}
	for _, e := range report.Entries {
		s.log.Warn("dropping invalid catalog entry", "tool", e.Tool, "issue", e.Issues[0].String())
	}

	var doc struct {
		Tools []yaml.Node `yaml:"tools"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, err.Error()
	}

	// Names are unique; a hand-edited file may break that, first entry wins.
	seen := make(map[string]bool, len(doc.Tools))
	tools := make([]Tool, 0, len(doc.Tools))
	dropped := 0
	for i := range doc.Tools {
		if report.Rejected(i) {
			dropped++
			continue
		}
		var t Tool
		if err := doc.Tools[i].Decode(&t); err != nil || t.Validate() != nil {
			s.log.Warn("dropping unreadable catalog entry", "index", i)
			dropped++
			continue
		}
		if seen[t.Name] {
			s.log.Warn("dropping duplicate catalog entry", "tool", t.Name)
			continue
		}
		seen[t.Name] = true
		tools = append(tools, t)
	}
	if len(tools) == 0 {
		return nil, 0, "catalog has no usable tools"
	}
	return tools, dropped, ""
}

// Save writes the in-memory list to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.tools)
}

func (s *Store) write(tools []Tool) error {
	data, err := yaml.Marshal(document{Tools: tools})
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := platform.WriteFileAtomic(s.path, data, filePerm); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	return nil
}

// Tools returns a copy of the catalog in stored order.
func (s *Store) Tools() []Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Len returns the number of catalog entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tools)
}

// Find returns the tool with the exact name.
func (s *Store) Find(name string) (Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tools, name); i >= 0 {
		return s.tools[i], true
	}
	return Tool{}, false
}

// Add appends t. It fails with ErrDuplicateName if the name is taken.
func (s *Store) Add(t Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.mutate(func(tools []Tool) ([]Tool, error) {
		if indexOf(tools, t.Name) >= 0 {
			return nil, fmt.Errorf("adding %q: %w", t.Name, ErrDuplicateName)
		}
		return append(tools, t), nil
	})
}

// Update replaces the record whose name equals t.Name.
func (s *Store) Update(t Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.mutate(func(tools []Tool) ([]Tool, error) {
		i := indexOf(tools, t.Name)
		if i < 0 {
			return nil, fmt.Errorf("updating %q: %w", t.Name, ErrNotFound)
		}
		tools[i] = t
		return tools, nil
	})
}

// Rename replaces the record named oldName with t, which may carry a new
// name. The new name must not collide with another entry.
func (s *Store) Rename(oldName string, t Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.mutate(func(tools []Tool) ([]Tool, error) {
		i := indexOf(tools, oldName)
		if i < 0 {
			return nil, fmt.Errorf("updating %q: %w", oldName, ErrNotFound)
		}
		if j := indexOf(tools, t.Name); j >= 0 && j != i {
			return nil, fmt.Errorf("renaming %q to %q: %w", oldName, t.Name, ErrDuplicateName)
		}
		tools[i] = t
		return tools, nil
	})
}

// Delete removes the tool with the given name.
func (s *Store) Delete(name string) error {
	return s.mutate(func(tools []Tool) ([]Tool, error) {
		i := indexOf(tools, name)
		if i < 0 {
			return nil, fmt.Errorf("deleting %q: %w", name, ErrNotFound)
		}
		return append(tools[:i], tools[i+1:]...), nil
	})
}

// ApplyProbeResults sets IsInstalled for every named tool in one save.
// Names that are no longer in the catalog are ignored.
func (s *Store) ApplyProbeResults(results map[string]bool) error {
	return s.mutate(func(tools []Tool) ([]Tool, error) {
		for i := range tools {
			if installed, ok := results[tools[i].Name]; ok {
				tools[i].IsInstalled = installed
			}
		}
		return tools, nil
	})
}

// mutate runs fn on a copy of the list, saves the result and commits it.
// On any error the Store is left untouched.
func (s *Store) mutate(fn func([]Tool) ([]Tool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make([]Tool, len(s.tools))
	copy(work, s.tools)

	next, err := fn(work)
	if err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.tools = next
	return nil
}

func indexOf(tools []Tool, name string) int {
	for i, t := range tools {
		if t.Name == name {
			return i
		}
	}
	return -1
}
