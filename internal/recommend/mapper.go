package recommend

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/shell"
)

// Detection is the scan outcome the mapper reads. *scanner.Result
// satisfies it.
type Detection interface {
	Detected() []string
	Has(tech string) bool
}

// Category is one named group of recommended tools.
type Category struct {
	Name  string         `json:"name"`
	Tools []catalog.Tool `json:"tools"`
}

// Set is an ordered list of categories. Categories appear in the order
// they were first filled; a tool name appears at most once per category.
type Set struct {
	Categories []Category `json:"categories"`
}

// Category returns the named category.
func (s *Set) Category(name string) (Category, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// AllTools returns every recommended tool once, in category order.
func (s *Set) AllTools() []catalog.Tool {
	seen := make(map[string]bool)
	var out []catalog.Tool
	for _, c := range s.Categories {
		for _, t := range c.Tools {
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Len returns the number of categories.
func (s *Set) Len() int { return len(s.Categories) }

func (s *Set) add(category string, t catalog.Tool) {
	for i := range s.Categories {
		c := &s.Categories[i]
		if c.Name != category {
			continue
		}
		for _, existing := range c.Tools {
			if existing.Name == t.Name {
				return
			}
		}
		c.Tools = append(c.Tools, t)
		return
	}
	s.Categories = append(s.Categories, Category{Name: category, Tools: []catalog.Tool{t}})
}

// hasNameContaining reports whether any tool name contains sub.
func (s *Set) hasNameContaining(sub string) bool {
	for _, c := range s.Categories {
		for _, t := range c.Tools {
			if strings.Contains(t.Name, sub) {
				return true
			}
		}
	}
	return false
}

// Mapper turns a detection into grouped tool recommendations.
type Mapper struct {
	Dialect shell.Dialect
	Table   Table
	Tools   map[string]ToolSpec
}

// New returns a Mapper over DefaultTable and DefaultTools.
func New(d shell.Dialect) *Mapper {
	return &Mapper{Dialect: d, Table: DefaultTable, Tools: DefaultTools}
}

// Build maps detected technologies, in sorted order, through the table.
// Catalog records are reused by exact name; other tools are synthesized
// from their ToolSpec. Git and Visual Studio Code are always present,
// under General when no category already holds a tool whose name
// contains theirs.
func (m *Mapper) Build(d Detection, tools []catalog.Tool) *Set {
	known := make(map[string]catalog.Tool, len(tools))
	for _, t := range tools {
		if _, dup := known[t.Name]; !dup {
			known[t.Name] = t
		}
	}

	set := &Set{}
	for _, tech := range d.Detected() {
		for _, e := range m.Table[tech] {
			if e.When != "" && !d.Has(e.When) {
				continue
			}
			set.add(e.Category, m.resolve(e.Tool, known))
		}
	}
	for _, name := range Baseline {
		if !set.hasNameContaining(name) {
			set.add(General, m.resolve(name, known))
		}
	}
	return set
}

func (m *Mapper) resolve(name string, known map[string]catalog.Tool) catalog.Tool {
	if t, ok := known[name]; ok {
		return t
	}
	if spec, ok := m.Tools[name]; ok {
		return spec.Tool(m.Dialect)
	}
	return catalog.Tool{Name: name, Version: SynthesizedVersion, Category: SynthesizedCategory}
}

// Mismatch is a recommended tool whose pinned version is older than the
// version the project declares.
type Mismatch struct {
	Tool       string `json:"tool"`
	Technology string `json:"technology"`
	Pinned     string `json:"pinned"`
	Required   string `json:"required"`
}

// Mismatches compares each recommended tool that tracks a technology
// against the scanned versions.
func (m *Mapper) Mismatches(set *Set, versions map[string]string) []Mismatch {
	var out []Mismatch
	for _, t := range set.AllTools() {
		spec, ok := m.Tools[t.Name]
		if !ok || spec.Tracks == "" {
			continue
		}
		required, ok := versions[spec.Tracks]
		if !ok {
			continue
		}
		if VersionMismatch(t.Version, required) {
			out = append(out, Mismatch{Tool: t.Name, Technology: spec.Tracks, Pinned: t.Version, Required: required})
		}
	}
	return out
}

// VersionMismatch reports whether pinned is a lower version than required.
// Either side failing to parse as a version (for example "Latest") is not
// a mismatch.
func VersionMismatch(pinned, required string) bool {
	p, err := semver.NewVersion(strings.TrimSpace(pinned))
	if err != nil {
		return false
	}
	r, err := semver.NewVersion(strings.TrimSpace(required))
	if err != nil {
		return false
	}
	return p.LessThan(r)
}
