package manifest

import "strings"

// Findings is what a parser learned from one manifest.
type Findings struct {
	// Technologies in the order they were flagged, without duplicates.
	Technologies []string
	// Versions maps a technology to the version string the manifest pins.
	Versions map[string]string
}

// NewFindings returns an empty Findings.
func NewFindings() *Findings {
	return &Findings{Versions: make(map[string]string)}
}

// Flag records tech as present.
func (f *Findings) Flag(tech string) {
	for _, t := range f.Technologies {
		if t == tech {
			return
		}
	}
	f.Technologies = append(f.Technologies, tech)
}

// Version flags tech and records v when it is non-empty after stripping
// range operators. A later call for the same tech overwrites the version.
func (f *Findings) Version(tech, v string) {
	f.Flag(tech)
	if v = StripVersion(v); v != "" {
		f.Versions[tech] = v
	}
}

// StripVersion removes leading range operators and whitespace from a
// version constraint and keeps only the first clause: "^18.2.0" becomes
// "18.2.0", ">= 3.10, <4" becomes "3.10".
func StripVersion(v string) string {
	v = strings.Trim(strings.TrimSpace(v), `"'`)
	v = strings.TrimLeft(v, "^~><=! \t")
	if i := strings.IndexAny(v, ", \t|"); i >= 0 {
		v = v[:i]
	}
	return v
}
