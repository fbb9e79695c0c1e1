package manifest

import "regexp"

var (
	gemfileRuby         = regexp.MustCompile(`(?m)^\s*ruby\s+['"]([^'"]+)['"]`)
	gemfileRails        = regexp.MustCompile(`(?m)^\s*gem\s+['"]rails['"]`)
	gemfileRailsVersion = regexp.MustCompile(`(?m)^\s*gem\s+['"]rails['"],\s*['"]([^'"]+)['"]`)
)

// ParseGemfile reads the ruby directive and the rails gem.
func ParseGemfile(_ string, data []byte) (*Findings, error) {
	f := NewFindings()
	if m := gemfileRuby.FindSubmatch(data); m != nil {
		f.Version("Ruby", string(m[1]))
	}
	if gemfileRails.Match(data) {
		f.Flag("Ruby on Rails")
		if m := gemfileRailsVersion.FindSubmatch(data); m != nil {
			f.Version("Ruby on Rails", string(m[1]))
		}
	}
	return f, nil
}
