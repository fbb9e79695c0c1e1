package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

var crates = []dependency{
	{"rocket", "Rocket"},
	{"actix-web", "Actix Web"},
	{"warp", "Warp"},
	{"axum", "Axum"},
	{"tokio", "Tokio"},
	{"diesel", "Diesel"},
	{"sqlx", "SQLx"},
}

type cargoManifest struct {
	Package struct {
		RustVersion string `toml:"rust-version"`
	} `toml:"package"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

// ParseCargoTOML reads [dependencies] through the crate table and
// package.rust-version as the Rust version.
func ParseCargoTOML(path string, data []byte) (*Findings, error) {
	var c cargoManifest
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	f := NewFindings()
	if c.Package.RustVersion != "" {
		f.Version("Rust", c.Package.RustVersion)
	}
	for _, d := range crates {
		if v, ok := c.Dependencies[d.Package]; ok {
			f.Version(d.Technology, versionString(v))
		}
	}
	return f, nil
}
