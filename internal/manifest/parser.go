package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Parser extracts Findings from the contents of a manifest. path is used
// only in error messages.
type Parser func(path string, data []byte) (*Findings, error)

// Parser names.
const (
	PackageJSON  = "package.json"
	Requirements = "requirements.txt"
	PipfileLock  = "Pipfile.lock"
	PyProject    = "pyproject.toml"
	PomXML       = "pom.xml"
	Gradle       = "build.gradle"
	Gemfile      = "Gemfile"
	ComposerJSON = "composer.json"
	GoMod        = "go.mod"
	CargoTOML    = "Cargo.toml"
	MSBuild      = "msbuild"
)

var parsers = map[string]Parser{
	PackageJSON:  ParsePackageJSON,
	Requirements: ParseRequirements,
	PipfileLock:  ParsePipfileLock,
	PyProject:    ParsePyProject,
	PomXML:       ParsePom,
	Gradle:       ParseGradle,
	Gemfile:      ParseGemfile,
	ComposerJSON: ParseComposerJSON,
	GoMod:        ParseGoMod,
	CargoTOML:    ParseCargoTOML,
	MSBuild:      ParseMSBuild,
}

// Lookup returns the parser registered under name.
func Lookup(name string) (Parser, bool) {
	p, ok := parsers[name]
	return p, ok
}

// Names returns the registered parser names in sorted order.
func Names() []string {
	return sortedKeys(parsers)
}

// parseTyped unmarshals JSON data into a typed manifest struct.
func parseTyped[T any](data []byte, path string) (*T, error) {
	var m T
	if err := json.Unmarshal(stripBOM(data), &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// dependency maps a package identifier to the technology it implies.
type dependency struct {
	Package    string
	Technology string
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stripBOM drops a leading UTF-8 byte order mark, which Visual Studio
// writes into project files.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
}
