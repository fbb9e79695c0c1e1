// Package manifest parses project manifests (package.json, go.mod, pom.xml,
// Cargo.toml, *.csproj and friends) into Findings: the technologies a
// manifest declares and any versions it pins. Parsers are pure functions
// over file contents and are looked up by name, so scanner rules can refer
// to them as data.
package manifest
