// Package catalog persists the user's tool catalog at ~/.envmint/tools.yaml.
//
// A Store owns the in-memory list and the file. Every mutation is applied to
// a copy, written atomically, and only then committed in memory, so a failed
// save leaves both the file and the Store unchanged. Missing, empty or
// corrupt files are replaced with a small seed set on load.
package catalog
