// Package probe classifies catalog tools as installed or missing by
// running their validation scripts as external processes. Process
// execution sits behind the Runner interface so tests can fake it.
package probe
