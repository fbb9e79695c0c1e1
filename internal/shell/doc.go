// Package shell describes the two script dialects envmint understands,
// PowerShell and Bash: how to invoke their interpreters, how to quote
// literals for them and how to syntax-check POSIX scripts.
package shell
