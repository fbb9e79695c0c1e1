package shell

import (
	"fmt"
	"runtime"
	"strings"
)

// Dialect identifies a script language.
type Dialect string

// Supported dialects.
const (
	PowerShell Dialect = "PowerShell"
	Bash       Dialect = "Bash"
)

// Dialects lists every supported dialect in display order.
var Dialects = []Dialect{PowerShell, Bash}

// ParseDialect resolves a user-supplied dialect name. Matching is
// case-insensitive and accepts the common aliases ps, pwsh, sh and posix.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "powershell", "ps", "ps1", "pwsh":
		return PowerShell, nil
	case "bash", "sh", "posix":
		return Bash, nil
	default:
		return "", fmt.Errorf("unknown script dialect %q: supported dialects are %q and %q", s, PowerShell, Bash)
	}
}

// Default returns the dialect native to the running OS.
func Default() Dialect {
	if runtime.GOOS == "windows" {
		return PowerShell
	}
	return Bash
}

// Extension returns the script file extension including the dot.
func (d Dialect) Extension() string {
	if d == PowerShell {
		return ".ps1"
	}
	return ".sh"
}

// CommentPrefix returns the single-line comment marker.
func (d Dialect) CommentPrefix() string { return "#" }

// Interpreter returns the program and leading arguments that run an inline
// script in this dialect. The script text is appended as the final argument.
func (d Dialect) Interpreter() (string, []string) {
	return d.interpreterFor(runtime.GOOS)
}

func (d Dialect) interpreterFor(goos string) (string, []string) {
	if d == PowerShell {
		bin := "pwsh"
		if goos == "windows" {
			bin = "powershell.exe"
		}
		return bin, []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command"}
	}
	return "sh", []string{"-c"}
}

func (d Dialect) String() string { return string(d) }
