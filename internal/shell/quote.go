package shell

import (
	"bytes"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Quote returns s as a single literal word in the given dialect.
func Quote(s string, d Dialect) (string, error) {
	if d == PowerShell {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
	}
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quoting %q for bash: %w", s, err)
	}
	return q, nil
}

// CheckSyntax parses script as Bash and reports the first syntax error.
// Empty { } and ( ) groups are reported too: the parser accepts them but
// bash rejects them. PowerShell scripts are not checked and always return nil.
func CheckSyntax(script string, d Dialect) error {
	if d != Bash {
		return nil
	}
	f, err := parseBash(script)
	if err != nil {
		return fmt.Errorf("bash syntax: %w", err)
	}
	var empty syntax.Node
	syntax.Walk(f, func(n syntax.Node) bool {
		if empty != nil {
			return false
		}
		switch g := n.(type) {
		case *syntax.Block:
			if len(g.Stmts) == 0 {
				empty = g
			}
		case *syntax.Subshell:
			if len(g.Stmts) == 0 {
				empty = g
			}
		}
		return empty == nil
	})
	if empty != nil {
		return fmt.Errorf("bash syntax: %s: empty command group", empty.Pos())
	}
	return nil
}

// HasCommands reports whether script contains anything besides comments
// and blank lines. Bash scripts that fail to parse count as having
// commands so the error surfaces when they run.
func HasCommands(script string, d Dialect) bool {
	if d == Bash {
		f, err := parseBash(script)
		if err != nil {
			return true
		}
		return len(f.Stmts) > 0
	}
	inBlock := false
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if inBlock {
			if i := strings.Index(line, "#>"); i >= 0 {
				inBlock = false
				line = strings.TrimSpace(line[i+2:])
			} else {
				continue
			}
		}
		if strings.HasPrefix(line, "<#") {
			if i := strings.Index(line[2:], "#>"); i >= 0 {
				line = strings.TrimSpace(line[i+4:])
			} else {
				inBlock = true
				continue
			}
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}

func parseBash(script string) (*syntax.File, error) {
	p := syntax.NewParser(syntax.Variant(syntax.LangBash))
	return p.Parse(bytes.NewReader([]byte(script)), "")
}
