package script

import (
	"fmt"
	"strings"

	"github.com/environmint/envmint/internal/branding"
	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/shell"
)

// DefaultEnvironmentName replaces a blank environment name.
const DefaultEnvironmentName = "DevEnvironment"

// EnvironmentName returns name trimmed, or DefaultEnvironmentName when blank.
func EnvironmentName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultEnvironmentName
	}
	return name
}

// FileName derives the script file name: spaces are removed and
// _Setup plus the dialect extension is appended.
func FileName(envName string, d shell.Dialect) string {
	base := strings.ReplaceAll(EnvironmentName(envName), " ", "")
	return base + "_Setup" + d.Extension()
}

// Generate renders an installation script for tools in order. Commands
// are copied literally; nothing is executed. The output depends only on
// the arguments.
func Generate(envName string, tools []catalog.Tool, d shell.Dialect) string {
	name := EnvironmentName(envName)
	w := &writer{d: d}

	if d == shell.Bash {
		w.line("#!/usr/bin/env bash")
	}
	w.comment(fmt.Sprintf("%s setup script for %s", branding.DisplayName(), name))
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	w.comment("Tools: " + strings.Join(names, ", "))
	w.comment("Review every command before running this script.")
	w.blank()
	if d == shell.PowerShell {
		w.line("$ErrorActionPreference = 'Continue'")
	}
	w.say("Setting up " + name)

	for _, t := range tools {
		w.blank()
		w.tool(t)
	}

	w.blank()
	w.say(name + " setup complete")
	return w.String()
}

type writer struct {
	d shell.Dialect
	b strings.Builder
}

func (w *writer) String() string { return w.b.String() }

func (w *writer) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) blank() { w.b.WriteByte('\n') }

// comment writes text as one comment line; line breaks in text are folded.
func (w *writer) comment(text string) {
	text = strings.Join(strings.Fields(text), " ")
	w.line(strings.TrimRight(w.d.CommentPrefix()+" "+text, " "))
}

func (w *writer) say(text string) {
	if w.d == shell.PowerShell {
		w.line("Write-Host " + w.quote(text))
		return
	}
	w.line("echo " + w.quote(text))
}

// quote renders text as a literal word. Bash quoting fails only on NUL
// bytes, which are dropped.
func (w *writer) quote(text string) string {
	q, err := shell.Quote(strings.ReplaceAll(text, "\x00", ""), w.d)
	if err != nil {
		return "'" + strings.ReplaceAll(text, "'", `'\''`) + "'"
	}
	return q
}

func (w *writer) tool(t catalog.Tool) {
	header := t.Name
	if v := strings.TrimSpace(t.Version); v != "" {
		header += " (" + v + ")"
	}
	w.comment("==== " + header + " ====")

	install := strings.TrimSpace(t.InstallCommand)
	if install == "" {
		w.comment("No install command for " + t.Name + "; install it manually.")
	} else {
		w.say("Installing " + t.Name + "...")
		w.line(install)
	}

	validate := strings.TrimSpace(t.ValidationScript)
	if !shell.HasCommands(validate, w.d) {
		// Comment-only scripts are kept as written.
		for _, l := range strings.Split(validate, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				w.line(l)
			}
		}
		w.say("[SKIP] " + t.Name + " has no validation script")
		return
	}

	ok := w.quote("[ OK ] " + t.Name)
	fail := w.quote("[FAIL] " + t.Name)
	if w.d == shell.PowerShell {
		// Write-Host goes to the information stream; 6>&1 pipes it into Out-String.
		w.line("$output = & {")
		w.line(validate)
		w.line("} 6>&1 2>$null | Out-String")
		w.line("if ($output.Trim()) {")
		w.line("    Write-Host " + ok)
		w.line("} else {")
		w.line("    Write-Host " + fail)
		w.line("}")
		return
	}
	w.line("if output=$({")
	w.line(validate)
	w.line(`} 2>/dev/null) && [ -n "$output" ]; then`)
	w.line("\techo " + ok)
	w.line("else")
	w.line("\techo " + fail)
	w.line("fi")
}
