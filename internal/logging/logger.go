// Package logging holds the shared application logger. Diagnostics go to
// stderr so command output on stdout stays pipeable.
package logging

import (
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger for CLI diagnostics.
// It prints to stderr with timestamps enabled.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "envmint",
})

// SetVerbose toggles debug-level output on the shared logger.
func SetVerbose(verbose bool) {
	if verbose {
		Logger.SetLevel(clog.DebugLevel)
		return
	}
	Logger.SetLevel(clog.InfoLevel)
}

// Discard returns a logger that drops everything. Handy for tests.
func Discard() *clog.Logger {
	return clog.New(io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *clog.Logger) *clog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
