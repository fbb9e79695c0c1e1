package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

func TestSetVerbose(t *testing.T) {
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(true)
	if got := Logger.GetLevel(); got != clog.DebugLevel {
		t.Errorf("level = %v, want %v", got, clog.DebugLevel)
	}
	SetVerbose(false)
	if got := Logger.GetLevel(); got != clog.InfoLevel {
		t.Errorf("level = %v, want %v", got, clog.InfoLevel)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}

	var buf bytes.Buffer
	l := clog.New(&buf)
	if OrDiscard(l) != l {
		t.Error("OrDiscard should return a non-nil logger unchanged")
	}
	OrDiscard(l).Info("scanned", "dir", "/tmp/project")
	if !strings.Contains(buf.String(), "scanned") {
		t.Errorf("log output = %q, want it to contain the message", buf.String())
	}
}
