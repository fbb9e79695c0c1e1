package branding

import (
	"bytes"
	"testing"

	"go.yaml.in/yaml/v3"
)

func TestEmbeddedIdentity(t *testing.T) {
	if got := CLIName(); got != "envmint" {
		t.Errorf("CLIName() = %q, want %q", got, "envmint")
	}
	if got := HomeDir(); got != ".envmint" {
		t.Errorf("HomeDir() = %q, want %q", got, ".envmint")
	}
}

func TestEmbeddedFileHasOnlyKnownKeys(t *testing.T) {
	dec := yaml.NewDecoder(bytes.NewReader(rawBranding))
	dec.KnownFields(true)
	var b brand
	if err := dec.Decode(&b); err != nil {
		t.Fatalf("branding.yaml: %v", err)
	}
	if b.DisplayName != DisplayName() || b.EnvPrefix != EnvPrefix() || b.Description != Description() {
		t.Errorf("decoded %+v does not match the accessors", b)
	}
}

func TestEnvVar(t *testing.T) {
	tests := []struct {
		suffix string
		want   string
	}{
		{"HOME", "ENVMINT_HOME"},
		{"home", "ENVMINT_HOME"},
		{"scan_targets", "ENVMINT_SCAN_TARGETS"},
	}
	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			if got := EnvVar(tt.suffix); got != tt.want {
				t.Errorf("EnvVar(%q) = %q, want %q", tt.suffix, got, tt.want)
			}
		})
	}
}
