package catalog

import (
	"errors"
	"strings"
)

// Tool is an installable developer tool. Name is the identity key and is
// matched exactly (case-sensitive).
type Tool struct {
	Name             string `yaml:"name" json:"name"`
	Version          string `yaml:"version,omitempty" json:"version,omitempty"`
	Category         string `yaml:"category,omitempty" json:"category,omitempty"`
	InstallCommand   string `yaml:"install_command,omitempty" json:"install_command,omitempty"`
	ValidationScript string `yaml:"validation_script,omitempty" json:"validation_script,omitempty"`
	// IsInstalled caches the last probe outcome.
	IsInstalled bool `yaml:"is_installed" json:"is_installed"`
}

// Catalog errors.
var (
	ErrDuplicateName = errors.New("a tool with this name already exists")
	ErrNotFound      = errors.New("tool not found")
	ErrInvalidTool   = errors.New("tool name must not be empty")
)

// Validate checks the fields a catalog entry cannot do without.
func (t Tool) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidTool
	}
	return nil
}

// document is the on-disk shape of tools.yaml.
type document struct {
	Tools []Tool `yaml:"tools"`
}
