package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/environmint/envmint/internal/branding"
)

// File and directory names under the envmint home.
const (
	CatalogFile  = "tools.yaml"
	SettingsFile = "settings.yaml"
	ProbeEnvFile = "probe.env"
	ScriptsDir   = "scripts"
)

// Permission constants.
const (
	DirPermSecure  os.FileMode = 0700
	FilePermSecure os.FileMode = 0600
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetRoot returns the envmint home directory.
// It checks the ENVMINT_HOME environment variable first,
// then falls back to ~/.envmint.
func GetRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetCatalogPath returns the path to the persisted tool catalog.
func GetCatalogPath() (string, error) {
	return join(CatalogFile)
}

// GetSettingsPath returns the path to settings.yaml.
func GetSettingsPath() (string, error) {
	return join(SettingsFile)
}

// GetProbeEnvPath returns the path to the env file whose entries are added
// to every validation script's environment.
func GetProbeEnvPath() (string, error) {
	return join(ProbeEnvFile)
}

// GetScriptsDir returns the directory generated setup scripts are saved to.
func GetScriptsDir() (string, error) {
	return join(ScriptsDir)
}

func join(name string) (string, error) {
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
