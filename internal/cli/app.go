package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/config"
	"github.com/environmint/envmint/internal/engine"
	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/probe"
	"github.com/environmint/envmint/internal/shell"
	"github.com/environmint/envmint/internal/userdata"
)

// app bundles what most commands need: the settings, their store and an
// engine session over the user's catalog.
type app struct {
	config   *config.Store
	settings config.Settings
	session  *engine.Session
}

// openApp loads settings and the catalog. A dialect other than "" overrides
// the default_script_language setting.
func openApp() (*app, error) {
	return openAppWithDialect("")
}

func openAppWithDialect(override string) (*app, error) {
	settingsPath, err := userdata.GetSettingsPath()
	if err != nil {
		return nil, fmt.Errorf("resolving settings path: %w", err)
	}
	if err := ensureRoot(); err != nil {
		return nil, err
	}

	store := config.New(settingsPath, logging.Logger)
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	opts := engine.OptionsFromSettings(settings)
	if override != "" {
		d, err := shell.ParseDialect(override)
		if err != nil {
			return nil, err
		}
		opts.Dialect = d
	}

	catalogPath, err := userdata.GetCatalogPath()
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}
	cat, err := catalog.Open(catalogPath, opts.Dialect, logging.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	envFile, err := userdata.GetProbeEnvPath()
	if err != nil {
		return nil, fmt.Errorf("resolving probe environment path: %w", err)
	}
	opts.Runner = &probe.ExecRunner{EnvFile: envFile}
	opts.Logger = logging.Logger

	return &app{config: store, settings: settings, session: engine.New(cat, opts)}, nil
}

// ensureRoot creates the home directory so the stores can write into it.
func ensureRoot() error {
	root, err := userdata.GetRoot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", root, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
