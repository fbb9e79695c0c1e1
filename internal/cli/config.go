package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/config"
	"github.com/environmint/envmint/internal/logging"
	"github.com/environmint/envmint/internal/userdata"
)

var configListJSON bool

func init() {
	configListCmd.Flags().BoolVar(&configListJSON, "json", false, "Output in JSON format")
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored in settings.yaml under the home directory.

Keys:
  scan_targets              comma-separated directories searched by probe --deep
  auto_scan_on_startup      probe the catalog when run without a command
  default_script_language   PowerShell or Bash
  respect_gitignore         skip dependency folders and .gitignore entries while scanning
  probe_timeout             limit for one validation script (e.g. 30s)
  probe_concurrency         validation scripts run at once
  scan_concurrency          files read at once while scanning
  default_environment_name  name used by generate when --name is not given

Environment variables named ENVMINT_<KEY> override the file for one run;
they are never written to it.`,
}

func openConfig() (*config.Store, error) {
	path, err := userdata.GetSettingsPath()
	if err != nil {
		return nil, fmt.Errorf("resolving settings path: %w", err)
	}
	store := config.New(path, logging.Logger)
	if _, err := store.Load(); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return store, nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, store.Get(key))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), store.Get(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return err
		}
		all := store.All()
		if configListJSON {
			return printJSON(cmd, all)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, k := range config.Keys() {
			fmt.Fprintf(w, "%s\t%s\n", k, orDash(all[k]))
		}
		return w.Flush()
	},
}
