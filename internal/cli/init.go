package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/userdata"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the settings, catalog and scripts directory",
	Long: `Create the home directory layout:

  settings.yaml   user settings
  tools.yaml      tool catalog, seeded with Git, Visual Studio Code and Node.js
  probe.env       extra environment for validation scripts (mode 0600)
  scripts/        saved setup scripts

Existing files are left alone. Set ENVMINT_HOME to use another directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := userdata.GetRoot()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initializing %s\n", root)

		if err := userdata.InitGlobal(out); err != nil {
			return fmt.Errorf("initializing %s: %w", root, err)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		// Load does not write a missing settings file; do it here so the
		// user has something to edit.
		if err := a.config.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "  [ OK ] %s\n", a.config.Path())
		fmt.Fprintf(out, "  [ OK ] %s (%d tools)\n", a.session.Catalog.Path(), a.session.Catalog.Len())

		fmt.Fprintln(out, "\nInitialized successfully.")
		return nil
	},
}
