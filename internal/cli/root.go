package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/branding"
	"github.com/environmint/envmint/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scans a project to work out which languages, frameworks, databases
and services it uses, recommends the developer tools that stack needs, checks
which of them are already installed and writes a setup script for the rest.

Run without a command to probe the tool catalog when auto_scan_on_startup is
enabled; otherwise this help is shown.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	if !a.settings.AutoScanOnStartup {
		return cmd.Help()
	}
	return a.probeCatalog(cmd, true, false)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.Logger.Error(err.Error())
	}
	return err
}
