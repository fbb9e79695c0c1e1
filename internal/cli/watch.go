package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/engine"
)

var watchSettle time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", engine.DefaultSettle, "Quiet period before rescanning")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Rescan a project whenever it changes",
	Long: `Scan a project, then rescan it each time files change and the tree has
been quiet for --settle. Technologies that appear or disappear are reported.
Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		var last map[string]bool

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", args[0])
		return a.session.Watch(cmd.Context(), args[0], watchSettle, func(u engine.Update) {
			if u.Err != nil {
				fmt.Fprintf(out, "  [FAIL] scan: %v\n", u.Err)
				return
			}
			now := make(map[string]bool)
			for _, tech := range u.Detection.Detected() {
				now[tech] = true
			}
			if last == nil {
				fmt.Fprintf(out, "%d technologies detected, %d tools recommended\n", len(now), len(u.Recommendations.AllTools()))
			}
			for _, tech := range u.Detection.Detected() {
				if last != nil && !last[tech] {
					fmt.Fprintf(out, "  [ADD ] %s\n", tech)
				}
			}
			var gone []string
			for tech := range last {
				if !now[tech] {
					gone = append(gone, tech)
				}
			}
			sort.Strings(gone)
			for _, tech := range gone {
				fmt.Fprintf(out, "  [GONE] %s\n", tech)
			}
			last = now
		})
	},
}
