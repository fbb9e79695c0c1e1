package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/recommend"
)

var recommendJSON bool

func init() {
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <dir>",
	Short: "Recommend tools for a project",
	Long: `Scan a project and list the tools its stack needs, grouped by category.
Catalog entries are used where a tool of the same name exists; their installed
status comes from the last probe. Git and Visual Studio Code are always
recommended.

A warning is printed when a catalog tool is pinned to a version older than
the one the project declares.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		_, set, err := a.session.Scan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		mismatches := a.session.Mismatches()

		if recommendJSON {
			return printJSON(cmd, struct {
				*recommend.Set
				Mismatches []recommend.Mismatch `json:"version_warnings,omitempty"`
			}{set, mismatches})
		}

		out := cmd.OutOrStdout()
		for i, c := range set.Categories {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", c.Name)
			for _, t := range c.Tools {
				status := "[MISS]"
				if known, ok := a.session.Catalog.Find(t.Name); ok && known.IsInstalled {
					status = "[ OK ]"
				}
				fmt.Fprintf(out, "  %s %s (%s)\n", status, t.Name, orDash(t.Version))
			}
		}
		if len(mismatches) > 0 {
			fmt.Fprintln(out)
		}
		for _, m := range mismatches {
			fmt.Fprintf(out, "  [WARN] %s is pinned to %s but the project declares %s %s\n", m.Tool, m.Pinned, m.Technology, m.Required)
		}
		return nil
	},
}
