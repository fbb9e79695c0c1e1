package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/scanner"
)

var scanJSON bool

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Detect the technologies a project uses",
	Long: `Walk a project directory and report the languages, frameworks, databases,
build systems and cloud services it uses. Versions are shown where a manifest
declares one (package.json engines, go.mod, pom.xml, Gemfile, ...).

The whole tree is scanned. Set respect_gitignore to skip node_modules,
.venv, __pycache__, IDE folders and what the project's .gitignore lists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		res, _, err := a.session.Scan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if scanJSON {
			return printJSON(cmd, detectionEntries(res))
		}
		return printDetection(cmd, args[0], res)
	},
}

// detectionEntry is one detected technology for display.
type detectionEntry struct {
	Technology string `json:"technology"`
	Version    string `json:"version,omitempty"`
}

func detectionEntries(res *scanner.Result) []detectionEntry {
	entries := []detectionEntry{}
	for _, tech := range res.Detected() {
		entries = append(entries, detectionEntry{Technology: tech, Version: res.Versions[tech]})
	}
	return entries
}

func printDetection(cmd *cobra.Command, dir string, res *scanner.Result) error {
	if res.Empty() {
		fmt.Fprintf(cmd.OutOrStdout(), "No technologies detected in %s\n", dir)
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TECHNOLOGY\tVERSION")
	for _, e := range detectionEntries(res) {
		fmt.Fprintf(w, "%s\t%s\n", e.Technology, orDash(e.Version))
	}
	return w.Flush()
}
