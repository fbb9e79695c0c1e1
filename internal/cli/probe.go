package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	probeDeep bool
	probeJSON bool
)

func init() {
	probeCmd.Flags().BoolVar(&probeDeep, "deep", false, "Search scan_targets for tools whose validation script fails")
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which catalog tools are installed",
	Long: `Run every catalog tool's validation script and record the result in the
catalog. A tool counts as installed when its script exits 0 and prints
something; tools without a script count as missing.

With --deep, tools that fail validation are looked for as directories named
after the tool, up to three levels below each scan_targets entry. A tool found
that way is reported but still recorded as missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		return a.probeCatalog(cmd, probeDeep, probeJSON)
	},
}

// probeEntry is one probed tool for display.
type probeEntry struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
	FoundAt   string `json:"found_at,omitempty"`
}

func (a *app) probeCatalog(cmd *cobra.Command, deep, asJSON bool) error {
	var roots []string
	if deep {
		roots = a.settings.ScanTargets
	}
	locs, err := a.session.LocateCatalog(cmd.Context(), roots)
	if err != nil {
		return fmt.Errorf("probing catalog: %w", err)
	}

	var entries []probeEntry
	for _, t := range a.session.Catalog.Tools() {
		loc, ok := locs[t.Name]
		if !ok {
			continue
		}
		entries = append(entries, probeEntry{Name: t.Name, Installed: loc.Validated, FoundAt: loc.Path})
	}

	if asJSON {
		if entries == nil {
			entries = []probeEntry{}
		}
		return printJSON(cmd, entries)
	}

	out := cmd.OutOrStdout()
	installed := 0
	for _, e := range entries {
		switch {
		case e.Installed:
			installed++
			fmt.Fprintf(out, "  [ OK ] %s\n", e.Name)
		case e.FoundAt != "":
			fmt.Fprintf(out, "  [WARN] %s failed validation but %s exists\n", e.Name, e.FoundAt)
		default:
			fmt.Fprintf(out, "  [MISS] %s\n", e.Name)
		}
	}
	fmt.Fprintf(out, "\n%d of %d tools installed.\n", installed, len(entries))
	return nil
}
