package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/catalog"
	"github.com/environmint/envmint/internal/shell"
	"github.com/environmint/envmint/internal/userdata"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing directories and tighten probe.env permissions")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the installation and stored files",
	Long: `Run diagnostic checks:

  interpreters   sh and PowerShell available for validation scripts
  home           home directory layout and probe.env permissions
  catalog        tools.yaml against the catalog schema
  scripts        saved Bash scripts parse`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		runInterpreterCheck(out)
		if err := userdata.CheckUserdata(out, doctorFix); err != nil {
			return err
		}
		if err := runCatalogCheck(out); err != nil {
			return err
		}
		return runScriptsCheck(out)
	},
}

func runInterpreterCheck(w io.Writer) {
	fmt.Fprintln(w, "Interpreter check:")
	for _, d := range shell.Dialects {
		name, _ := d.Interpreter()
		path, err := exec.LookPath(name)
		if err != nil {
			fmt.Fprintf(w, "  [MISS] %s (%s) not found; %s validation scripts report missing\n", name, d, d)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
	}
}

func runCatalogCheck(w io.Writer) error {
	path, err := userdata.GetCatalogPath()
	if err != nil {
		return fmt.Errorf("resolving catalog path: %w", err)
	}
	fmt.Fprintf(w, "Catalog check: %s\n", path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintln(w, "  [MISS] catalog not created yet (seeded on first use)")
		return nil
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return nil
	}

	report, err := catalog.Validate(data)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return nil
	}
	if report.Valid() {
		fmt.Fprintln(w, "  [ OK ] catalog matches the schema")
		return nil
	}
	if !report.Usable() {
		fmt.Fprintf(w, "  [FAIL] %d file issue(s); the catalog will be reset to defaults on next use:\n", len(report.File))
		for _, issue := range report.File {
			fmt.Fprintf(w, "    - %s\n", issue)
		}
		return nil
	}
	for _, e := range report.Entries {
		fmt.Fprintf(w, "  [WARN] %s is invalid and will be ignored:\n", e.Tool)
		for _, issue := range e.Issues {
			fmt.Fprintf(w, "    - %s\n", issue)
		}
	}
	return nil
}

func runScriptsCheck(w io.Writer) error {
	dir, err := userdata.GetScriptsDir()
	if err != nil {
		return fmt.Errorf("resolving scripts directory: %w", err)
	}
	fmt.Fprintf(w, "Scripts check: %s\n", dir)

	paths, err := filepath.Glob(filepath.Join(dir, "*"+shell.Bash.Extension()))
	if err != nil {
		return fmt.Errorf("listing scripts: %w", err)
	}
	if len(paths) == 0 {
		fmt.Fprintln(w, "  [SKIP] no saved Bash scripts")
		return nil
	}
	sort.Strings(paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", filepath.Base(p), err)
			continue
		}
		if err := shell.CheckSyntax(string(data), shell.Bash); err != nil {
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", filepath.Base(p), err)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s\n", filepath.Base(p))
	}
	return nil
}
