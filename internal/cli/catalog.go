package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/catalog"
)

var (
	catalogListJSON      bool
	catalogListInstalled bool
	catalogListMissing   bool

	toolVersion  string
	toolCategory string
	toolInstall  string
	toolValidate string
	toolRename   string
)

func init() {
	catalogListCmd.Flags().BoolVar(&catalogListJSON, "json", false, "Output in JSON format")
	catalogListCmd.Flags().BoolVar(&catalogListInstalled, "installed", false, "Only tools found by the last probe")
	catalogListCmd.Flags().BoolVar(&catalogListMissing, "missing", false, "Only tools not found by the last probe")

	for _, c := range []*cobra.Command{catalogAddCmd, catalogUpdateCmd} {
		c.Flags().StringVar(&toolVersion, "version", "", "Tool version")
		c.Flags().StringVar(&toolCategory, "category", "", "Tool category")
		c.Flags().StringVar(&toolInstall, "install", "", "Install command copied into setup scripts")
		c.Flags().StringVar(&toolValidate, "validate", "", "Validation script; prints output and exits 0 when installed")
	}
	catalogUpdateCmd.Flags().StringVar(&toolRename, "rename", "", "New tool name")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogUpdateCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the tool catalog",
	Long: `Manage the catalog of installable tools stored in tools.yaml.

Each tool has a unique name, a version, a category, the command that installs
it and a validation script that prints something and exits 0 when the tool is
present. Recommendations reuse catalog entries by exact name.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogListInstalled && catalogListMissing {
			return errors.New("--installed and --missing are mutually exclusive")
		}
		a, err := openApp()
		if err != nil {
			return err
		}

		var tools []catalog.Tool
		for _, t := range a.session.Catalog.Tools() {
			if catalogListInstalled && !t.IsInstalled || catalogListMissing && t.IsInstalled {
				continue
			}
			tools = append(tools, t)
		}

		if catalogListJSON {
			if tools == nil {
				tools = []catalog.Tool{}
			}
			return printJSON(cmd, tools)
		}
		if len(tools) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tools match.")
			return nil
		}
		return printToolTable(cmd, tools)
	},
}

func printToolTable(cmd *cobra.Command, tools []catalog.Tool) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tSTATUS")
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, orDash(t.Version), orDash(t.Category), installedLabel(t.IsInstalled))
	}
	return w.Flush()
}

func installedLabel(installed bool) string {
	if installed {
		return "installed"
	}
	return "missing"
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a tool to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		t := catalog.Tool{
			Name:             args[0],
			Version:          toolVersion,
			Category:         toolCategory,
			InstallCommand:   toolInstall,
			ValidationScript: toolValidate,
		}
		if err := a.session.Catalog.Add(t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", t.Name)
		return nil
	},
}

var catalogUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Change fields of a catalog tool",
	Long: `Change fields of a catalog tool. Only the flags given are changed.
The cached installed flag is cleared because the validation script may differ.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		name := args[0]
		t, ok := a.session.Catalog.Find(name)
		if !ok {
			return fmt.Errorf("updating %q: %w", name, catalog.ErrNotFound)
		}

		flags := cmd.Flags()
		if flags.Changed("version") {
			t.Version = toolVersion
		}
		if flags.Changed("category") {
			t.Category = toolCategory
		}
		if flags.Changed("install") {
			t.InstallCommand = toolInstall
		}
		if flags.Changed("validate") {
			t.ValidationScript = toolValidate
			t.IsInstalled = false
		}
		if flags.Changed("rename") {
			t.Name = toolRename
		}

		if err := a.session.Catalog.Rename(name, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", t.Name)
		return nil
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a tool from the catalog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.session.Catalog.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}
