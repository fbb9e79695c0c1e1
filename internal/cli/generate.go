package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/platform"
	"github.com/environmint/envmint/internal/script"
	"github.com/environmint/envmint/internal/userdata"
)

var (
	generateFrom       string
	generateTools      []string
	generateCategories []string
	generateName       string
	generateDialect    string
	generateOutput     string
	generateSave       bool
)

func init() {
	generateCmd.Flags().StringVar(&generateFrom, "from", "", "Scan this project and select its recommendations")
	generateCmd.Flags().StringArrayVar(&generateTools, "tool", nil, "Select a tool by name (repeatable)")
	generateCmd.Flags().StringArrayVar(&generateCategories, "category", nil, "Select a recommendation category (repeatable, needs --from)")
	generateCmd.Flags().StringVar(&generateName, "name", "", "Environment name (default from default_environment_name)")
	generateCmd.Flags().StringVar(&generateDialect, "dialect", "", "Script language: PowerShell or Bash (default from default_script_language)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the script to this file or directory")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "Write the script to the scripts directory")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a setup script for a set of tools",
	Long: `Write an installation script for the selected tools. Nothing is installed;
review the script and run it yourself.

Tools are selected in this order:
  --from <dir>       scan the project; without --tool or --category every
                     recommended tool is selected
  --category <name>  every tool of one recommendation category
  --tool <name>      one recommended or catalog tool

The script goes to stdout unless --output or --save is given. Each tool's
install command is copied as is, followed by its validation script, which
reports [ OK ] or [FAIL] when the script runs.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateFrom == "" && len(generateTools) == 0 {
		return errors.New("nothing to generate: pass --from <dir> or --tool <name>")
	}
	if generateFrom == "" && len(generateCategories) > 0 {
		return errors.New("--category needs --from <dir>")
	}

	a, err := openAppWithDialect(generateDialect)
	if err != nil {
		return err
	}
	s := a.session

	if generateFrom != "" {
		if _, _, err := s.Scan(cmd.Context(), generateFrom); err != nil {
			return err
		}
		if len(generateTools) == 0 && len(generateCategories) == 0 {
			if _, err := s.SelectRecommended(); err != nil {
				return err
			}
		}
	}
	for _, c := range generateCategories {
		if _, err := s.SelectCategory(c); err != nil {
			return err
		}
	}
	for _, name := range generateTools {
		if err := s.SelectByName(name); err != nil {
			return err
		}
	}

	name := generateName
	if name == "" {
		name = a.settings.DefaultEnvironment
	}
	text, err := s.Generate(name)
	if err != nil {
		return err
	}

	dest, err := scriptDestination(name, a)
	if err != nil {
		return err
	}
	if dest == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := platform.WriteFileAtomic(dest, []byte(text), 0755); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d tools)\n", dest, len(s.Selected()))
	return nil
}

// scriptDestination resolves --output and --save to a file path, or ""
// for stdout. An existing directory receives the default file name.
func scriptDestination(name string, a *app) (string, error) {
	file := script.FileName(name, a.session.Dialect)
	switch {
	case generateOutput != "":
		if info, err := os.Stat(generateOutput); err == nil && info.IsDir() {
			return filepath.Join(generateOutput, file), nil
		}
		return generateOutput, nil
	case generateSave:
		dir, err := userdata.GetScriptsDir()
		if err != nil {
			return "", fmt.Errorf("resolving scripts directory: %w", err)
		}
		return filepath.Join(dir, file), nil
	default:
		return "", nil
	}
}
