package cli

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/environmint/envmint/internal/catalog"
)

var searchJSON bool

func init() {
	catalogSearchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search catalog tools by name and category",
	Long: `Fuzzy-search catalog tools. The query matches characters of the tool name
or category in order, so "vsc" finds Visual Studio Code. Best matches come first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		found := searchTools(args[0], a.session.Catalog.Tools())

		if searchJSON {
			if found == nil {
				found = []catalog.Tool{}
			}
			return printJSON(cmd, found)
		}
		if len(found) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No tools found matching %q\n", args[0])
			return nil
		}
		return printToolTable(cmd, found)
	},
}

// toolSource exposes catalog tools to fuzzy matching as "name category".
type toolSource []catalog.Tool

func (s toolSource) String(i int) string {
	if s[i].Category == "" {
		return s[i].Name
	}
	return s[i].Name + " " + s[i].Category
}

func (s toolSource) Len() int { return len(s) }

// searchTools returns the tools matching query, best match first. Matches
// on the name outrank matches that need the category.
func searchTools(query string, tools []catalog.Tool) []catalog.Tool {
	if query == "" {
		return tools
	}
	var byName, byCategory []catalog.Tool
	for _, m := range fuzzy.FindFrom(query, toolSource(tools)) {
		if inName(m, len(tools[m.Index].Name)) {
			byName = append(byName, tools[m.Index])
		} else {
			byCategory = append(byCategory, tools[m.Index])
		}
	}
	return append(byName, byCategory...)
}

// inName reports whether every matched character falls inside the name.
func inName(m fuzzy.Match, nameLen int) bool {
	for _, i := range m.MatchedIndexes {
		if i >= nameLen {
			return false
		}
	}
	return true
}
