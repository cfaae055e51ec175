package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ghostconf/schema"
)

var (
	groupStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	keyStyle     = lipgloss.NewStyle().Width(32)
	kindStyle    = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("241"))
	docStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

var schemaDocs bool

var schemaCmd = &cobra.Command{
	Use:   "schema [group]",
	Short: "Show the config fields grouped by section",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaDocs, "docs", false, "include field documentation")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	groups := schema.Ghostty.Groups()
	if len(args) == 1 {
		var picked []schema.Group
		for _, g := range groups {
			if strings.EqualFold(g.Name, args[0]) {
				picked = append(picked, g)
			}
		}
		if len(picked) == 0 {
			return fmt.Errorf("no schema group named %q", args[0])
		}
		groups = picked
	}

	out := cmd.OutOrStdout()
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, groupStyle.Render(g.Name))
		for _, sec := range g.Sections {
			fmt.Fprintln(out, "  "+sectionStyle.Render(sec.Name))
			for _, f := range sec.Fields {
				fmt.Fprintln(out, "    "+fieldLine(f))
				if schemaDocs && f.Doc != "" {
					fmt.Fprintln(out, "      "+docStyle.Render(f.Doc))
				}
			}
		}
	}
	return nil
}

func fieldLine(f schema.Field) string {
	def := "(unset)"
	if f.Default != nil {
		def = schema.Format(f.Default)
	}
	if len(f.Options) > 0 {
		def += "  [" + strings.Join(f.Options, "|") + "]"
	}
	return keyStyle.Render(f.Key) + kindStyle.Render(f.Kind.String()) + def
}
