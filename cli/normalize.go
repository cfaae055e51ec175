package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"ghostconf/codec"
	"ghostconf/schema"
)

var (
	normalizeOutput string

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Rewrite a config in canonical, default-filled form",
	Long: `Parse a config file against the built-in defaults and print it back in
schema order. Unknown keys, comments and blank lines are dropped. Use "-" to
read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show the line differences between two normalized configs",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(diffCmd)
}

// readConfig reads a config file, or stdin when path is "-".
func readConfig(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading config: %w", err)
	}
	return string(data), nil
}

// writeConfig writes text followed by a newline to path, or to the command's
// output when path is empty.
func writeConfig(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	text, err := readConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := writeConfig(cmd, normalizeOutput, codec.Normalize(schema.Ghostty, text)); err != nil {
		return err
	}
	if normalizeOutput != "" {
		logSuccess("Wrote %s", normalizeOutput)
	}
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := readConfig(cmd, args[0])
	if err != nil {
		return err
	}
	b, err := readConfig(cmd, args[1])
	if err != nil {
		return err
	}
	lines := diffLines(codec.Normalize(schema.Ghostty, a), codec.Normalize(schema.Ghostty, b))
	if len(lines) == 0 {
		logInfo("No differences")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, l := range lines {
		switch l[0] {
		case '+':
			fmt.Fprintln(out, addedStyle.Render(l))
		case '-':
			fmt.Fprintln(out, removedStyle.Render(l))
		}
	}
	return nil
}

// diffLines returns the changed lines between a and b, each prefixed with
// "-" or "+", in the order they appear.
func diffLines(a, b string) []string {
	dmp := diffmatchpatch.New()
	ca, cb, index := dmp.DiffLinesToChars(a+"\n", b+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), index)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}
