package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ghostconf/codec"
	"ghostconf/preset"
	"ghostconf/schema"
)

var (
	listQuery    string
	listCategory string

	draftFile        string
	draftName        string
	draftCategory    string
	draftDescription string

	applyOutput   string
	applyPrevious string

	exportDir string
)

var presetsCmd = &cobra.Command{
	Use:     "presets",
	Aliases: []string{"preset"},
	Short:   "Manage local presets and browse the community catalog",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local and community presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a preset and its config",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsShow,
}

var presetsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a config file as a new local preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsAdd,
}

var presetsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a local preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsEdit,
}

var presetsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a local preset",
	Args:    cobra.ExactArgs(1),
	RunE:    runPresetsRm,
}

var presetsDupCmd = &cobra.Command{
	Use:   "dup <id>",
	Short: "Copy a community preset into the local collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsDup,
}

var presetsApplyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "Write the normalized config of a preset",
	Long: `Parse the preset's config, optionally layered over an existing config
file given with --previous, and write the normalized result.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetsApply,
}

var presetsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Save the raw config of a preset as <name>.conf",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsExport,
}

func init() {
	presetsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "only presets whose name or description contains this text")
	presetsListCmd.Flags().StringVar(&listCategory, "category", "", "only presets in this category")

	for _, c := range []*cobra.Command{presetsAddCmd, presetsEditCmd} {
		c.Flags().StringVarP(&draftFile, "file", "f", "", `config file ("-" for stdin)`)
		c.Flags().StringVar(&draftCategory, "category", "", "category (default "+preset.DefaultCategory+")")
		c.Flags().StringVar(&draftDescription, "description", "", "short description")
	}
	presetsAddCmd.MarkFlagRequired("file")
	presetsEditCmd.Flags().StringVar(&draftName, "name", "", "new name")

	presetsApplyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "write to this file instead of stdout")
	presetsApplyCmd.Flags().StringVar(&applyPrevious, "previous", "", "config to layer the preset over")

	presetsExportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "directory to write the file into")

	presetsCmd.AddCommand(presetsListCmd, presetsShowCmd, presetsAddCmd, presetsEditCmd,
		presetsRmCmd, presetsDupCmd, presetsApplyCmd, presetsExportCmd)
	rootCmd.AddCommand(presetsCmd)
}

// withPresets runs fn against a freshly opened preset manager. Commands that
// read community entries pass refresh so the remote index is consulted.
func withPresets(cmd *cobra.Command, refresh bool, fn func(e *env) error) error {
	e, err := openEnv(cmd.Context(), refresh)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

func lookup(e *env, id string) (preset.Preset, error) {
	p, ok := e.presets.Get(id)
	if !ok {
		return preset.Preset{}, fmt.Errorf("preset %q: %w", id, preset.ErrNotFound)
	}
	return p, nil
}

func resolve(cmd *cobra.Command, e *env, p preset.Preset) (string, error) {
	text, ok := e.presets.ResolveConfig(cmd.Context(), p)
	if !ok {
		return "", fmt.Errorf("preset %q: config is not available", p.ID)
	}
	return text, nil
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	return withPresets(cmd, true, func(e *env) error {
		list := preset.Filter(e.presets.List(), listQuery, listCategory)
		if len(list) == 0 {
			logInfo("No presets found. Save one with: ghostconf presets add <name> -f <file>")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSOURCE")
		fmt.Fprintln(w, "--\t----\t--------\t------")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Source)
		}
		return w.Flush()
	})
}

func runPresetsShow(cmd *cobra.Command, args []string) error {
	return withPresets(cmd, true, func(e *env) error {
		p, err := lookup(e, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:          %s\n", p.ID)
		fmt.Fprintf(out, "Name:        %s\n", p.Name)
		fmt.Fprintf(out, "Category:    %s\n", p.Category)
		fmt.Fprintf(out, "Description: %s\n", p.Description)
		fmt.Fprintf(out, "Source:      %s\n", p.Source)
		if p.SourceURL != "" {
			fmt.Fprintf(out, "URL:         %s\n", p.SourceURL)
		}
		text, err := resolve(cmd, e, p)
		if err != nil {
			logWarning("%v", err)
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, text)
		return nil
	})
}

func runPresetsAdd(cmd *cobra.Command, args []string) error {
	text, err := readConfig(cmd, draftFile)
	if err != nil {
		return err
	}
	return withPresets(cmd, false, func(e *env) error {
		p, err := e.presets.Create(preset.Draft{
			Name:        args[0],
			Category:    draftCategory,
			Description: draftDescription,
			Config:      text,
		})
		if err != nil {
			return err
		}
		logSuccess("Saved preset %s", p.ID)
		return nil
	})
}

func runPresetsEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("file") && !flags.Changed("category") && !flags.Changed("description") {
		return fmt.Errorf("nothing to change: pass --name, --file, --category or --description")
	}
	return withPresets(cmd, false, func(e *env) error {
		p, err := lookup(e, args[0])
		if err != nil {
			return err
		}
		d := preset.Draft{Name: p.Name, Category: p.Category, Description: p.Description, Config: p.Config}
		if flags.Changed("name") {
			d.Name = draftName
		}
		if flags.Changed("category") {
			d.Category = draftCategory
		}
		if flags.Changed("description") {
			d.Description = draftDescription
		}
		if flags.Changed("file") {
			if d.Config, err = readConfig(cmd, draftFile); err != nil {
				return err
			}
		}
		if _, err := e.presets.Update(p.ID, d); err != nil {
			return err
		}
		logSuccess("Updated preset %s", p.ID)
		return nil
	})
}

func runPresetsRm(cmd *cobra.Command, args []string) error {
	return withPresets(cmd, false, func(e *env) error {
		if err := e.presets.Delete(args[0]); err != nil {
			return err
		}
		logSuccess("Deleted preset %s", args[0])
		return nil
	})
}

func runPresetsDup(cmd *cobra.Command, args []string) error {
	return withPresets(cmd, true, func(e *env) error {
		p, err := lookup(e, args[0])
		if err != nil {
			return err
		}
		text, err := resolve(cmd, e, p)
		if err != nil {
			return err
		}
		dup, err := e.presets.DuplicateFromCommunity(p, text)
		if err != nil {
			return err
		}
		logSuccess("Saved %s as %s", p.ID, dup.ID)
		return nil
	})
}

func runPresetsApply(cmd *cobra.Command, args []string) error {
	var previous codec.State
	if applyPrevious != "" {
		text, err := readConfig(cmd, applyPrevious)
		if err != nil {
			return err
		}
		previous = codec.Parse(text, schema.Ghostty, nil)
	}
	return withPresets(cmd, true, func(e *env) error {
		p, err := lookup(e, args[0])
		if err != nil {
			return err
		}
		text, err := resolve(cmd, e, p)
		if err != nil {
			return err
		}
		st := codec.Parse(text, schema.Ghostty, previous)
		if err := writeConfig(cmd, applyOutput, codec.Serialize(schema.Ghostty, st)); err != nil {
			return err
		}
		if err := e.presets.MarkApplied(p.ID); err != nil {
			logWarning("Could not record %s as recently applied: %v", p.ID, err)
		}
		if applyOutput != "" {
			logSuccess("Applied %s to %s", p.ID, applyOutput)
		}
		return nil
	})
}

func runPresetsExport(cmd *cobra.Command, args []string) error {
	return withPresets(cmd, true, func(e *env) error {
		p, err := lookup(e, args[0])
		if err != nil {
			return err
		}
		text, err := resolve(cmd, e, p)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(exportDir, preset.FileName(p))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		logSuccess("Exported %s to %s", p.ID, path)
		return nil
	})
}
