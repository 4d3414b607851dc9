package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"layout-converter/internal/convert"
)

var (
	schemaPath string
	dryRun     bool
	excludes   []string
	scratchDir string
	jsonOutput bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [packs...]",
	Short: "Convert the layouts of one or more packs",
	Long: `Converts every pack in turn. All pack paths are validated before any pack is
modified. Each pack is converted in a scratch copy that replaces the original
Layouts directory only when the whole pack succeeded.

Example:
  layout-converter convert ~/dev/content/Packs/Phishing ~/dev/content/Packs/Okta`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&schemaPath, "schema", "", "layouts container schema (defaults to the embedded one)")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "convert in scratch only and report the changes")
	convertCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "glob of layout files to ignore, relative to Layouts")
	convertCmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "parent directory of the scratch copies")
	convertCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("schema") {
		cfg.Schema = schemaPath
	}

	if cmd.Flags().Changed("scratch-dir") {
		cfg.ScratchDir = scratchDir
	}

	cfg.Exclude = append(cfg.Exclude, excludes...)

	sch, err := loadSchema(cfg.Schema)
	if err != nil {
		return err
	}

	conv := convert.New(convert.Options{
		Schema:     sch,
		Separators: cfg.Separators,
		Shape:      cfg.Shape(),
		LayoutsDir: cfg.LayoutsDir,
		ScratchDir: cfg.ScratchDir,
		Exclude:    cfg.Exclude,
		DryRun:     dryRun,
		Logger:     logger,
	})

	report, runErr := conv.Run(cmd.Context(), args)

	err = printReport(cmd, report)
	if err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("conversion failed: %w", runErr)
	}

	return nil
}

func printReport(cmd *cobra.Command, report *convert.Report) error {
	out := cmd.OutOrStdout()

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	return report.WriteText(out)
}
