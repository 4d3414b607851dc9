package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"layout-converter/internal/layout"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [dir]",
	Short: "List the layout groups found in a directory",
	Long: `Walks a directory the same way convert does and prints every layout id with
its container and legacy files. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&schemaPath, "schema", "", "layouts container schema (defaults to the embedded one)")
	discoverCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "glob of files to ignore, relative to dir")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("schema") {
		cfg.Schema = schemaPath
	}

	sch, err := loadSchema(cfg.Schema)
	if err != nil {
		return err
	}

	dir := args[0]

	idx, err := layout.Discover(dir, sch, layout.DiscoverOptions{
		Exclude: append(cfg.Exclude, excludes...),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	for _, g := range idx.Groups() {
		fmt.Fprintf(out, "%s (container: %t, legacy: %t)\n", g.ID, g.ContainerExists, g.LegacyExists)

		for _, f := range g.Files {
			rel, err := filepath.Rel(dir, f.Path)
			if err != nil {
				rel = f.Path
			}

			fmt.Fprintf(out, "  %-9s %s\n", f.Version, filepath.ToSlash(rel))
		}
	}

	fmt.Fprintf(out, "%d layouts, %d files skipped\n", idx.Len(), len(idx.Skipped))

	return nil
}
