// Package main provides the CLI entrypoint for layout-converter.
//
// layout-converter keeps the two generations of layout definitions in a
// content pack consistent:
//   - every legacy per-kind layout gets a layouts container
//   - every kind of a container gets a legacy layout
//   - each pack is converted in a scratch copy and swapped in only on success
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"layout-converter/internal/config"
	"layout-converter/internal/schema"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "layout-converter",
	Short: "Convert content pack layouts between the legacy and container formats",
	Long: `layout-converter reads the Layouts directory of one or more content packs and
makes every layout available in both formats: one layouts container per layout
id, and one legacy layout per (id, kind).

Packs must live at ~/.../content/Packs/<PackName>.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error

		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(convertCmd, discoverCmd, validateReadmeCmd)
}

func main() {
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies environment overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()

	if configPath != "" {
		var err error

		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	return cfg, nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}

	return schema.LoadFile(path)
}
