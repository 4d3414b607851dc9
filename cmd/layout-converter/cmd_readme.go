package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"layout-converter/internal/readme"
)

var skipMDX bool

var validateReadmeCmd = &cobra.Command{
	Use:   "validate-readme [files...]",
	Short: "Validate pack README files",
	Long: `Checks image links, empty sections and template leftovers, then verifies that
markdown READMEs parse as MDX.

The MDX check POSTs each document to the parse server configured under mdx.addr
(LAYOUT_CONVERTER_MDX_ADDR). When mdx.command (LAYOUT_CONVERTER_MDX_COMMAND) is
set the server is started on first use and stopped on exit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidateReadme,
}

func init() {
	validateReadmeCmd.Flags().BoolVar(&skipMDX, "skip-mdx", false, "skip the MDX parse check")
}

func runValidateReadme(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v := &readme.Validator{Logger: logger}

	if !skipMDX {
		mdx := readme.NewMDXServer(readme.MDXOptions{
			Addr:    cfg.MDX.Addr,
			Command: cfg.MDX.Command,
			Timeout: cfg.MDX.Timeout,
			Logger:  logger,
		})
		defer func() {
			err = errors.Join(err, mdx.Close())
		}()

		v.MDX = mdx
	}

	out := cmd.OutOrStdout()
	invalid := 0

	for _, path := range args {
		res, err := v.Validate(cmd.Context(), path)
		if err != nil {
			return err
		}

		if res.Valid() {
			fmt.Fprintf(out, "%s: ok\n", path)
			continue
		}

		invalid++

		logger.Warn("invalid readme", zap.String("path", path), zap.Int("problems", len(res.Problems)))
		fmt.Fprintf(out, "%s: invalid\n", path)

		for _, p := range res.Problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d readme files are invalid", invalid, len(args))
	}

	return nil
}
