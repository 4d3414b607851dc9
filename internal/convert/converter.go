package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"layout-converter/internal/common"
	"layout-converter/internal/diagnostic"
	"layout-converter/internal/fsutil"
	"layout-converter/internal/layout"
	"layout-converter/internal/pack"
	"layout-converter/internal/schema"
)

// ErrInvalidInput is returned when an input pack path fails validation.
// No pack is touched in that case.
var ErrInvalidInput = errors.New("invalid input packs")

const scratchPattern = "layout-converter-*"

// Options configures a Converter. Zero values fall back to defaults.
type Options struct {
	Schema     *schema.Schema
	Separators []string
	Shape      pack.Shape
	LayoutsDir string
	// ScratchDir is the parent of the per-pack scratch roots; empty means the OS temp dir.
	ScratchDir string
	Exclude    []string
	// DryRun converts in scratch only and leaves every pack untouched.
	DryRun bool
	Logger *zap.Logger
}

// Converter runs layout conversions over content packs.
type Converter struct {
	opts Options
	log  *zap.Logger

	copyTree   func(src, dst string) error
	replaceDir func(dst, src string) error
}

// New returns a Converter with defaults applied.
func New(opts Options) *Converter {
	if opts.Schema == nil {
		opts.Schema = schema.Default()
	}

	if opts.Separators == nil {
		opts.Separators = common.DefaultSeparators
	}

	if opts.Shape.ContentDir == "" {
		opts.Shape.ContentDir = pack.DefaultContentDir
	}

	if opts.Shape.PacksDir == "" {
		opts.Shape.PacksDir = pack.DefaultPacksDir
	}

	if opts.LayoutsDir == "" {
		opts.LayoutsDir = pack.DefaultLayoutsDir
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Converter{
		opts:       opts,
		log:        log,
		copyTree:   fsutil.CopyTree,
		replaceDir: fsutil.ReplaceDir,
	}
}

// Run converts every pack in turn. All paths are validated before any pack is
// touched. A failing pack does not stop the run and never rolls back packs
// already replaced. Scratch roots are removed before Run returns.
func (c *Converter) Run(ctx context.Context, packs []string) (report *Report, err error) {
	runID := uuid.NewString()
	log := c.log.With(zap.String("run_id", runID))
	report = &Report{RunID: runID, DryRun: c.opts.DryRun}

	diags := pack.Validate(packs, c.opts.Shape)
	for _, w := range diags.Warnings {
		log.Warn(w.Message, zap.String("code", w.Code), zap.String("path", w.Path))
	}

	for _, i := range diags.Infos {
		log.Debug(i.Message, zap.String("pack", i.Pack), zap.String("path", i.Path))
	}

	if diags.HasErrors() {
		log.Error("input validation failed", zap.Error(diags.Error()))
		return report, fmt.Errorf("%w: %w", ErrInvalidInput, diags.Error())
	}

	var scratch []string

	defer func() {
		cleanupErr := c.cleanup(scratch, report, log)
		err = errors.Join(err, cleanupErr)
	}()

	var errs []error

	for _, p := range packs {
		res := PackResult{Pack: p, State: StatePending}
		plog := log.With(zap.String("pack", pack.Name(p)))

		root, convErr := c.convertPack(ctx, p, &res, plog)
		if root != "" {
			scratch = append(scratch, root)
		}

		if convErr != nil {
			plog.Error("pack conversion failed", zap.Stringer("state", res.State), zap.Error(convErr))
			res.State = StateFailed
			res.Error = convErr.Error()
			errs = append(errs, fmt.Errorf("pack %s: %w", p, convErr))
		}

		report.Packs = append(report.Packs, res)
	}

	return report, errors.Join(errs...)
}

// convertPack runs one pack through copy, discovery, conciliation and
// replacement. It returns the scratch root it created, if any.
func (c *Converter) convertPack(ctx context.Context, packPath string, res *PackResult, log *zap.Logger) (string, error) {
	err := ctx.Err()
	if err != nil {
		return "", err
	}

	root, err := os.MkdirTemp(c.opts.ScratchDir, scratchPattern)
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}

	original := filepath.Join(packPath, c.opts.LayoutsDir)
	work := filepath.Join(root, c.opts.LayoutsDir)

	err = c.copyTree(original, work)
	if err != nil {
		return root, fmt.Errorf("copying %s to scratch: %w", original, err)
	}

	res.State = StateCopied
	log.Debug("copied layouts to scratch", zap.String("scratch", work))

	idx, err := layout.Discover(work, c.opts.Schema, layout.DiscoverOptions{
		Exclude: c.opts.Exclude,
		Logger:  log,
	})
	if err != nil {
		return root, err
	}

	res.State = StateDiscovered
	res.Groups = idx.Len()
	res.Skipped = relativeAll(work, idx.Skipped)
	res.Warnings = append(res.Warnings, warnings(idx.Diags)...)
	log.Info("discovered layouts", zap.Int("groups", idx.Len()), zap.Int("skipped", len(idx.Skipped)))

	err = ctx.Err()
	if err != nil {
		return root, err
	}

	changes, err := Conciliate(idx, work, c.opts.Schema, ConciliateOptions{
		Separators: c.opts.Separators,
		Logger:     log,
	})
	if err != nil {
		return root, err
	}

	res.State = StateConciliated
	res.Created = relativeAll(work, changes.Created)
	res.Rewritten = relativeAll(work, changes.Rewritten)
	res.Warnings = append(res.Warnings, warnings(changes.Diags)...)

	if c.opts.DryRun {
		log.Info("dry run, pack left untouched", zap.Int("created", len(changes.Created)))
		return root, nil
	}

	err = ctx.Err()
	if err != nil {
		return root, err
	}

	err = c.replaceDir(original, work)
	if err != nil {
		return root, fmt.Errorf("replacing %s: %w", original, err)
	}

	res.State = StateReplaced
	log.Info("replaced layouts", zap.String("path", original), zap.Int("created", len(changes.Created)))

	return root, nil
}

// cleanup removes every scratch root and marks the surviving packs cleaned.
func (c *Converter) cleanup(roots []string, report *Report, log *zap.Logger) error {
	var errs []error

	for _, root := range roots {
		err := os.RemoveAll(root)
		if err != nil {
			log.Error("removing scratch dir", zap.String("path", root), zap.Error(err))
			errs = append(errs, fmt.Errorf("removing scratch dir %s: %w", root, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i := range report.Packs {
		if report.Packs[i].State != StateFailed {
			report.Packs[i].State = StateCleaned
		}
	}

	return nil
}

func warnings(d diagnostic.Diagnostics) []string {
	out := make([]string, 0, len(d.Warnings))
	for _, w := range d.Warnings {
		out = append(out, w.String())
	}

	return out
}

func relativeAll(base string, paths []string) []string {
	if common.IsEmpty(paths) {
		return nil
	}

	out := make([]string, 0, len(paths))

	for _, p := range paths {
		rel, err := filepath.Rel(base, p)
		if err != nil {
			rel = p
		}

		out = append(out, filepath.ToSlash(rel))
	}

	return out
}
