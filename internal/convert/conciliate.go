package convert

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"layout-converter/internal/common"
	"layout-converter/internal/diagnostic"
	"layout-converter/internal/layout"
	"layout-converter/internal/schema"
)

// ConciliateOptions tunes Conciliate.
type ConciliateOptions struct {
	// Separators are replaced by "_" when a layout id is used in a file name.
	Separators []string
	Logger     *zap.Logger
}

// Changes lists the files a conciliation wrote and what it noticed on the way.
type Changes struct {
	Created   []string
	Rewritten []string
	Diags     diagnostic.Diagnostics
}

func (c *Changes) created(path string) {
	c.Created = append(c.Created, path)
}

func (c *Changes) rewritten(path string) {
	if slices.Contains(c.Created, path) || slices.Contains(c.Rewritten, path) {
		return
	}

	c.Rewritten = append(c.Rewritten, path)
}

type conciliator struct {
	dir        string
	schema     *schema.Schema
	separators []string
	log        *zap.Logger
	changes    *Changes
}

// Conciliate makes every group of idx consistent. New files are written to
// dir and appended to their group; idx is mutated in place and must not be
// used concurrently.
func Conciliate(idx *layout.Index, dir string, sch *schema.Schema, opts ConciliateOptions) (*Changes, error) {
	c := &conciliator{
		dir:        dir,
		schema:     sch,
		separators: opts.Separators,
		log:        opts.Logger,
		changes:    &Changes{},
	}

	if c.separators == nil {
		c.separators = common.DefaultSeparators
	}

	if c.log == nil {
		c.log = zap.NewNop()
	}

	groups := idx.Groups()

	for _, g := range groups {
		err := c.backfillLegacy(g)
		if err != nil {
			return c.changes, fmt.Errorf("backfilling legacy layouts of %q: %w", g.ID, err)
		}
	}

	for _, g := range groups {
		err := c.backfillContainer(g)
		if err != nil {
			return c.changes, fmt.Errorf("backfilling container of %q: %w", g.ID, err)
		}
	}

	return c.changes, nil
}

// loadedRecord pairs a file with its decoded content.
type loadedRecord struct {
	file   layout.FileRecord
	record layout.Record
}

func loadLegacy(g *layout.Group) ([]loadedRecord, error) {
	files := g.Legacy()
	out := make([]loadedRecord, 0, len(files))

	for _, f := range files {
		rec, err := layout.ReadRecord(f.Path)
		if err != nil {
			return nil, err
		}

		out = append(out, loadedRecord{file: f, record: rec})
	}

	return out, nil
}

func loadContainer(g *layout.Group) (loadedRecord, error) {
	f, err := g.Container()
	if err != nil {
		return loadedRecord{}, err
	}

	rec, err := layout.ReadRecord(f.Path)
	if err != nil {
		return loadedRecord{}, err
	}

	return loadedRecord{file: f, record: rec}, nil
}
