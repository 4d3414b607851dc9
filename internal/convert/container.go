package convert

import (
	"path/filepath"

	"go.uber.org/zap"

	"layout-converter/internal/layout"
	"layout-converter/internal/schema"
)

// Container group values.
const (
	groupIncident  = "incident"
	groupIndicator = "indicator"
)

const containerFromVersion = "6.0.0"

// backfillContainer ensures the group has a container, merges every legacy
// layout of the group into it, and stamps missing legacy version bounds.
func (c *conciliator) backfillContainer(g *layout.Group) error {
	legacy, err := loadLegacy(g)
	if err != nil {
		return err
	}

	if !g.ContainerExists {
		path, err := c.createContainer(g.ID)
		if err != nil {
			return err
		}

		g.Append(layout.FileRecord{Path: path, Version: layout.VersionContainer})
		c.log.Info("created container", zap.String("layout_id", g.ID), zap.String("path", path))
	}

	err = c.mergeContainer(g, legacy)
	if err != nil {
		return err
	}

	return c.backfillLegacyVersions(legacy)
}

func (c *conciliator) createContainer(id string) (string, error) {
	rec := layout.Record{
		layout.KeyFromVersion: containerFromVersion,
		layout.KeyGroup:       "",
		layout.KeyName:        id,
		layout.KeyID:          id,
		layout.KeyVersion:     unversioned,
	}

	path := filepath.Join(c.dir, layout.ContainerFileName(id, c.separators))

	err := c.create(path, rec)
	if err != nil {
		return "", err
	}

	return path, nil
}

// mergeContainer copies the presentation data of every legacy layout into the
// container under the layout's kind. Legacy files are applied in group order,
// so a later file for the same kind wins.
func (c *conciliator) mergeContainer(g *layout.Group, legacy []loadedRecord) error {
	container, err := loadContainer(g)
	if err != nil {
		return err
	}

	indicator := false

	for _, l := range legacy {
		kind := l.record.Kind()
		if kind == "" {
			continue
		}

		indicator = indicator || c.schema.IsIndicator(kind)

		inner, _ := l.record.Object(layout.KeyLayout)
		for _, coll := range schema.Collections {
			if v := inner[string(coll)]; truthy(v) {
				container.record[kind] = map[string]any{string(coll): v}
			}
		}
	}

	if indicator {
		container.record[layout.KeyGroup] = groupIndicator
	} else {
		container.record[layout.KeyGroup] = groupIncident
	}

	err = layout.WriteIndented(container.file.Path, container.record)
	if err != nil {
		return err
	}

	c.changes.rewritten(container.file.Path)
	c.log.Debug("merged legacy layouts into container",
		zap.String("layout_id", g.ID),
		zap.Int("legacy", len(legacy)),
		zap.String("group", container.record.String(layout.KeyGroup)))

	return nil
}
