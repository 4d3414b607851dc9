package convert

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"layout-converter/internal/layout"
)

// Versions stamped on synthesized and backfilled legacy layouts.
const (
	legacyFromVersion        = "4.1.0"
	legacyToVersion          = "5.0.0"
	legacyDefaultToVersion   = "5.9.9"
	legacyDefaultFromVersion = "4.1.0"
	unversioned              = -1
)

// ErrNameCollision is returned when a synthesized file would overwrite a file
// that does not belong to the layout being converted.
var ErrNameCollision = errors.New("synthesized file name already in use")

// backfillLegacy writes a legacy layout for every kind of the group's
// container that no legacy file covers yet.
func (c *conciliator) backfillLegacy(g *layout.Group) error {
	if !g.ContainerExists {
		return nil
	}

	container, err := loadContainer(g)
	if err != nil {
		return err
	}

	legacy, err := loadLegacy(g)
	if err != nil {
		return err
	}

	covered := make(map[string]struct{}, len(legacy))
	for _, l := range legacy {
		covered[l.record.Kind()] = struct{}{}
	}

	dynamic, static := c.schema.Split(container.record)

	for _, kind := range c.schema.PresentKinds(container.record) {
		log := c.log.With(zap.String("layout_id", g.ID), zap.String("kind", kind))

		if _, ok := covered[kind]; ok {
			// Existing legacy layouts are never overwritten.
			log.Debug("kind already has a legacy layout")
			continue
		}

		path, err := c.createLegacy(g.ID, kind, dynamic[kind], static)
		if err != nil {
			return err
		}

		g.Append(layout.FileRecord{Path: path, Version: layout.VersionLegacy})
		log.Info("created legacy layout", zap.String("path", path))
	}

	return nil
}

func (c *conciliator) createLegacy(id, kind string, value any, static map[string]any) (string, error) {
	typeID := layoutTypeID(value, static)

	inner := map[string]any{
		layout.KeyID:      id,
		layout.KeyVersion: unversioned,
		layout.KeyKind:    kind,
		layout.KeyTypeID:  typeID,
	}
	if m, ok := value.(map[string]any); ok && len(m) > 0 {
		maps.Copy(inner, m)
	}

	rec := layout.Record{
		layout.KeyKind:        kind,
		layout.KeyLayout:      inner,
		layout.KeyFromVersion: legacyFromVersion,
		layout.KeyToVersion:   legacyToVersion,
		layout.KeyTypeID:      typeID,
		layout.KeyVersion:     unversioned,
	}

	name := layout.LegacyFileName(kind, id, c.separators)
	path := filepath.Join(c.dir, name)

	if coll := c.schema.Collection(kind); coll != "" {
		if m, ok := value.(map[string]any); !ok || !truthy(m[string(coll)]) {
			c.log.Warn("container kind has no data in its schema collection",
				zap.String("layout_id", id), zap.String("kind", kind), zap.String("collection", string(coll)))
			c.changes.Diags.AddWarning("empty_collection",
				fmt.Sprintf("container %q has no %s under %s", id, coll, kind), "", name)
		}
	}

	err := c.create(path, rec)
	if err != nil {
		return "", err
	}

	return path, nil
}

// layoutTypeID derives the typeId of a synthesized legacy layout. Containers
// carry no incident or indicator type, so the value is always empty.
func layoutTypeID(_ any, _ map[string]any) string {
	return ""
}

// create writes a new compact record, refusing to replace an existing file.
func (c *conciliator) create(path string, rec layout.Record) error {
	_, err := os.Lstat(path)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrNameCollision, path)
	}

	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	err = layout.WriteCompact(path, rec)
	if err != nil {
		return err
	}

	c.changes.created(path)

	return nil
}

// backfillLegacyVersions stamps missing version bounds on legacy layouts and
// rewrites them with depth-derived indentation.
func (c *conciliator) backfillLegacyVersions(legacy []loadedRecord) error {
	for _, l := range legacy {
		if !l.record.Has(layout.KeyToVersion) {
			l.record[layout.KeyToVersion] = legacyDefaultToVersion
		}

		if !l.record.Has(layout.KeyFromVersion) {
			l.record[layout.KeyFromVersion] = legacyDefaultFromVersion
		}

		err := layout.WriteIndented(l.file.Path, l.record)
		if err != nil {
			return err
		}

		c.changes.rewritten(l.file.Path)
	}

	return nil
}

// truthy reports whether a decoded JSON value carries data.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case string:
		return t != ""
	case bool:
		return t
	default:
		return true
	}
}
