package layout

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"layout-converter/internal/schema"
)

// DiscoverOptions tunes Discover.
type DiscoverOptions struct {
	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the discovered directory.
	Exclude []string
	Logger  *zap.Logger
}

// Discover walks dir recursively and groups every layout file by identity.
func Discover(dir string, sch *schema.Schema, opts DiscoverOptions) (*Index, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	idx := NewIndex()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		if rel != "." && excluded(filepath.ToSlash(rel), opts.Exclude) {
			log.Debug("excluded by pattern", zap.String("path", path))

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath := filepath.ToSlash(rel)

		rec, err := ReadRecord(path)
		if err != nil {
			log.Debug("skipping unreadable file", zap.String("path", path), zap.Error(err))
			idx.Skipped = append(idx.Skipped, path)
			idx.Diags.AddInfo("not_json", "file is not a JSON object", "", relPath)

			return nil
		}

		version := classifyFile(d.Name(), rec, sch)
		if version == VersionUnknown {
			log.Debug("skipping non-layout file", zap.String("path", path))
			idx.Skipped = append(idx.Skipped, path)
			idx.Diags.AddInfo("not_a_layout", "JSON object is not a layout", "", relPath)

			return nil
		}

		id := Identity(rec, version)
		if id == "" {
			log.Warn("skipping layout without identity",
				zap.String("path", path), zap.Stringer("version", version))
			idx.Skipped = append(idx.Skipped, path)
			idx.Diags.AddWarning("missing_identity",
				fmt.Sprintf("%s layout has no id and is left unconverted", version), "", relPath)

			return nil
		}

		idx.Add(id, FileRecord{Path: path, Version: version})
		log.Debug("discovered layout",
			zap.String("path", path), zap.String("layout_id", id), zap.Stringer("version", version))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering layouts in %s: %w", dir, err)
	}

	return idx, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}

	return false
}

// Classify determines the schema generation of a decoded record.
//
// A legacy layout nests its presentation under "layout" and names a kind or
// type. A container has no "layout" block, a string id, and either a group
// or at least one dynamic field.
func Classify(rec Record, sch *schema.Schema) Version {
	if rec.Has(KeyLayout) {
		if _, ok := rec.Object(KeyLayout); ok && (rec.Has(KeyKind) || rec.Has(KeyTypeID)) {
			return VersionLegacy
		}

		return VersionUnknown
	}

	if _, ok := rec[KeyID].(string); !ok {
		return VersionUnknown
	}

	if rec.Has(KeyGroup) || len(sch.PresentKinds(rec)) > 0 {
		return VersionContainer
	}

	return VersionUnknown
}

// classifyFile is Classify, except that a file named like a container with a
// string id and no "layout" block is a container even without group or
// dynamic fields. Skipping it would make the synthesized container collide
// with it.
func classifyFile(name string, rec Record, sch *schema.Schema) Version {
	version := Classify(rec, sch)
	if version != VersionUnknown || rec.Has(KeyLayout) {
		return version
	}

	if _, ok := rec[KeyID].(string); ok && strings.HasPrefix(name, ContainerPrefix+"-") {
		return VersionContainer
	}

	return VersionUnknown
}

// Identity returns the layout identity of a classified record.
func Identity(rec Record, version Version) string {
	switch version {
	case VersionLegacy:
		inner, _ := rec.Object(KeyLayout)
		return inner.String(KeyID)
	case VersionContainer:
		return rec.String(KeyID)
	default:
		return ""
	}
}
