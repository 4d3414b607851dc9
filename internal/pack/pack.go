// Package pack validates content pack paths.
//
// A pack lives at <root>/<ContentDir>/<PacksDir>/<PackName>, for example
// ~/dev/content/Packs/Phishing, and keeps its layouts in <LayoutsDir>.
package pack

import (
	"fmt"
	"os"
	"path/filepath"

	"layout-converter/internal/diagnostic"
)

// Default directory names of the content repository.
const (
	DefaultContentDir = "content"
	DefaultPacksDir   = "Packs"
	DefaultLayoutsDir = "Layouts"
)

// Shape names the directories a pack path must sit under.
type Shape struct {
	ContentDir string
	PacksDir   string
}

// DefaultShape returns the content/Packs shape.
func DefaultShape() Shape {
	return Shape{ContentDir: DefaultContentDir, PacksDir: DefaultPacksDir}
}

// Validate checks every path and collects one error per invalid pack.
// Accepted packs are recorded as infos; a pack given twice is a warning.
func Validate(paths []string, shape Shape) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if len(paths) == 0 {
		res.AddError("no_packs", "no input packs given", "", "")
		return res
	}

	seen := make(map[string]struct{}, len(paths))

	for _, p := range paths {
		res.Merge(shape.diagnose(p, seen))
	}

	return res
}

func (s Shape) diagnose(path string, seen map[string]struct{}) diagnostic.Diagnostics {
	var d diagnostic.Diagnostics

	err := s.check(path)
	if err != nil {
		d.AddError("invalid_pack_path", err.Error(), "", path)
		return d
	}

	abs, _ := filepath.Abs(path)
	if _, ok := seen[abs]; ok {
		d.AddWarning("duplicate_pack", "pack is given more than once", Name(path), path)
	}

	seen[abs] = struct{}{}
	d.AddInfo("pack_accepted", "pack path is valid", Name(path), path)

	return d
}

func (s Shape) check(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("pack path is not accessible: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("pack path is not a directory")
	}

	parent := filepath.Dir(abs)
	if filepath.Base(parent) != s.PacksDir || filepath.Base(filepath.Dir(parent)) != s.ContentDir {
		return fmt.Errorf("pack path must have the format ~/.../%s/%s/$PACK_NAME", s.ContentDir, s.PacksDir)
	}

	return nil
}

// Name returns the pack name of a pack path.
func Name(path string) string {
	return filepath.Base(filepath.Clean(path))
}
