package layout

import (
	"errors"
	"fmt"

	"layout-converter/internal/common"
	"layout-converter/internal/diagnostic"
)

// ErrContainerCount is returned when a group does not hold exactly one container file.
var ErrContainerCount = errors.New("layout group must have exactly one container file")

// FileRecord is one layout file on disk.
type FileRecord struct {
	Path    string
	Version Version
}

// IsLegacy reports whether the file is a legacy per-kind layout.
func (f FileRecord) IsLegacy() bool { return f.Version == VersionLegacy }

// IsContainer reports whether the file is a layouts container.
func (f FileRecord) IsContainer() bool { return f.Version == VersionContainer }

// Group is the set of files sharing one layout identity.
type Group struct {
	ID    string
	Files []FileRecord

	// ContainerExists and LegacyExists are only ever raised, never cleared.
	ContainerExists bool
	LegacyExists    bool
}

// Append adds a file to the group and raises the matching existence flag.
func (g *Group) Append(f FileRecord) {
	g.Files = append(g.Files, f)
	g.ContainerExists = g.ContainerExists || f.IsContainer()
	g.LegacyExists = g.LegacyExists || f.IsLegacy()
}

// Legacy returns the legacy files of the group in insertion order.
func (g *Group) Legacy() []FileRecord {
	return common.Filter(g.Files, FileRecord.IsLegacy)
}

// Container returns the single container file of the group.
func (g *Group) Container() (FileRecord, error) {
	containers := common.Filter(g.Files, FileRecord.IsContainer)
	if !common.IsSingle(containers) {
		return FileRecord{}, fmt.Errorf("%w: id %q has %d", ErrContainerCount, g.ID, len(containers))
	}

	c, _ := common.First(containers)

	return c, nil
}

// Index maps layout identities to groups, remembering first-seen order.
type Index struct {
	groups map[string]*Group
	order  []string

	// Skipped lists files that were not recognized as layouts.
	Skipped []string
	// Diags records why files were skipped. Paths are relative to the
	// discovered directory.
	Diags diagnostic.Diagnostics
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{groups: map[string]*Group{}}
}

// Add appends f to the group for id, creating the group on first use.
func (idx *Index) Add(id string, f FileRecord) *Group {
	g, ok := idx.groups[id]
	if !ok {
		g = &Group{ID: id}
		idx.groups[id] = g
		idx.order = append(idx.order, id)
	}

	g.Append(f)

	return g
}

// Get returns the group for id.
func (idx *Index) Get(id string) (*Group, bool) {
	g, ok := idx.groups[id]
	return g, ok
}

// IDs returns the identities in first-seen order.
func (idx *Index) IDs() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)

	return out
}

// Groups returns the groups in first-seen order.
func (idx *Index) Groups() []*Group {
	out := make([]*Group, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.groups[id])
	}

	return out
}

// Len returns the number of groups.
func (idx *Index) Len() int {
	return len(idx.order)
}
