package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layout-converter/internal/layout"
	"layout-converter/internal/schema"
)

func TestConciliateLegacyOnly(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "layout-details-X.json")
	writeJSON(t, legacyPath, `{"kind": "details", "layout": {"id": "X", "sections": [{"a": 1}]}}`)

	idx, changes := conciliate(t, dir, testSchema(t))

	containerPath := filepath.Join(dir, "layoutscontainer-X.json")
	assert.Equal(t, []string{containerPath}, changes.Created)
	assert.ElementsMatch(t, []string{containerPath, legacyPath}, append(changes.Created, changes.Rewritten...))

	requireRecord(t, containerPath, `{
		"fromVersion": "6.0.0",
		"group": "incident",
		"name": "X",
		"id": "X",
		"version": -1,
		"details": {"sections": [{"a": 1}]}
	}`)

	requireRecord(t, legacyPath, `{
		"kind": "details",
		"layout": {"id": "X", "sections": [{"a": 1}]},
		"toVersion": "5.9.9",
		"fromVersion": "4.1.0"
	}`)

	g, ok := idx.Get("X")
	require.True(t, ok)
	assert.True(t, g.ContainerExists)
	assert.True(t, g.LegacyExists)
}

func TestConciliateContainerOnly(t *testing.T) {
	dir := t.TempDir()
	containerPath := filepath.Join(dir, "layoutscontainer-Y.json")
	writeJSON(t, containerPath, `{"id": "Y", "name": "Y", "mobile": {"fields": [{"f": 1}]}}`)

	_, changes := conciliate(t, dir, testSchema(t))

	legacyPath := filepath.Join(dir, "layout-mobile-Y.json")
	assert.Equal(t, []string{legacyPath}, changes.Created)

	requireRecord(t, legacyPath, `{
		"kind": "mobile",
		"layout": {"id": "Y", "version": -1, "kind": "mobile", "typeId": "", "fields": [{"f": 1}]},
		"fromVersion": "4.1.0",
		"toVersion": "5.0.0",
		"typeId": "",
		"version": -1
	}`)

	requireRecord(t, containerPath, `{
		"id": "Y",
		"name": "Y",
		"group": "indicator",
		"mobile": {"fields": [{"f": 1}]}
	}`)
}

func TestConciliateIndicatorIsSticky(t *testing.T) {
	dir := t.TempDir()
	// indicatorsDetails sorts before the incident kind, so it is merged first.
	writeJSON(t, filepath.Join(dir, "a-indicator.json"),
		`{"kind": "indicatorsDetails", "layout": {"id": "Z", "tabs": [{"t": 1}]}}`)
	writeJSON(t, filepath.Join(dir, "b-details.json"),
		`{"kind": "details", "layout": {"id": "Z", "sections": [{"s": 1}]}}`)

	conciliate(t, dir, testSchema(t))

	requireRecord(t, filepath.Join(dir, "layoutscontainer-Z.json"), `{
		"fromVersion": "6.0.0",
		"group": "indicator",
		"name": "Z",
		"id": "Z",
		"version": -1,
		"indicatorsDetails": {"tabs": [{"t": 1}]},
		"details": {"sections": [{"s": 1}]}
	}`)
}

func TestConciliateExistingGroupIsReclassified(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "c.json"), `{"id": "W", "name": "W", "group": "incident"}`)
	writeJSON(t, filepath.Join(dir, "l.json"),
		`{"kind": "indicatorsDetails", "layout": {"id": "W", "tabs": [{"t": 1}]}}`)

	conciliate(t, dir, testSchema(t))

	got, err := layout.ReadRecord(filepath.Join(dir, "c.json"))
	require.NoError(t, err)
	assert.Equal(t, "indicator", got.String(layout.KeyGroup))
}

func TestConciliateCompleteness(t *testing.T) {
	dir := t.TempDir()
	sch := testSchema(t)

	writeJSON(t, filepath.Join(dir, "container-A.json"), `{
		"id": "A", "name": "A", "group": "incident",
		"details": {"sections": [{"s": 1}]},
		"detailsV2": {"tabs": [{"t": 1}]}
	}`)
	writeJSON(t, filepath.Join(dir, "layout-details-A.json"),
		`{"kind": "details", "layout": {"id": "A", "sections": [{"s": 1}]}, "fromVersion": "4.1.0", "toVersion": "5.9.9"}`)
	writeJSON(t, filepath.Join(dir, "layout-edit-B.json"),
		`{"kind": "detailsV2", "layout": {"id": "B", "tabs": [{"t": 2}]}}`)

	conciliate(t, dir, sch)

	idx := discover(t, dir, sch)
	require.Equal(t, []string{"A", "B"}, idx.IDs())

	for _, g := range idx.Groups() {
		assert.True(t, g.ContainerExists, g.ID)

		container, err := loadContainer(g)
		require.NoError(t, err)

		legacy, err := loadLegacy(g)
		require.NoError(t, err)

		kinds := map[string]int{}
		for _, l := range legacy {
			kinds[l.record.Kind()]++
		}

		for _, kind := range sch.PresentKinds(container.record) {
			assert.Equal(t, 1, kinds[kind], "group %s kind %s", g.ID, kind)
		}
	}
}

func TestConciliateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	sch := testSchema(t)

	writeJSON(t, filepath.Join(dir, "layout-details-X.json"),
		`{"kind": "details", "layout": {"id": "X", "sections": [{"a": 1}]}}`)
	writeJSON(t, filepath.Join(dir, "layoutscontainer-Y.json"),
		`{"id": "Y", "name": "Y", "mobile": {"fields": [{"f": 1}], "extra": true}}`)
	writeJSON(t, filepath.Join(dir, "Layout Z.json"),
		`{"kind": "detailsV2", "typeId": "Phishing", "layout": {"id": "My Layout-Z", "tabs": [{"t": "<b>"}]}}`)

	conciliate(t, dir, sch)
	first := snapshot(t, dir)

	_, changes := conciliate(t, dir, sch)
	second := snapshot(t, dir)

	assert.Empty(t, changes.Created)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "layoutscontainer-My_Layout_Z.json")
}

func TestConciliateKeepsExistingLegacyKind(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "layout-details-X.json")

	writeJSON(t, filepath.Join(dir, "layoutscontainer-X.json"),
		`{"id": "X", "name": "X", "group": "incident", "details": {"sections": [{"from": "container"}]}}`)
	writeJSON(t, legacyPath,
		`{"kind": "details", "layout": {"id": "X", "sections": [{"from": "legacy"}]}, "fromVersion": "4.1.0", "toVersion": "5.9.9"}`)

	_, changes := conciliate(t, dir, testSchema(t))
	assert.Empty(t, changes.Created)

	requireRecord(t, legacyPath,
		`{"kind": "details", "layout": {"id": "X", "sections": [{"from": "legacy"}]}, "fromVersion": "4.1.0", "toVersion": "5.9.9"}`)
	requireRecord(t, filepath.Join(dir, "layoutscontainer-X.json"),
		`{"id": "X", "name": "X", "group": "incident", "details": {"sections": [{"from": "legacy"}]}}`)
}

func TestConciliateLaterLegacyWins(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "1.json"), `{"kind": "details", "layout": {"id": "X", "sections": [{"n": 1}]}}`)
	writeJSON(t, filepath.Join(dir, "2.json"), `{"kind": "details", "layout": {"id": "X", "tabs": [{"n": 2}]}}`)
	writeJSON(t, filepath.Join(dir, "3.json"), `{"kind": "", "typeId": "x", "layout": {"id": "X", "tabs": [{"n": 3}]}}`)

	conciliate(t, dir, testSchema(t))

	requireRecord(t, filepath.Join(dir, "layoutscontainer-X.json"), `{
		"fromVersion": "6.0.0", "group": "incident", "name": "X", "id": "X", "version": -1,
		"details": {"tabs": [{"n": 2}]}
	}`)
}

func TestConciliateTwoContainersFails(t *testing.T) {
	sch := testSchema(t)

	newGroup := func(t *testing.T) (*conciliator, *layout.Group) {
		dir := t.TempDir()
		c1 := filepath.Join(dir, "c1.json")
		c2 := filepath.Join(dir, "c2.json")
		writeJSON(t, c1, `{"id": "X", "group": "incident", "details": {"sections": [1]}}`)
		writeJSON(t, c2, `{"id": "X", "group": "incident"}`)

		g := &layout.Group{ID: "X"}
		g.Append(layout.FileRecord{Path: c1, Version: layout.VersionContainer})
		g.Append(layout.FileRecord{Path: c2, Version: layout.VersionContainer})

		return &conciliator{dir: dir, schema: sch, separators: []string{" "}, log: nopLogger(), changes: &Changes{}}, g
	}

	t.Run("container backfill", func(t *testing.T) {
		c, g := newGroup(t)
		err := c.backfillContainer(g)
		require.ErrorIs(t, err, layout.ErrContainerCount)
	})

	t.Run("legacy backfill", func(t *testing.T) {
		c, g := newGroup(t)
		err := c.backfillLegacy(g)
		require.ErrorIs(t, err, layout.ErrContainerCount)
		assert.Empty(t, c.changes.Created)
	})

	t.Run("conciliate", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, filepath.Join(dir, "c1.json"), `{"id": "X", "group": "incident"}`)
		writeJSON(t, filepath.Join(dir, "c2.json"), `{"id": "X", "group": "indicator"}`)

		_, err := Conciliate(discover(t, dir, sch), dir, sch, ConciliateOptions{})
		require.ErrorIs(t, err, layout.ErrContainerCount)
	})
}

func TestConciliateNameCollision(t *testing.T) {
	dir := t.TempDir()
	sch := schema.Default()

	// "a b" and "a_b" sanitize to the same container file name.
	writeJSON(t, filepath.Join(dir, "1.json"), `{"kind": "details", "layout": {"id": "a b", "sections": [1]}}`)
	writeJSON(t, filepath.Join(dir, "2.json"), `{"kind": "details", "layout": {"id": "a_b", "sections": [2]}}`)

	_, err := Conciliate(discover(t, dir, sch), dir, sch, ConciliateOptions{})
	require.ErrorIs(t, err, ErrNameCollision)
}

func TestConciliateCustomSeparators(t *testing.T) {
	dir := t.TempDir()
	sch := testSchema(t)
	writeJSON(t, filepath.Join(dir, "l.json"), `{"kind": "details", "layout": {"id": "a.b c", "sections": [1]}}`)

	changes, err := Conciliate(discover(t, dir, sch), dir, sch, ConciliateOptions{Separators: []string{"."}})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "layoutscontainer-a_b c.json")}, changes.Created)
}

func TestConciliateLeavesNonLayoutsAlone(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.json")
	writeJSON(t, other, `{"brand": "x"}`)
	writeJSON(t, filepath.Join(dir, "l.json"), `{"kind": "details", "layout": {"id": "X", "sections": [1]}}`)

	conciliate(t, dir, testSchema(t))

	data, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, `{"brand": "x"}`, string(data))
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy([]any{}))
	assert.False(t, truthy(map[string]any{}))
	assert.False(t, truthy(""))
	assert.False(t, truthy(false))
	assert.True(t, truthy([]any{1}))
	assert.True(t, truthy("x"))
	assert.True(t, truthy(3))
}
