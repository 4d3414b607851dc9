package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, []string{
		"close", "details", "detailsV2", "edit",
		"indicatorsDetails", "indicatorsQuickView", "quickView", "mobile",
	}, s.DynamicFields())
	assert.Equal(t, []string{"indicatorsDetails", "indicatorsQuickView"}, s.IndicatorFields())

	assert.True(t, s.IsDynamic("details"))
	assert.False(t, s.IsDynamic("id"))
	assert.False(t, s.IsDynamic("group"))
	assert.True(t, s.IsIndicator("indicatorsDetails"))
	assert.False(t, s.IsIndicator("details"))

	assert.Equal(t, CollectionSections, s.Collection("details"))
	assert.Equal(t, CollectionTabs, s.Collection("detailsV2"))
	assert.Equal(t, CollectionNone, s.Collection("id"))
}

func TestParseIndicatorList(t *testing.T) {
	yaml := `
type: map
indicatorFields:
  - mobile
mapping:
  id:
    type: str
  details:
    type: map
    mapping:
      sections:
        type: seq
  mobile:
    type: map
    mapping:
      fields:
        type: seq
`

	s, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, []string{"details", "mobile"}, s.DynamicFields())
	assert.Equal(t, []string{"mobile"}, s.IndicatorFields())
	assert.Equal(t, CollectionFields, s.Collection("mobile"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "mapping: [unclosed"},
		{name: "scalar root", yaml: "just a string"},
		{name: "no mapping", yaml: "type: map"},
		{name: "no dynamic fields", yaml: "mapping:\n  id:\n    type: str\n"},
		{
			name: "indicator list names static field",
			yaml: "indicatorFields: [id]\nmapping:\n  id:\n    type: str\n  details:\n    mapping:\n      sections: {}\n",
		},
		{
			name: "indicator list not a sequence",
			yaml: "indicatorFields: {a: b}\nmapping:\n  details:\n    mapping:\n      sections: {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layoutscontainer.yml")
	require.NoError(t, os.WriteFile(path, defaultSchema, 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().DynamicFields(), s.DynamicFields())

	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSplit(t *testing.T) {
	s := Default()
	record := map[string]any{
		"id":        "X",
		"group":     "incident",
		"details":   map[string]any{"sections": []any{}},
		"detailsV2": map[string]any{"tabs": []any{}},
	}

	dynamic, static := s.Split(record)
	assert.Len(t, dynamic, 2)
	assert.Contains(t, dynamic, "details")
	assert.Contains(t, dynamic, "detailsV2")
	assert.Equal(t, map[string]any{"id": "X", "group": "incident"}, static)

	assert.Equal(t, []string{"details", "detailsV2"}, s.PresentKinds(record))
}
