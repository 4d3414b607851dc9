package convert

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"layout-converter/internal/layout"
	"layout-converter/internal/schema"
)

// mobileIndicatorSchema classifies mobile as an indicator kind.
const mobileIndicatorSchema = `
type: map
indicatorFields:
  - mobile
mapping:
  id:
    type: str
  name:
    type: str
  group:
    type: str
  details:
    type: map
    mapping:
      sections:
        type: seq
  detailsV2:
    type: map
    mapping:
      tabs:
        type: seq
  indicatorsDetails:
    type: map
    mapping:
      tabs:
        type: seq
  mobile:
    type: map
    mapping:
      fields:
        type: seq
`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s, err := schema.Parse([]byte(mobileIndicatorSchema))
	require.NoError(t, err)

	return s
}

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func decode(t *testing.T, content string) layout.Record {
	t.Helper()

	rec, err := layout.DecodeRecord([]byte(content))
	require.NoError(t, err)

	return rec
}

func requireRecord(t *testing.T, path, expected string) {
	t.Helper()

	got, err := layout.ReadRecord(path)
	require.NoError(t, err)

	if diff := cmp.Diff(decode(t, expected), got); diff != "" {
		t.Fatalf("record %s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// snapshot returns the content of every file under dir keyed by relative path.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()

	files := map[string]string{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		files[filepath.ToSlash(rel)] = string(data)

		return nil
	})
	require.NoError(t, err)

	return files
}

func discover(t *testing.T, dir string, sch *schema.Schema) *layout.Index {
	t.Helper()

	idx, err := layout.Discover(dir, sch, layout.DiscoverOptions{})
	require.NoError(t, err)

	return idx
}

func conciliate(t *testing.T, dir string, sch *schema.Schema) (*layout.Index, *Changes) {
	t.Helper()

	idx := discover(t, dir, sch)

	changes, err := Conciliate(idx, dir, sch, ConciliateOptions{})
	require.NoError(t, err, "groups:\n%s", spew.Sdump(idx.Groups()))

	return idx, changes
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
