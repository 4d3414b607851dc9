package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const filePerm = 0o644

// Well-known record keys.
const (
	KeyID          = "id"
	KeyName        = "name"
	KeyGroup       = "group"
	KeyKind        = "kind"
	KeyLayout      = "layout"
	KeyTypeID      = "typeId"
	KeyVersion     = "version"
	KeyFromVersion = "fromVersion"
	KeyToVersion   = "toVersion"
)

// ErrNotObject is returned when a file holds valid JSON that is not an object.
var ErrNotObject = errors.New("not a JSON object")

// Record is a decoded layout file. Numbers are kept as json.Number so
// untouched values are written back as they were read.
type Record map[string]any

// String returns the string value stored under key, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Object returns the object stored under key.
func (r Record) Object(key string) (Record, bool) {
	m, ok := r[key].(map[string]any)
	if !ok {
		return nil, false
	}

	return Record(m), true
}

// Has reports whether key is present, whatever its value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Kind returns the "kind" of a legacy record.
func (r Record) Kind() string {
	return r.String(KeyKind)
}

// ReadRecord reads and decodes the JSON object stored at path.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return rec, nil
}

// DecodeRecord decodes a JSON object.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any

	err := dec.Decode(&v)
	if err != nil {
		return nil, err
	}

	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	return Record(m), nil
}

// Encode serializes rec. A negative indent produces compact output; otherwise
// every nesting level is indented with that many spaces.
func Encode(rec Record, indent int) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent >= 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	err := enc.Encode(map[string]any(rec))
	if err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteCompact writes rec to path without indentation.
func WriteCompact(path string, rec Record) error {
	return writeRecord(path, rec, -1)
}

// WriteIndented writes rec to path indented by its own nesting depth.
func WriteIndented(path string, rec Record) error {
	return writeRecord(path, rec, Depth(map[string]any(rec)))
}

func writeRecord(path string, rec Record, indent int) error {
	data, err := Encode(rec, indent)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	err = os.WriteFile(path, data, filePerm)
	if err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	return nil
}

// Depth returns the nesting depth of a decoded JSON value: 0 for scalars and
// empty containers, otherwise one more than the deepest child.
func Depth(v any) int {
	maxChild := -1

	switch t := v.(type) {
	case map[string]any:
		for _, child := range t {
			maxChild = max(maxChild, Depth(child))
		}
	case Record:
		return Depth(map[string]any(t))
	case []any:
		for _, child := range t {
			maxChild = max(maxChild, Depth(child))
		}
	}

	if maxChild < 0 {
		return 0
	}

	return maxChild + 1
}
