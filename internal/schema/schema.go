package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema is returned when the schema cannot be read or describes no dynamic field.
var ErrInvalidSchema = errors.New("invalid layouts container schema")

// Collection names a presentation collection carried by a dynamic field.
type Collection string

const (
	CollectionNone     Collection = ""
	CollectionSections Collection = "sections"
	CollectionTabs     Collection = "tabs"
	CollectionFields   Collection = "fields"
)

// Collections lists the presentation collections in merge order.
var Collections = []Collection{CollectionSections, CollectionTabs, CollectionFields}

const indicatorMarker = "indicator"

//go:embed layoutscontainer.yml
var defaultSchema []byte

// Schema is the lookup table built from a layouts container schema.
type Schema struct {
	dynamic     []string
	indicator   []string
	collections map[string]Collection
}

// Default returns the embedded layouts container schema.
func Default() *Schema {
	s, err := Parse(defaultSchema)
	if err != nil {
		panic(fmt.Sprintf("embedded schema: %v", err))
	}

	return s
}

// LoadFile loads and parses a schema file from the given path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read schema file %s: %w", ErrInvalidSchema, path, err)
	}

	return Parse(data)
}

// Parse parses YAML schema data.
func Parse(data []byte) (*Schema, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse schema YAML: %w", ErrInvalidSchema, err)
	}

	root := documentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: schema root must be a mapping", ErrInvalidSchema)
	}

	fields := lookup(root, "mapping")
	if fields == nil || fields.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: schema has no top-level mapping", ErrInvalidSchema)
	}

	s := &Schema{collections: map[string]Collection{}}

	for i := 0; i+1 < len(fields.Content); i += 2 {
		name := fields.Content[i].Value
		rule := fields.Content[i+1]

		nested := lookup(rule, "mapping")
		if nested == nil || nested.Kind != yaml.MappingNode {
			continue
		}

		s.dynamic = append(s.dynamic, name)
		s.collections[name] = firstCollection(nested)

		if strings.Contains(name, indicatorMarker) {
			s.indicator = append(s.indicator, name)
		}
	}

	if len(s.dynamic) == 0 {
		return nil, fmt.Errorf("%w: schema declares no dynamic fields", ErrInvalidSchema)
	}

	err = s.applyIndicatorList(lookup(root, "indicatorFields"))
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Schema) applyIndicatorList(node *yaml.Node) error {
	if node == nil {
		return nil
	}

	var names []string

	err := node.Decode(&names)
	if err != nil {
		return fmt.Errorf("%w: indicatorFields must be a list of strings: %w", ErrInvalidSchema, err)
	}

	for _, name := range names {
		if !s.IsDynamic(name) {
			return fmt.Errorf("%w: indicator field %q is not a dynamic field", ErrInvalidSchema, name)
		}

		if !s.IsIndicator(name) {
			s.indicator = append(s.indicator, name)
		}
	}

	return nil
}

// DynamicFields returns the dynamic field names in schema order.
func (s *Schema) DynamicFields() []string {
	return slices.Clone(s.dynamic)
}

// IndicatorFields returns the indicator-classified dynamic field names.
func (s *Schema) IndicatorFields() []string {
	return slices.Clone(s.indicator)
}

// IsDynamic reports whether key is a dynamic (per-kind) field.
func (s *Schema) IsDynamic(key string) bool {
	return slices.Contains(s.dynamic, key)
}

// IsIndicator reports whether kind denotes indicator presentation.
func (s *Schema) IsIndicator(kind string) bool {
	return slices.Contains(s.indicator, kind)
}

// Collection returns the collection the schema designates for a dynamic field.
func (s *Schema) Collection(kind string) Collection {
	return s.collections[kind]
}

// Split separates a container record into its dynamic and static fields.
func (s *Schema) Split(record map[string]any) (dynamic, static map[string]any) {
	dynamic = map[string]any{}
	static = map[string]any{}

	for key, value := range record {
		if s.IsDynamic(key) {
			dynamic[key] = value
		} else {
			static[key] = value
		}
	}

	return dynamic, static
}

// PresentKinds returns the dynamic fields present in record, in schema order.
func (s *Schema) PresentKinds(record map[string]any) []string {
	var kinds []string

	for _, name := range s.dynamic {
		if _, ok := record[name]; ok {
			kinds = append(kinds, name)
		}
	}

	return kinds
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}

		return doc.Content[0]
	}

	return doc
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

func firstCollection(nested *yaml.Node) Collection {
	for i := 0; i+1 < len(nested.Content); i += 2 {
		c := Collection(nested.Content[i].Value)
		if slices.Contains(Collections, c) {
			return c
		}
	}

	return CollectionNone
}
