package base

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// StreamSchema describes one logical stream declared by the upstream producer
type StreamSchema struct {
	Stream        string
	Properties    map[string]PropertySchema
	KeyProperties []string
}

// PropertySchema describes one declared record property
//
// Types holds the JSON schema "type" values, e.g. ["null", "integer"]; Format is the optional
// JSON schema "format", e.g. "date-time"
type PropertySchema struct {
	Types  []string
	Format string
}

// SortedPropertyNames returns the property names in deterministic order, for stable column layout
func (schema StreamSchema) SortedPropertyNames() []string {
	names := maps.Keys(schema.Properties)
	slices.Sort(names)
	return names
}

// UnmarshalJSON accepts both a single type string and a list of type strings for the "type" key
func (prop *PropertySchema) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   json.RawMessage `json:"type"`
		Format string          `json:"format"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	prop.Format = raw.Format
	if len(raw.Type) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Type, &single); err == nil {
		prop.Types = []string{single}
		return nil
	}
	var multiple []string
	if err := json.Unmarshal(raw.Type, &multiple); err != nil {
		return fmt.Errorf("property 'type' is neither a string nor a list of strings: %s", string(raw.Type))
	}
	prop.Types = multiple
	return nil
}

// FirstConcreteType returns the first non-null type, or empty if none is declared
func (prop PropertySchema) FirstConcreteType() string {
	for _, typ := range prop.Types {
		if typ != "null" {
			return typ
		}
	}
	return ""
}

// Nullable reports whether "null" is among the declared types
func (prop PropertySchema) Nullable() bool {
	return slices.Contains(prop.Types, "null")
}
