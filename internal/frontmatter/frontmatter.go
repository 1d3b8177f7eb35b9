// Package frontmatter locates, parses, and serializes the YAML metadata
// block at the head of a markdown note.
//
// A block is bounded by an opening marker line and the first subsequent line
// that is exactly the same marker:
//
//	---
//	item: true
//	path: shelf-a/box-2
//	tags:
//	  - inventory
//	---
//
// Parsing goes through [gopkg.in/yaml.v3] nodes rather than plain maps so
// key order survives a parse/merge/serialize round trip. Comments inside the
// block are accepted on input; serialization emits block style with literal
// unicode.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mapping is an order-preserving frontmatter mapping. Keys are unique;
// values may be scalars or nested YAML structures.
//
// The zero value is not usable; use [NewMapping] or [Parse].
type Mapping struct {
	node yaml.Node // Kind == yaml.MappingNode
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{node: yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Parse deserializes a located block region into a mapping.
//
// An empty or comment-only region parses to an empty mapping. A YAML syntax
// error returns a *ParseError; a successfully parsed non-mapping value
// (list, scalar, non-empty null) returns a *SchemaError. Pure function, no
// side effects.
func Parse(region string) (*Mapping, error) {
	var doc yaml.Node

	err := yaml.Unmarshal([]byte(region), &doc)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewMapping(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &SchemaError{Reason: "frontmatter must be a mapping"}
	}

	return &Mapping{node: *root}, nil
}

// Len returns the number of top-level keys.
func (m *Mapping) Len() int {
	return len(m.node.Content) / 2
}

// Keys returns the top-level keys in document order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, m.Len())
	for i := 0; i < len(m.node.Content); i += 2 {
		keys = append(keys, m.node.Content[i].Value)
	}

	return keys
}

// Get returns the decoded value for key.
// Returns (nil, false) if key is missing or its value cannot be decoded.
func (m *Mapping) Get(key string) (any, bool) {
	idx := m.index(key)
	if idx < 0 {
		return nil, false
	}

	var out any

	err := m.node.Content[idx+1].Decode(&out)
	if err != nil {
		return nil, false
	}

	return out, true
}

// GetString returns the string value for key.
// Returns ("", false) if key is missing or not a string scalar.
func (m *Mapping) GetString(key string) (string, bool) {
	idx := m.index(key)
	if idx < 0 {
		return "", false
	}

	var out string

	err := m.node.Content[idx+1].Decode(&out)
	if err != nil {
		return "", false
	}

	return out, true
}

// GetBool returns the bool value for key.
// Returns (false, false) if key is missing or not a boolean scalar.
func (m *Mapping) GetBool(key string) (bool, bool) {
	idx := m.index(key)
	if idx < 0 {
		return false, false
	}

	var out bool

	err := m.node.Content[idx+1].Decode(&out)
	if err != nil {
		return false, false
	}

	return out, true
}

// Set assigns value to key. An existing key keeps its position in the
// mapping; a new key is appended at the end.
func (m *Mapping) Set(key string, value any) error {
	val := &yaml.Node{}

	err := val.Encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if idx := m.index(key); idx >= 0 {
		m.node.Content[idx+1] = val

		return nil
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	m.node.Content = append(m.node.Content, keyNode, val)

	return nil
}

// Field is one key/value assignment of an update.
type Field struct {
	Key   string
	Value any
}

// Update is an ordered set of assignments to merge into a mapping. Order
// matters only for keys that do not exist yet; those are appended in
// update order.
type Update []Field

// Apply merges upd into the mapping via [Mapping.Set].
func (m *Mapping) Apply(upd Update) error {
	for _, f := range upd {
		err := m.Set(f.Key, f.Value)
		if err != nil {
			return err
		}
	}

	return nil
}

// Marshal serializes the mapping as block-style YAML with 2-space indent.
// Key order is the mapping's document order; unicode is written literally.
// An empty mapping marshals to an empty string so an empty block
// round-trips unchanged.
func (m *Mapping) Marshal() (string, error) {
	if m.Len() == 0 {
		return "", nil
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	err := enc.Encode(&m.node)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	return buf.String(), nil
}

func (m *Mapping) index(key string) int {
	for i := 0; i < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			return i
		}
	}

	return -1
}
