package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered string-keyed mapping used for schema-free
// descriptor content (ticket fields, communication styles, tool descriptors).
// Values are plain Go values: string, int, float64, bool, nil, []any or *Map.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return []string{}
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the raw value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present, even if its value is nil.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. New keys are appended; existing keys keep their position.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetDefault stores value only when key is absent or explicitly null.
// Returns true if the value was written.
func (m *Map) SetDefault(key string, value any) bool {
	if v, ok := m.Get(key); ok && v != nil {
		return false
	}
	m.Set(key, value)
	return true
}

// Clone returns a shallow copy; nested maps and sequences are shared.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// String returns the value under key rendered as text. Absent and null values yield "".
func (m *Map) String(key string) string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return ""
	}
	return Scalar(v)
}

// Strings returns the value under key as a list of strings.
// A scalar becomes a one-element list; absent or null yields an empty, non-nil slice.
func (m *Map) Strings(key string) []string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return []string{}
	}
	if seq, ok := v.([]any); ok {
		out := make([]string, 0, len(seq))
		for _, item := range seq {
			if item == nil {
				continue
			}
			out = append(out, Scalar(item))
		}
		return out
	}
	if ss, ok := v.([]string); ok {
		out := make([]string, len(ss))
		copy(out, ss)
		return out
	}
	return []string{Scalar(v)}
}

// Map returns the nested mapping under key, or an empty Map when absent or not a mapping.
func (m *Map) Map(key string) *Map {
	v, ok := m.Get(key)
	if !ok {
		return NewMap()
	}
	if nested, ok := v.(*Map); ok && nested != nil {
		return nested
	}
	return NewMap()
}

// Scalar formats a descriptor value as display text.
func Scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *Map, []any:
		data, err := encodeJSON(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// MarshalJSON encodes the map as a JSON object, keeping key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, k := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := encodeJSON(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := encodeJSON(m.values[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a YAML mapping node, keeping key order.
func (m *Map) MarshalYAML() (interface{}, error) {
	return toNode(m)
}

// encodeJSON marshals v without HTML escaping so descriptor text survives verbatim.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if val == nil {
			return node, nil
		}
		for _, k := range val.keys {
			child, err := toNode(val.values[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child,
			)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// fromNode converts a parsed YAML node into descriptor values.
func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			val, err := fromNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			val, err := fromNode(child)
			if err != nil {
				return nil, err
			}
			seq = append(seq, val)
		}
		return seq, nil
	case yaml.ScalarNode:
		// Timestamps are kept as written; decoding would yield time.Time.
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
		var val any
		if err := n.Decode(&val); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return val, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
