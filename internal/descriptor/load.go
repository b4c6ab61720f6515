package descriptor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML descriptor file and returns its top-level mapping.
// An empty file (or one holding only comments or null) loads as an empty Map.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes descriptor content. path is only used for error reporting.
func Parse(path string, data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedDescriptorError{Path: path, Reason: "invalid YAML", Err: err}
	}

	val, err := fromNode(&doc)
	if err != nil {
		return nil, &MalformedDescriptorError{Path: path, Reason: "unreadable content", Err: err}
	}

	switch v := val.(type) {
	case nil:
		return NewMap(), nil
	case *Map:
		return v, nil
	default:
		return nil, &MalformedDescriptorError{
			Path:   path,
			Reason: fmt.Sprintf("expected a mapping at the top level, got %s", kindOf(v)),
		}
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "a sequence"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, uint64, float64:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
