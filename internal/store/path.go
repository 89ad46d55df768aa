package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parts := strings.Split(path, ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}

	return parts, nil
}

// sortedPaths returns the field paths in a stable order.
func (f Fields) sortedPaths() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// escapeKey quotes the gjson path syntax characters of one key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', '!', ':', '=', '<', '>', '%', '"', ',', '[', ']', '{', '}', '(', ')':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

func joinPath(parts []string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = escapeKey(part)
	}

	return strings.Join(escaped, ".")
}

// ensureObjects walks parts[:len(parts)-1] and creates every missing or
// null intermediate as an empty object. Walking through anything else is
// ErrInvalidPath.
func ensureObjects(doc []byte, parts []string) ([]byte, error) {
	for i := 1; i < len(parts); i++ {
		prefix := joinPath(parts[:i])

		node := gjson.GetBytes(doc, prefix)
		switch {
		case !node.Exists() || node.Type == gjson.Null:
			next, err := sjson.SetRawBytes(doc, prefix, []byte("{}"))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, strings.Join(parts[:i], "."), err)
			}
			doc = next
		case !node.IsObject():
			return nil, fmt.Errorf("%w: %s is not an object", ErrInvalidPath, strings.Join(parts[:i], "."))
		}
	}

	return doc, nil
}

// applyFields merges fields into the raw document and returns the new
// encoding. Untouched values keep their original text. Nothing is applied
// if any path is invalid.
func applyFields(raw []byte, fields Fields) ([]byte, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("%w: document root is not an object", ErrInvalidPath)
	}

	// sjson may reuse the input buffer
	doc := append([]byte(nil), raw...)

	for _, path := range fields.sortedPaths() {
		parts, err := splitPath(path)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(fields[path])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}

		doc, err = ensureObjects(doc, parts)
		if err != nil {
			return nil, err
		}

		doc, err = sjson.SetRawBytes(doc, joinPath(parts), value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
		}
	}

	return doc, nil
}
