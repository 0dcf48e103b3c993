// Package props implements missing-key-safe navigation over the
// open-ended JSON property documents stored on activity records.
package props

import "strings"

// Lookup resolves a dot-separated path ("device.os.name") inside a
// nested document. It returns nil when any segment is absent or when an
// intermediate value is not a map, never an error.
func Lookup(doc map[string]interface{}, path string) interface{} {
	if doc == nil || path == "" {
		return nil
	}

	segments := strings.Split(path, ".")
	var current interface{} = doc
	for _, segment := range segments {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		value, exists := node[segment]
		if !exists {
			return nil
		}
		current = value
	}
	return current
}

// String resolves a path and coerces the result to a string. Missing or
// non-string values yield the empty string.
func String(doc map[string]interface{}, path string) string {
	if value, ok := Lookup(doc, path).(string); ok {
		return value
	}
	return ""
}

// Bool resolves a path and coerces the result to a bool, defaulting to
// false.
func Bool(doc map[string]interface{}, path string) bool {
	if value, ok := Lookup(doc, path).(bool); ok {
		return value
	}
	return false
}
