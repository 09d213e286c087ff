package source

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFilename reduces an untrusted filename to a safe basename.
//
// Any directory components (both separators), traversal sequences, control
// characters, and shell-hostile punctuation are stripped before the name is
// used in a generated path. The result is never empty; a name that
// sanitizes away entirely becomes "file".
func SanitizeFilename(name string) string {
	// Drop directory components from either path convention.
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r):
			// skip
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r == '\x00':
			// skip
		case unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name = b.String()

	// Collapse traversal remnants like "..png" -> ".png" is fine, but a name
	// of only dots must not survive.
	name = strings.Trim(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

// extensionOf returns the lowercase extension of name without the dot.
func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
