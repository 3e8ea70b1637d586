package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CanonicalName normalizes a user-supplied technology name into the form used
// as the card key: surrounding whitespace removed, first letter upper-cased,
// the remainder lower-cased. "PYTHON", "python" and "Python" all map to
// "Python".
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}

// FilenameBase derives the asset filename stem for a card name. It lowercases
// the name and drops every character outside [a-z0-9], so "C++" becomes "c"
// and "Node.js" becomes "nodejs".
func FilenameBase(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsCanonicalName reports whether name is already in canonical form.
func IsCanonicalName(name string) bool {
	return name != "" && CanonicalName(name) == name
}
