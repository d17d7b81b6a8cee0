package transcript

import (
	"strings"
	"unicode"
)

// DefaultTitle is used when the source metadata carries no title.
const DefaultTitle = "Untitled"

// SanitizeTitle reduces a title to a filesystem-safe form: letters,
// digits, spaces, hyphens and underscores survive, everything else is
// stripped. Sanitizing an already-sanitized title is a no-op.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	return b.String()
}
