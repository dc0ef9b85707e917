package courier

import "strings"

// Reserved MarkdownV2 characters that need a backslash in any interpolated
// text.
const escapeChars = "_*\\~`>#+-=|{}.!()[]"

// EscapeMarkdown backslash-escapes reserved characters, applied
// character-by-character.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(escapeChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
