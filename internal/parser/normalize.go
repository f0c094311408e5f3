package parser

import (
	"strings"
	"unicode"
)

// Normalize flattens line endings to "\n" and turns any other Unicode space
// (no-break, thin, tab, ...) into a plain ASCII space. RE2's \s only knows
// ASCII whitespace, so this keeps the label patterns working on text that
// came out of a PDF with typographic spacing.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != ' ' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
}
