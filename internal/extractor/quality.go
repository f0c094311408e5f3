package extractor

import (
	"strings"
	"unicode"
)

// textQuality returns the share of plain ASCII letters, digits, whitespace
// and statement punctuation among all characters, from 0.0 to 1.0.
// unicode.IsLetter is deliberately not used: identity-encoded fonts decode
// to accented garbage that it would count as readable.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"$£€%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// statementWords appear in virtually every card statement.
var statementWords = []string{
	"card", "account", "balance", "payment", "statement", "due",
	"date", "total", "amount", "credit", "minimum", "period",
	"transaction", "purchase", "cycle", "limit", "page",
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% readable
// characters, and at least one statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsStatementWords(pages)
}

// IsReadableText reports whether text looks like a decoded statement
// rather than font-encoding garbage.
func IsReadableText(text string) bool {
	return isReadableText([]string{text})
}
