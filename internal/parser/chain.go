package parser

import (
	"regexp"
	"strings"
)

// matcher tries one pattern alternative against the text.
type matcher func(text string) (string, bool)

// firstMatch evaluates the chain in order and stops at the first hit.
func firstMatch(text string, chain []matcher) (string, bool) {
	for _, m := range chain {
		if v, ok := m(text); ok {
			return v, true
		}
	}
	return "", false
}

// capture returns the first submatch of re, trimmed.
func capture(re *regexp.Regexp) matcher {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		return v, v != ""
	}
}

// captureRange joins the first two submatches of re as "start - end".
func captureRange(re *regexp.Regexp) matcher {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1] + " - " + m[2], true
	}
}

// present returns value whenever re matches anywhere in the text.
func present(re *regexp.Regexp, value string) matcher {
	return func(text string) (string, bool) {
		return value, re.MatchString(text)
	}
}
