// Package answer decides correctness of submitted answers. Matching is exact
// on the normalized string; there is no partial credit or fuzzy matching.
package answer

import "strings"

// Normalize trims, lowercases and collapses internal whitespace runs to a
// single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Validate reports whether userAnswer matches correctAnswer or any of the
// acceptable alternatives after normalization.
func Validate(userAnswer, correctAnswer string, acceptableAnswers []string) bool {
	normalized := Normalize(userAnswer)
	if normalized == "" {
		return false
	}
	if normalized == Normalize(correctAnswer) {
		return true
	}
	for _, a := range acceptableAnswers {
		if normalized == Normalize(a) {
			return true
		}
	}
	return false
}

// Mask builds the hint shown after a participant spends points: the first
// character stays visible, spaces, dashes and slashes keep their place, the
// rest becomes underscores. "ls -la" masks to "l_ -__".
func Mask(correctAnswer string) string {
	if correctAnswer == "" {
		return "No hint available"
	}
	var b strings.Builder
	for i, ch := range correctAnswer {
		switch {
		case ch == ' ' || ch == '-' || ch == '/':
			b.WriteRune(ch)
		case i == 0:
			b.WriteRune(ch)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
