// Package redact masks personal contact data in free text before it reaches a report.
package redact

import "regexp"

const mask = "[REDACTED]"

type pattern struct {
	re   *regexp.Regexp
	repl string
}

var patterns []pattern

func init() {
	raw := []struct{ expr, repl string }{
		// Resident ID card numbers (18 characters, last may be X)
		{`\b\d{17}[\dXx]\b`, mask},
		// Mobile numbers, optionally with 86 or +86 directly in front; the
		// preceding character is kept
		{`(^|\D)(?:\+?86[- ]?)?1[3-9]\d{9}\b`, "${1}" + mask},
		// Landline numbers with area code
		{`\b0\d{2,3}-\d{7,8}\b`, mask},
		// E-mail addresses
		{`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`, mask},
	}
	for _, r := range raw {
		patterns = append(patterns, pattern{regexp.MustCompile(r.expr), r.repl})
	}
}

// Redact replaces personal data patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.re.ReplaceAllString(text, p.repl)
	}
	return text
}
