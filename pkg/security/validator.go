package security

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxPromptFieldLength caps each user-supplied value embedded in a model prompt
	MaxPromptFieldLength = 100
)

// injectionPatterns match phrases commonly used to override model instructions
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions?`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)`),
	regexp.MustCompile(`(?i)(system|assistant)\s*:`),
	regexp.MustCompile("```"),

	// markup that has no place in a name or a place
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizePromptField prepares a user-supplied value for interpolation into a prompt.
// It strips control characters and instruction-override phrases, collapses
// whitespace and truncates to MaxPromptFieldLength runes.
func SanitizePromptField(value string) string {
	if value == "" {
		return ""
	}

	value = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value)

	for _, pattern := range injectionPatterns {
		value = pattern.ReplaceAllString(value, " ")
	}

	value = strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))

	if runes := []rune(value); len(runes) > MaxPromptFieldLength {
		value = strings.TrimSpace(string(runes[:MaxPromptFieldLength]))
	}

	return value
}

// CleanModelOutput trims a single generated sentence: surrounding whitespace,
// wrapping quotes and anything after the first line break.
func CleanModelOutput(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	text = strings.Trim(text, " \t\"'`“”")
	return strings.TrimSpace(text)
}
