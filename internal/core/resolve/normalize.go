package resolve

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeSpaces collapses whitespace runs and trims leftover label
// separators from both ends.
func NormalizeSpaces(value string) string {
	return strings.Trim(spaceRun.ReplaceAllString(value, " "), " :-\t")
}

// normalizedLines splits raw text into normalized non-empty lines,
// preserving document order.
func normalizedLines(rawText string) []string {
	parts := strings.Split(rawText, "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if line := NormalizeSpaces(part); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// truncateSample caps the text handed to the inference provider without
// splitting a UTF-8 sequence.
func truncateSample(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut]
}
