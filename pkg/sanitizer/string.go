package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var reNonLabel = regexp.MustCompile(`[^0-9\p{L}]+`)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLabel turns "Sleeping Bags" or "sleeping-bags" into "sleeping_bags".
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = reNonLabel.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeText collapses whitespace and truncates to maxRunes.
func NormalizeText(s string, maxRunes int) string {
	s = TrimAndNormalize(s)
	if maxRunes > 0 {
		if r := []rune(s); len(r) > maxRunes {
			s = strings.TrimSpace(string(r[:maxRunes]))
		}
	}
	return s
}
