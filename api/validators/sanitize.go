package validators

import "strings"

// SanitizeString trims whitespace and caps the value at maxLen runes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	runes := []rune(trimmed)
	if maxLen > 0 && len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}

// SanitizeOptional applies SanitizeString to optional values, mapping blanks to nil.
func SanitizeOptional(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	clean := SanitizeString(*input, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}
