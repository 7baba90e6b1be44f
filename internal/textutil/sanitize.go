package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe as a file name on common filesystems.
// Path separators, colons and asterisks become dashes; other reserved
// characters and control characters are dropped.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*`, r):
			return '-'
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, name)
	return strings.TrimSpace(cleaned)
}

// SanitizeToken turns value into a lowercase token for generated file names,
// such as preview stills. Letters and digits are kept, runs of anything else
// become underscores, and "unknown" stands in for an empty result.
func SanitizeToken(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if out := strings.Trim(b.String(), "_-"); out != "" {
		return out
	}
	return "unknown"
}
