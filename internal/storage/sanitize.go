package storage

import (
	"regexp"
	"strings"
)

// MaxNameLength is the longest sanitized file name, in characters.
const MaxNameLength = 200

const replacement = "_"

var (
	schemePattern          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	illegalPattern         = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlPattern         = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedPattern        = regexp.MustCompile(`^\.+$`)
	windowsReservedPattern = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailingPattern = regexp.MustCompile(`[. ]+$`)
)

// Sanitize turns name (often a URL) into a file name. It strips a leading
// scheme and "www.", replaces characters that are unsafe in file names with
// "_", and keeps the trailing MaxNameLength characters. It is a best-effort
// normalization, not a traversal guard.
func Sanitize(name string) string {
	name = schemePattern.ReplaceAllString(name, "")
	name = strings.TrimPrefix(name, "www.")

	name = illegalPattern.ReplaceAllString(name, replacement)
	name = controlPattern.ReplaceAllString(name, replacement)
	name = reservedPattern.ReplaceAllString(name, replacement)
	name = windowsReservedPattern.ReplaceAllString(name, replacement)
	name = windowsTrailingPattern.ReplaceAllString(name, replacement)

	if runes := []rune(name); len(runes) > MaxNameLength {
		name = string(runes[len(runes)-MaxNameLength:])
	}
	if name == "" {
		return replacement
	}
	return name
}
