package common

import "strings"

// UnknownStr is returned by String methods for values outside their enum.
const UnknownStr = "unknown"

// DefaultSeparators are the characters that may separate words of an entity name.
var DefaultSeparators = []string{" ", "_", "-"}

// SanitizeName replaces every separator occurring in name with an underscore,
// producing a value that is safe to embed in a file name.
// Empty separators are ignored.
func SanitizeName(name string, separators []string) string {
	for _, sep := range separators {
		if sep == "" {
			continue
		}

		name = strings.ReplaceAll(name, sep, "_")
	}

	return name
}
