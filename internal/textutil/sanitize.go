package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a path segment.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Leading dots are stripped so destination
// segments never become hidden files. Returns "Unknown" when nothing
// printable survives.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "Unknown"
	}
	return name
}
