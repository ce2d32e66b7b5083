package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fileNameReplacer replaces characters that are invalid in file names.
var fileNameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

var (
	invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	dashRuns         = regexp.MustCompile(`[\s\-]+`)
)

// SanitizeFileName replaces characters that are invalid in file names with
// underscores. It is how album source trees name per-track markdown files.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}

// PathSlug turns a title into a lowercase path segment: invalid file-name
// characters are removed and whitespace/dash runs collapse into one dash.
// "You're IT!" -> "you're-it!".
func PathSlug(value string) string {
	value = strings.ToLower(value)
	value = invalidPathChars.ReplaceAllString(value, "")
	value = dashRuns.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// Slug reduces a name to letters, digits, and single dashes so album names
// and album directory names compare equal. "You're IT!" -> "youre-it".
func Slug(value string) string {
	value = cases.Lower(language.Und).String(value)
	value = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, value)
	value = dashRuns.ReplaceAllString(strings.TrimSpace(value), "-")
	return strings.Trim(value, "-")
}

// TitleFromSlug derives a display title from a file name slug.
// "giving-tree" -> "Giving Tree".
func TitleFromSlug(slug string) string {
	words := strings.ReplaceAll(slug, "-", " ")
	return cases.Title(language.Und).String(strings.TrimSpace(words))
}
