package textutil

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleSeparatorPattern = regexp.MustCompile(`[^a-zA-Z0-9:_]+`)

var titleCaser = cases.Title(language.Und)

// TitleFromFilename derives a page title from a path: the extension is
// dropped, separator characters become spaces and words are title cased.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	return Title(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Title replaces separator characters with spaces and title cases the words.
// Values without any word characters are returned unchanged.
func Title(value string) string {
	cleaned := strings.Join(strings.Fields(titleSeparatorPattern.ReplaceAllString(value, " ")), " ")
	if cleaned == "" {
		return value
	}
	return titleCaser.String(cleaned)
}
