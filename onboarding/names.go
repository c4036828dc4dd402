// ABOUTME: Display name parsing and tag stripping
// ABOUTME: Splits a full name on its first space into first and last names
package onboarding

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Names is a display name split into its parts.
type Names struct {
	First   string `json:"first_name"`
	Last    string `json:"last_name"`
	Display string `json:"display_name"`
}

// asciiSpace is the whitespace a name is split on. Other Unicode spaces, such as
// NBSP, stay part of the word.
const asciiSpace = " \t\n\v\f\r"

// ParseName splits a name on its first ASCII whitespace. Everything after it, including further
// spaces, is the last name: "Mary Jane Watson" is Mary / Jane Watson.
// A name without a space returns ErrNoLastName together with the whole name as First.
func ParseName(full string) (Names, error) {
	names := Names{First: full, Display: full}

	idx := strings.IndexAny(full, asciiSpace)
	if idx < 0 || idx+1 == len(full) {
		return names, ErrNoLastName
	}

	names.First = full[:idx]
	names.Last = full[idx+1:]
	return names, nil
}

var stripPolicy = bluemonday.StrictPolicy()

// StripTags removes markup from a submitted value and trims surrounding whitespace.
func StripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}
