// Package naming derives human and source-code names from resource and field
// identifiers.
package naming

import (
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// Label converts a field path into a human-friendly label. It splits on dots,
// underscores, dashes and camelCase boundaries: "author.firstName" becomes
// "Author First Name".
func Label(path string) string {
	if path == "" {
		return ""
	}

	var segments []string
	for _, part := range strings.Split(path, ".") {
		for _, word := range splitWordsPattern.Split(part, -1) {
			if word == "" {
				continue
			}
			segments = append(segments, titleCase(splitCamel(word)))
		}
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

// ComponentName names the generated snippet component for a resource and
// view kind: ("books", "Show") gives "BookShow".
func ComponentName(resource, kind string) string {
	return Capitalize(Singular(resource)) + kind
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(word string) string {
	return inflect.Capitalize(strings.ToLower(word))
}

// Singular returns the singular form of a resource name.
func Singular(word string) string {
	if word == "" {
		return ""
	}
	return inflect.Singularize(word)
}

// Plural returns the plural form of a resource name.
func Plural(word string) string {
	if word == "" {
		return ""
	}
	return inflect.Pluralize(word)
}

// ResourceName turns a schema name such as "PublishingHouse" into the
// resource name "publishing_houses".
func ResourceName(schema string) string {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return ""
	}
	return Plural(strings.ToLower(inflect.Underscore(schema)))
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(words string) string {
	parts := strings.Fields(words)
	for idx, word := range parts {
		lower := strings.ToLower(word)
		parts[idx] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
