package detect

import (
	"regexp"
	"time"

	"github.com/spf13/cast"
)

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)
	htmlPattern    = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(\s[^<>]*)?/?>`)
)

// Layouts cast does not cover: ISO date-times without seconds.
var minuteLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
}

// isDate reports whether value is an ISO-8601 date or date-time that names a
// real calendar instant.
func isDate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	if _, err := cast.StringToDate(value); err == nil {
		return true
	}
	for _, layout := range minuteLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
