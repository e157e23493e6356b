package validate

import "strings"

const (
	MaxContentLen      = 2000
	MaxCategoriesLen   = 200
	MaxCategoryNameLen = 50
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func WithinLen(value string, max int) bool {
	return len(value) <= max
}

// Truncate cuts value to at most max runes, appending "..." when anything
// was removed. Cutting on rune boundaries keeps previews valid UTF-8.
func Truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max]) + "..."
}
