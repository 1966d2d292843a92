package menu

import "strings"

// Slugify turns a list name into its URL form: trimmed, lowercased, with each
// run of whitespace replaced by a single "-".
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
