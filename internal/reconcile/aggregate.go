package reconcile

import "strings"

// Aggregate joins non-empty page markdown in order, separated by exactly one
// blank line. Empty pages contribute nothing, not even a separator. An
// all-empty input yields the empty string, which is a valid document.
func Aggregate(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if page != "" {
			kept = append(kept, page)
		}
	}
	return strings.Join(kept, "\n\n")
}
