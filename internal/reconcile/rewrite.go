package reconcile

import (
	"regexp"
	"strings"
)

// Rewrite replaces every ![alt](<id>) occurrence whose link target is
// exactly an image id with the resolver's reference for that id, keeping
// the alt text. Regex metacharacters in ids are escaped, and the target
// match is exact between the parentheses, so distinct ids never
// cross-contaminate. Unresolvable ids and ids the text never references
// are left alone. Pure string transformation, no I/O.
func Rewrite(markdown string, images map[string]string, resolver Resolver) string {
	if markdown == "" || len(images) == 0 {
		return markdown
	}

	out := markdown
	for _, id := range sortedIDs(images) {
		ref, ok := resolver.Resolve(id, images[id])
		if !ok {
			continue
		}
		pattern := regexp.MustCompile(`!\[([^\]]*)\]\(` + regexp.QuoteMeta(id) + `\)`)
		// keep any literal $ in the reference out of the expansion template
		ref = strings.ReplaceAll(ref, "$", "$$")
		out = pattern.ReplaceAllString(out, `![${1}](`+ref+`)`)
	}
	return out
}
