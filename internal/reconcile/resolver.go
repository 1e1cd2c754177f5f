package reconcile

import "strings"

// Resolver maps an image id and its raw base64 payload to the reference
// string substituted into page markdown. A false return leaves every
// occurrence of that id untouched.
type Resolver interface {
	Resolve(id, payload string) (string, bool)
}

type pathResolver struct {
	paths map[string]string
}

// NewPathResolver resolves ids through the materializer's id-to-path
// mapping. Ids that never made it to disk stay unresolved.
func NewPathResolver(paths map[string]string) Resolver {
	return pathResolver{paths: paths}
}

func (r pathResolver) Resolve(id, _ string) (string, bool) {
	path, ok := r.paths[id]
	return path, ok
}

type embedResolver struct{}

// NewEmbedResolver resolves ids to data URIs built from their own payload.
// Payloads already carrying a data: prefix are used as-is, never
// double-prefixed; empty payloads stay unresolved.
func NewEmbedResolver() Resolver {
	return embedResolver{}
}

func (embedResolver) Resolve(_, payload string) (string, bool) {
	if payload == "" {
		return "", false
	}
	if strings.HasPrefix(payload, "data:") {
		return payload, true
	}
	return "data:image/png;base64," + payload, true
}
