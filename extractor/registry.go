package extractor

// Registry tracks item URLs that have already been emitted.
// It only grows and is not safe for concurrent use.
type Registry struct {
	seen map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// Add records url and returns true if it was not seen before
func (r *Registry) Add(url string) bool {
	if _, exists := r.seen[url]; exists {
		return false
	}
	r.seen[url] = struct{}{}
	return true
}

// Contains reports whether url has been emitted
func (r *Registry) Contains(url string) bool {
	_, exists := r.seen[url]
	return exists
}

// Len returns the number of emitted URLs
func (r *Registry) Len() int {
	return len(r.seen)
}
