package format

import (
	"sync"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
)

// Registry is an ordered collection of analyzers. Registration order
// is significant: built-ins are registered first, externally adapted
// analyzers are appended, so built-in format identifiers win
// first-claimed dedup during traversal.
//
// The registry is populated at startup and read-mostly afterwards;
// concurrent readers are only blocked by a registration in progress.
type Registry struct {
	mu        sync.RWMutex
	analyzers []Analyzer
	byID      map[string]Analyzer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Analyzer)}
}

// Register appends an analyzer. The canonical ID must be unique;
// a duplicate registration is rejected so identifier stability holds.
func (r *Registry) Register(a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if id == "" {
		return &apperrors.ValidationError{Field: "id", Message: "analyzer has empty format identifier"}
	}
	if _, exists := r.byID[id]; exists {
		return &apperrors.ValidationError{Field: "id", Value: id, Message: "format identifier already registered"}
	}
	r.analyzers = append(r.analyzers, a)
	r.byID[id] = a
	return nil
}

// Analyzers returns the analyzers in registration order. The returned
// slice is a copy; callers may iterate without holding any lock.
func (r *Registry) Analyzers() []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Analyzer, len(r.analyzers))
	copy(out, r.analyzers)
	return out
}

// Lookup resolves a canonical ID or alias to its analyzer.
func (r *Registry) Lookup(name string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.byID[name]; ok {
		return a, true
	}
	for _, a := range r.analyzers {
		if MatchesName(a, name) {
			return a, true
		}
	}
	return nil, false
}

// Len returns the number of registered analyzers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.analyzers)
}

// Infos returns documentation metadata for every analyzer in
// registration order.
func (r *Registry) Infos() []Info {
	analyzers := r.Analyzers()
	out := make([]Info, 0, len(analyzers))
	for _, a := range analyzers {
		out = append(out, a.Info())
	}
	return out
}
