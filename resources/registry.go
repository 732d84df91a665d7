package resources

import "sync"

// Registry holds discoverers in registration order. Registration order is
// the aggregation precedence order: discoverers registered later overwrite
// records produced by earlier ones on ARN collision, so the generic bulk
// discoverer must be registered first and the specific ones after it.
type Registry struct {
	mu          sync.RWMutex
	discoverers []Discoverer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a discoverer at the end of the precedence order.
func (r *Registry) Register(d Discoverer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discoverers = append(r.discoverers, d)
}

// Regional returns the region-scoped discoverers in precedence order.
func (r *Registry) Regional() []Discoverer {
	return r.withScope(ScopeRegional)
}

// Global returns the once-per-process discoverers in precedence order.
func (r *Registry) Global() []Discoverer {
	return r.withScope(ScopeGlobal)
}

func (r *Registry) withScope(scope Scope) []Discoverer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Discoverer, 0, len(r.discoverers))
	for _, d := range r.discoverers {
		if d.Scope() == scope {
			out = append(out, d)
		}
	}
	return out
}
