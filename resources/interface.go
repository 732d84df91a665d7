package resources

import "context"

// Scope tells the orchestrator whether a discoverer runs once per region or
// once per process.
type Scope int

const (
	ScopeRegional Scope = iota
	ScopeGlobal
)

// Discoverer lists resources of one kind (or a generic bulk listing) for one
// locality, paging through provider continuation tokens until exhausted.
type Discoverer interface {
	// Kind returns the resource kind this discoverer produces, or
	// KindUnknown for a bulk discoverer that infers kinds per record.
	Kind() Kind

	// Scope reports whether Discover is called per region or once with
	// LocalityGlobal.
	Scope() Scope

	// Discover lists all resources visible in the given locality. A failure
	// is reported to the caller; the discoverer never partially succeeds
	// silently.
	Discover(ctx context.Context, locality string) ([]Record, error)
}
