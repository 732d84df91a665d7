// Package taggers applies computed tag sets through each resource kind's
// native tagging operation.
package taggers

import (
	"context"

	"github.com/moepig/tagsweep/resources"
)

// Tagger applies a target tag set to one resource kind. Each kind has its
// own identifier shape: some operations need the short id, some the full
// ARN.
type Tagger interface {
	Kind() resources.Kind
	ApplyTags(ctx context.Context, rec resources.Record, target map[string]string) error
}

// Dispatcher maps a record's kind to its tagger. Kinds without a dedicated
// tagger fall back to the generic bulk tagging operation.
type Dispatcher struct {
	byKind   map[resources.Kind]Tagger
	fallback Tagger
}

// NewDispatcher builds the dispatch table. fallback handles every kind not
// covered by the given taggers.
func NewDispatcher(fallback Tagger, taggers ...Tagger) *Dispatcher {
	byKind := make(map[resources.Kind]Tagger, len(taggers))
	for _, t := range taggers {
		byKind[t.Kind()] = t
	}
	return &Dispatcher{byKind: byKind, fallback: fallback}
}

// For returns the tagger responsible for a kind.
func (d *Dispatcher) For(kind resources.Kind) Tagger {
	if t, ok := d.byKind[kind]; ok {
		return t
	}
	return d.fallback
}
