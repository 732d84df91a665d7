// Package tagpolicy computes the tag set that should result from applying a
// desired configuration to a resource's existing tags.
package tagpolicy

// Mode selects the merge policy.
type Mode string

const (
	// ModeUnionOverwrite merges desired tags over existing ones: desired
	// values win on key collision, all non-colliding existing keys are
	// preserved.
	ModeUnionOverwrite Mode = "union-overwrite"

	// ModeSelective only produces a target for resources missing at least
	// one desired key; resources already carrying every desired key are
	// skipped without re-verifying values.
	ModeSelective Mode = "selective"
)

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m == ModeUnionOverwrite || m == ModeSelective
}

// ComputeTarget returns the tag set to apply to a resource, or ok=false when
// the mode decides no action is needed. The result is always a fresh map;
// neither input is mutated. The function is pure: identical inputs yield
// identical outputs on every call.
func ComputeTarget(existing, desired map[string]string, mode Mode) (target map[string]string, ok bool) {
	if mode == ModeSelective && !missingAnyKey(existing, desired) {
		return nil, false
	}
	target = make(map[string]string, len(existing)+len(desired))
	for k, v := range existing {
		target[k] = v
	}
	for k, v := range desired {
		target[k] = v
	}
	return target, true
}

// missingAnyKey reports whether at least one desired key is absent from
// existing.
func missingAnyKey(existing, desired map[string]string) bool {
	for k := range desired {
		if _, present := existing[k]; !present {
			return true
		}
	}
	return false
}
