package resources

// Inventory is the de-duplicated result of one aggregation pass, keyed by
// ARN. Insertion order is preserved so that the tagging phase iterates the
// inventory in a stable order; overwriting an existing ARN keeps its
// original position.
type Inventory struct {
	order []string
	byARN map[string]Record
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{byARN: make(map[string]Record)}
}

// Add inserts a record, replacing (not merging) any earlier record with the
// same ARN. Callers feed records in precedence order so that enriched
// records from specific discoverers win over generic bulk records.
func (inv *Inventory) Add(rec Record) {
	if _, seen := inv.byARN[rec.ARN]; !seen {
		inv.order = append(inv.order, rec.ARN)
	}
	inv.byARN[rec.ARN] = rec
}

// Len returns the number of distinct resources held.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// Get returns the record for an ARN, if present.
func (inv *Inventory) Get(arn string) (Record, bool) {
	rec, ok := inv.byARN[arn]
	return rec, ok
}

// Records returns all records in stable insertion order.
func (inv *Inventory) Records() []Record {
	out := make([]Record, 0, len(inv.order))
	for _, arn := range inv.order {
		out = append(out, inv.byARN[arn])
	}
	return out
}

// CountByKind breaks the inventory down by resource kind.
func (inv *Inventory) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, rec := range inv.byARN {
		counts[rec.Kind]++
	}
	return counts
}
