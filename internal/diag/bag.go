package diag

import (
	"cmp"
	"slices"
)

// Bag is an ordered collection of diagnostics with an optional size limit.
// It is not safe for concurrent use; every worker fills a bag of its own.
type Bag struct {
	items []*Diagnostic
	limit int
}

// NewBag creates a bag holding at most limit diagnostics; limit <= 0 means
// no limit.
func NewBag(limit int) *Bag {
	return &Bag{limit: limit}
}

// Add appends d and reports whether it fit under the limit.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil || (b.limit > 0 && len(b.items) >= b.limit) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors: есть ли хоть одна ошибка.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d *Diagnostic) bool { return d.Severity >= SevError })
}

// Count returns how many diagnostics carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the internal slice; callers must not append to it.
func (b *Bag) Items() []*Diagnostic { return b.items }

// Merge appends the diagnostics of other. The limit grows when needed, a
// merged bag never drops what the per-file bags already accepted.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	if b.limit > 0 && len(b.items) > b.limit {
		b.limit = len(b.items)
	}
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(*Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d *Diagnostic) bool { return !keep(d) })
}

// Sort orders by file, span, then errors before warnings, then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y *Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
