package diag

import (
	"sort"
)

// Bag collects the diagnostics of one compilation, up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag returns a bag holding at most max diagnostics; max <= 0 means
// unlimited.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// FromLines parses lines into a new unlimited bag.
func FromLines(lines []string) *Bag {
	b := NewBag(0)
	for _, d := range Parse(lines) {
		b.Add(d)
	}
	return b
}

// Add appends d. It returns false when the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors reports whether any diagnostic is an error or worse.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with severity s.
func (b *Bag) Count(s Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == s {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the bag's storage; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by file, line, column, then severity (desc).
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Pos.File != dj.Pos.File {
			return di.Pos.File < dj.Pos.File
		}
		if di.Pos.Line != dj.Pos.Line {
			return di.Pos.Line < dj.Pos.Line
		}
		if di.Pos.Col != dj.Pos.Col {
			return di.Pos.Col < dj.Pos.Col
		}
		return di.Severity > dj.Severity
	})
}

// Dedup drops repeated diagnostics with the same position and message.
func (b *Bag) Dedup() {
	type key struct {
		pos Position
		msg string
	}
	seen := make(map[key]bool, len(b.items))
	items := b.items[:0]
	for _, d := range b.items {
		k := key{d.Pos, d.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		items = append(items, d)
	}
	b.items = items
}
