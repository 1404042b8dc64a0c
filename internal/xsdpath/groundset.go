package xsdpath

import "sort"

// GroundSet is the union of every element and attribute path the enumerator
// reaches for a schema and a maxDepth bound (spec.md §3). Invariants: every
// non-root element path's parent is in E; every attribute path's owning
// element path is in E; no path exceeds maxDepth.
type GroundSet struct {
	E map[Path]bool
	A map[Path]bool
}

// NewGroundSet returns an empty ground set.
func NewGroundSet() *GroundSet {
	return &GroundSet{E: make(map[Path]bool), A: make(map[Path]bool)}
}

// AddElement records an element path.
func (g *GroundSet) AddElement(p Path) { g.E[p] = true }

// AddAttribute records an attribute path.
func (g *GroundSet) AddAttribute(p Path) { g.A[p] = true }

// All returns every path in E ∪ A.
func (g *GroundSet) All() []Path {
	out := make([]Path, 0, len(g.E)+len(g.A))
	for p := range g.E {
		out = append(out, p)
	}
	for p := range g.A {
		out = append(out, p)
	}
	return out
}

// SortedElements returns E in deterministic (lexicographic) order.
func (g *GroundSet) SortedElements() []Path {
	out := make([]Path, 0, len(g.E))
	for p := range g.E {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedAttributes returns A in deterministic (lexicographic) order.
func (g *GroundSet) SortedAttributes() []Path {
	out := make([]Path, 0, len(g.A))
	for p := range g.A {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedAll returns E ∪ A in deterministic (lexicographic) order.
func (g *GroundSet) SortedAll() []Path {
	out := g.All()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Size returns |E| + |A|.
func (g *GroundSet) Size() int { return len(g.E) + len(g.A) }

// Contains reports whether p is in E or A.
func (g *GroundSet) Contains(p Path) bool { return g.E[p] || g.A[p] }
