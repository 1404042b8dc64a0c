package xsdpath

import "sort"

// ChoiceGroup is one (owning-element-path, [alternative child paths]) tuple:
// exactly one alternative is mandatory whenever the owning path is present
// (spec.md §3c).
type ChoiceGroup struct {
	Parent       Path
	Alternatives []Path
}

// ConstraintSet is the structural constraints the extractor records
// alongside the enumerator's walk (spec.md §3 ConstraintSet, §4.C).
type ConstraintSet struct {
	ParentOf     map[Path]Path
	Required     map[Path]map[Path]bool // parent -> required child paths
	ChoiceGroups []ChoiceGroup
	// Recursive marks the element paths at exactly maxDepth: the frontier
	// where the depth bound stops the walk from descending further. The
	// materializer does not read it; it counts depth itself when applying
	// its emergency-descent cap (spec.md §4.H rule 6).
	Recursive map[Path]bool
}

// NewConstraintSet returns an empty constraint set.
func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{
		ParentOf:  make(map[Path]Path),
		Required:  make(map[Path]map[Path]bool),
		Recursive: make(map[Path]bool),
	}
}

// SetParent records parent_of[child] = parent.
func (c *ConstraintSet) SetParent(child, parent Path) {
	c.ParentOf[child] = parent
}

// AddRequired records that child is required whenever parent is present.
func (c *ConstraintSet) AddRequired(parent, child Path) {
	if c.Required[parent] == nil {
		c.Required[parent] = make(map[Path]bool)
	}
	c.Required[parent][child] = true
}

// IsRequired reports whether child is a required descendant of parent.
func (c *ConstraintSet) IsRequired(parent, child Path) bool {
	return c.Required[parent][child]
}

// AddChoiceGroup records one exactly-one-of tuple.
func (c *ConstraintSet) AddChoiceGroup(parent Path, alternatives []Path) {
	c.ChoiceGroups = append(c.ChoiceGroups, ChoiceGroup{Parent: parent, Alternatives: alternatives})
}

// RequiredChildren returns the required children of parent in deterministic order.
func (c *ConstraintSet) RequiredChildren(parent Path) []Path {
	m := c.Required[parent]
	out := make([]Path, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
