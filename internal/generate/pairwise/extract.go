// Package pairwise implements the Optional Extractor and the pairwise
// covering-array Engine (spec.md §4.G): it identifies every independently
// toggleable optional element, optional attribute and choice-group
// selection, then generates a small set of test patterns that together
// exercise every pair of settings across those items at least once.
package pairwise

import (
	"log/slog"
	"sort"

	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// maxItems is the hard cap on how many optional items feed the
// covering-array construction; a schema with more candidates than this has
// its pool trimmed to the shallowest, lexicographically-first maxItems
// before array construction (spec.md §4.G, §9 Open Question).
const maxItems = 300

// Kind distinguishes what an Item's settings represent.
type Kind int

const (
	ElementItem Kind = iota
	AttributeItem
	ChoiceItem
)

// Setting is one possible value an Item can take. Path is the ground-set
// path realized by choosing this setting; the empty path is the "excluded"
// setting of a boolean element/attribute item.
type Setting struct {
	Path xsdpath.Path
}

// Item is one independently toggleable dimension of the covering array: a
// boolean optional element/attribute, or a multi-valued choice-group
// selection.
type Item struct {
	Kind     Kind
	Path     xsdpath.Path // the gated path, or the choice group's owning path
	Settings []Setting
}

// Extract finds every optional element, optional attribute and
// multi-alternative choice group reachable in ground, and returns them as
// covering-array Items in deterministic (shallowest depth, then
// lexicographic path) order. logger may be nil; when the candidate pool
// exceeds maxItems, the trim is logged rather than applied silently.
func Extract(ground *xsdpath.GroundSet, cons *xsdpath.ConstraintSet, logger *slog.Logger) []Item {
	alternativePaths := make(map[xsdpath.Path]bool)
	for _, cg := range cons.ChoiceGroups {
		for _, a := range cg.Alternatives {
			alternativePaths[a] = true
		}
	}

	var items []Item
	for _, p := range ground.SortedElements() {
		if alternativePaths[p] {
			continue
		}
		parent, ok := cons.ParentOf[p]
		if !ok {
			continue // a root element path is always present, never optional
		}
		if cons.IsRequired(parent, p) {
			continue
		}
		items = append(items, Item{Kind: ElementItem, Path: p, Settings: []Setting{{}, {Path: p}}})
	}
	for _, p := range ground.SortedAttributes() {
		parent, ok := cons.ParentOf[p]
		if !ok {
			continue
		}
		if cons.IsRequired(parent, p) {
			continue
		}
		items = append(items, Item{Kind: AttributeItem, Path: p, Settings: []Setting{{}, {Path: p}}})
	}
	for _, cg := range cons.ChoiceGroups {
		if len(cg.Alternatives) < 2 {
			continue
		}
		settings := make([]Setting, len(cg.Alternatives))
		for i, a := range cg.Alternatives {
			settings[i] = Setting{Path: a}
		}
		items = append(items, Item{Kind: ChoiceItem, Path: cg.Parent, Settings: settings})
	}

	sort.Slice(items, func(i, j int) bool {
		if di, dj := items[i].Path.Depth(), items[j].Path.Depth(); di != dj {
			return di < dj
		}
		return items[i].Path < items[j].Path
	})

	if len(items) > maxItems {
		dropped := len(items) - maxItems
		if logger != nil {
			logger.Info("pairwise: trimming optional item pool",
				"total", len(items), "kept", maxItems, "dropped", dropped)
		}
		items = items[:maxItems]
	}
	return items
}
