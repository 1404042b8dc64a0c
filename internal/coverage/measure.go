// Package coverage implements the Coverage Measurer (spec.md §4.D): given a
// schema's GroundSet and one or more XML instance documents, it reports
// which paths the documents actually exercise.
package coverage

import (
	"sort"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// UsedPaths walks doc from its root element and returns every element and
// attribute path it touches, built the same way the enumerator builds
// GroundSet paths (name-qualified, order-sensitive). A document is finite by
// construction, so unlike the enumerator this walk carries no depth bound or
// cycle guard.
func UsedPaths(doc xmldom.Document) (*xsdpath.GroundSet, error) {
	if doc == nil {
		return nil, &Error{Reason: "nil document"}
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, &Error{Reason: "document has no root element"}
	}
	used := xsdpath.NewGroundSet()
	walkElement(root, xsdpath.Root(string(root.LocalName())), used)
	return used, nil
}

func walkElement(elem xmldom.Element, path xsdpath.Path, used *xsdpath.GroundSet) {
	used.AddElement(path)

	attrs := elem.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		if attr := attrs.Item(i); attr != nil {
			used.AddAttribute(path.Attr(string(attr.LocalName())))
		}
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		if child := children.Item(i); child != nil {
			walkElement(child, path.Child(string(child.LocalName())), used)
		}
	}
}

// Union merges multiple used-path sets, as measuring coverage across a
// corpus of sample documents requires (spec.md §4.D).
func Union(sets ...*xsdpath.GroundSet) *xsdpath.GroundSet {
	out := xsdpath.NewGroundSet()
	for _, s := range sets {
		if s == nil {
			continue
		}
		for p := range s.E {
			out.AddElement(p)
		}
		for p := range s.A {
			out.AddAttribute(p)
		}
	}
	return out
}

// Report is the result of diffing a used-path set against a schema's
// GroundSet: how much of the schema's defined surface the sample documents
// exercise, and what they touch that the schema doesn't define at this
// maxDepth (spec.md §4.D).
type Report struct {
	Defined    int
	Covered    int
	Percentage float64

	UncoveredElements   []xsdpath.Path
	UncoveredAttributes []xsdpath.Path
	Undefined           []xsdpath.Path
}

// Measure diffs used against ground and produces a Report.
func Measure(ground *xsdpath.GroundSet, used *xsdpath.GroundSet) *Report {
	r := &Report{Defined: ground.Size()}

	for _, p := range ground.SortedElements() {
		if used.E[p] {
			r.Covered++
		} else {
			r.UncoveredElements = append(r.UncoveredElements, p)
		}
	}
	for _, p := range ground.SortedAttributes() {
		if used.A[p] {
			r.Covered++
		} else {
			r.UncoveredAttributes = append(r.UncoveredAttributes, p)
		}
	}

	var undefined []xsdpath.Path
	for p := range used.E {
		if !ground.E[p] {
			undefined = append(undefined, p)
		}
	}
	for p := range used.A {
		if !ground.A[p] {
			undefined = append(undefined, p)
		}
	}
	sort.Slice(undefined, func(i, j int) bool { return undefined[i] < undefined[j] })
	r.Undefined = undefined

	if r.Defined > 0 {
		r.Percentage = 100 * float64(r.Covered) / float64(r.Defined)
	}
	return r
}
