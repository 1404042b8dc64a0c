package materialize

import "github.com/agentflare-ai/xsdcoverage/internal/xsdpath"

// Selection names the optional element/attribute paths and chosen choice
// alternatives a caller wants realized in an instance; everything the
// schema marks required is built regardless of what Selection contains.
// The snippet generator, the SMT-backed generator and the pairwise engine
// each produce a Selection from their own search and hand it to Build.
type Selection struct {
	paths map[xsdpath.Path]bool
}

// NewSelection returns a Selection that includes exactly the given paths.
func NewSelection(paths ...xsdpath.Path) *Selection {
	s := &Selection{paths: make(map[xsdpath.Path]bool, len(paths))}
	for _, p := range paths {
		s.paths[p] = true
	}
	return s
}

// Includes reports whether p was asked for. A nil Selection includes
// nothing beyond what's structurally required.
func (s *Selection) Includes(p xsdpath.Path) bool {
	return s != nil && s.paths[p]
}

// Add marks p as wanted.
func (s *Selection) Add(p xsdpath.Path) { s.paths[p] = true }
