// Package smt implements the SMT Encoder/Solver Interface (spec.md §4.F).
// No SMT or SAT library exists anywhere in the reference corpus this tool
// is grounded on, so the "solver" behind Solve is a from-scratch
// deterministic boolean constraint propagator: hierarchy, required and
// choice-exactly-one are all Horn-like or small-domain enough that a
// fixpoint cascade decides them without search, and a genuine conflict
// (two forced-true alternatives of one choice group) is reported as
// Infeasible rather than backtracked over.
package smt

import (
	"strings"

	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// VarName is the deterministic SMT-style variable name for a path: '/' and
// '@' aren't valid identifier characters, so they're replaced with '_' and
// '_AT_' respectively.
func VarName(p xsdpath.Path) string {
	s := strings.ReplaceAll(string(p), "@", "_AT_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// Encoding is the variable numbering derived from a GroundSet, kept around
// mainly for inspection and testing — it holds no clauses, and Solve
// consumes ground/cons directly rather than round-tripping through variable
// names.
type Encoding struct {
	Order   []xsdpath.Path    // deterministic (path-sorted) variable order
	VarName map[xsdpath.Path]string
}

// Encode numbers every ground-set path as a variable in deterministic
// (lexicographic path) order.
func Encode(ground *xsdpath.GroundSet) *Encoding {
	order := ground.SortedAll()
	names := make(map[xsdpath.Path]string, len(order))
	for _, p := range order {
		names[p] = VarName(p)
	}
	return &Encoding{Order: order, VarName: names}
}
