package smt

import "github.com/agentflare-ai/xsdcoverage/internal/xsdpath"

// MaximizeRequest builds the Request that realizes §4.F's soft objective
// (maximize Σ v_p) as a single Solve call: every ground-set path is
// required present except the non-first alternative of each choice group
// and everything beneath it, since requiring more than one alternative of
// the same group is infeasible by construction. Solve's own propagation
// and defaulting then derive the rest of the assignment from these
// requirements, so this is the entire "driver" push of hard clauses plus
// maximize directive — there is nothing left for a caller to add.
func MaximizeRequest(ground *xsdpath.GroundSet, cons *xsdpath.ConstraintSet, timeoutMs int) Request {
	childrenOf := make(map[xsdpath.Path][]xsdpath.Path)
	for child, parent := range cons.ParentOf {
		childrenOf[parent] = append(childrenOf[parent], child)
	}

	excluded := make(map[xsdpath.Path]bool)
	var excludeSubtree func(p xsdpath.Path)
	excludeSubtree = func(p xsdpath.Path) {
		if excluded[p] {
			return
		}
		excluded[p] = true
		for _, c := range childrenOf[p] {
			excludeSubtree(c)
		}
	}
	for _, cg := range cons.ChoiceGroups {
		for i, alt := range cg.Alternatives {
			if i > 0 {
				excludeSubtree(alt)
			}
		}
	}

	var require []xsdpath.Path
	for _, p := range ground.SortedAll() {
		if !excluded[p] {
			require = append(require, p)
		}
	}
	return Request{Require: require, TimeoutMs: timeoutMs}
}
