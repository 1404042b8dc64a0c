package smt

import (
	"fmt"
	"sort"
	"time"

	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// Request asks the solver for one assignment that forces every path in
// Require to be present, subject to the schema's hard clauses.
type Request struct {
	Require   []xsdpath.Path
	TimeoutMs int
}

// Solution is the solver's output: a present/absent boolean for every path
// in the ground set.
type Solution struct {
	Assignment map[xsdpath.Path]bool
}

// Present returns the solved paths that are true, in deterministic order —
// directly usable as a materialize.Selection's contents.
func (s *Solution) Present() []xsdpath.Path {
	var out []xsdpath.Path
	for p, v := range s.Assignment {
		if v {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type state struct {
	assigned map[xsdpath.Path]bool
}

func (st *state) force(p xsdpath.Path, v bool) error {
	if existing, ok := st.assigned[p]; ok {
		if existing != v {
			return &Error{Kind: Infeasible, Reason: fmt.Sprintf("conflicting assignment for %s", p)}
		}
		return nil
	}
	st.assigned[p] = v
	return nil
}

func (st *state) forceChanged(p xsdpath.Path, v bool, changed *bool) error {
	if existing, ok := st.assigned[p]; ok {
		if existing != v {
			return &Error{Kind: Infeasible, Reason: fmt.Sprintf("conflicting assignment for %s", p)}
		}
		return nil
	}
	st.assigned[p] = v
	*changed = true
	return nil
}

// Solve forces rootPath and every path in req.Require true, then propagates
// the hierarchy, required and choice-exactly-one hard clauses to a
// fixpoint, defaulting any choice group left undecided to its first
// alternative and any other undecided path to absent (spec.md §4.F).
func Solve(ground *xsdpath.GroundSet, cons *xsdpath.ConstraintSet, rootPath xsdpath.Path, req Request) (*Solution, error) {
	var deadline time.Time
	if req.TimeoutMs > 0 {
		deadline = time.Now().Add(time.Duration(req.TimeoutMs) * time.Millisecond)
	}

	st := &state{assigned: make(map[xsdpath.Path]bool)}
	if err := st.force(rootPath, true); err != nil {
		return nil, err
	}
	for _, p := range req.Require {
		if !ground.Contains(p) {
			return nil, &Error{Kind: Infeasible, Reason: fmt.Sprintf("%s is not in the ground set", p)}
		}
		if err := st.force(p, true); err != nil {
			return nil, err
		}
	}

	if err := runToFixpoint(st, cons, deadline); err != nil {
		return nil, err
	}

	// Any choice group whose parent ended up present but with no
	// alternative decided defaults to its lowest-indexed alternative
	// (spec.md §4.H rule 5, applied here so Solve's output is always a
	// complete, schema-consistent assignment).
	for {
		appliedDefault := false
		for _, cg := range cons.ChoiceGroups {
			if present, ok := st.assigned[cg.Parent]; !ok || !present {
				continue
			}
			if len(cg.Alternatives) == 0 {
				continue
			}
			anyTrue := false
			for _, alt := range cg.Alternatives {
				if v, ok := st.assigned[alt]; ok && v {
					anyTrue = true
					break
				}
			}
			if !anyTrue {
				if err := st.force(cg.Alternatives[0], true); err != nil {
					return nil, err
				}
				appliedDefault = true
			}
		}
		if !appliedDefault {
			break
		}
		if err := runToFixpoint(st, cons, deadline); err != nil {
			return nil, err
		}
	}

	assignment := make(map[xsdpath.Path]bool, ground.Size())
	for _, p := range ground.SortedAll() {
		assignment[p] = st.assigned[p]
	}
	return &Solution{Assignment: assignment}, nil
}

func runToFixpoint(st *state, cons *xsdpath.ConstraintSet, deadline time.Time) error {
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return &Error{Kind: Timeout, Reason: "propagation did not converge in time"}
		}
		changed, err := propagateOnce(st, cons)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
}

// propagateOnce applies one pass of the hierarchy, required and
// choice-exactly-one hard clauses and reports whether any assignment
// changed.
func propagateOnce(st *state, cons *xsdpath.ConstraintSet) (bool, error) {
	changed := false

	for child, parent := range cons.ParentOf {
		if v, ok := st.assigned[child]; ok && v {
			if err := st.forceChanged(parent, true, &changed); err != nil {
				return false, err
			}
		}
		if v, ok := st.assigned[parent]; ok && !v {
			if err := st.forceChanged(child, false, &changed); err != nil {
				return false, err
			}
		}
	}

	for parent, children := range cons.Required {
		if v, ok := st.assigned[parent]; ok && v {
			for child := range children {
				if err := st.forceChanged(child, true, &changed); err != nil {
					return false, err
				}
			}
		}
	}

	for _, cg := range cons.ChoiceGroups {
		if pv, ok := st.assigned[cg.Parent]; ok && !pv {
			for _, alt := range cg.Alternatives {
				if err := st.forceChanged(alt, false, &changed); err != nil {
					return false, err
				}
			}
			continue
		}

		var trueAlt xsdpath.Path
		anyTrue := false
		for _, alt := range cg.Alternatives {
			if v, ok := st.assigned[alt]; ok && v {
				if anyTrue && trueAlt != alt {
					return false, &Error{Kind: Infeasible, Reason: fmt.Sprintf("choice group at %s has more than one alternative forced present", cg.Parent)}
				}
				anyTrue = true
				trueAlt = alt
			}
		}
		if anyTrue {
			if err := st.forceChanged(cg.Parent, true, &changed); err != nil {
				return false, err
			}
			for _, alt := range cg.Alternatives {
				if alt != trueAlt {
					if err := st.forceChanged(alt, false, &changed); err != nil {
						return false, err
					}
				}
			}
		}
	}

	return changed, nil
}
