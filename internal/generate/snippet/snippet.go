// Package snippet implements the Snippet Generator (spec.md §4.E): it
// builds a pool of candidate instance shapes, parameterized by target depth,
// whether to include optional content, and which Choice alternative to
// prefer, then greedily selects a small cover of them against the schema's
// GroundSet.
package snippet

import (
	"github.com/agentflare-ai/xsdcoverage/internal/materialize"
	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"

	"github.com/beevik/etree"
)

// Params parameterizes one candidate snippet shape.
type Params struct {
	TargetDepth     int
	IncludeOptional bool
	ChoiceIndex     int
}

// Snippet is one chosen candidate: its shape, the document it materializes
// to, and the ground-set paths it contributed that no earlier pick already
// covered.
type Snippet struct {
	Params   Params
	Document *etree.Document
	NewPaths []xsdpath.Path
}

// Result is the outcome of a greedy cover run.
type Result struct {
	Snippets        []Snippet
	CoveragePercent float64
}

// Generator holds the fixed inputs a cover run needs.
type Generator struct {
	Schema   *model.Schema
	Ground   *xsdpath.GroundSet
	Cons     *xsdpath.ConstraintSet
	RootName string
	MaxDepth int
}

// Generate runs the greedy set-cover: repeatedly pick the candidate with the
// most new coverage (ties broken by fewest total paths, then by candidate
// generation order) until targetCoverage is reached, maxFiles snippets have
// been chosen, or no remaining candidate adds any new coverage.
func (g *Generator) Generate(targetCoverage float64, maxFiles int) (*Result, error) {
	maxAlt := 1
	for _, cg := range g.Cons.ChoiceGroups {
		if len(cg.Alternatives) > maxAlt {
			maxAlt = len(cg.Alternatives)
		}
	}

	type candidate struct {
		params Params
		paths  *xsdpath.GroundSet // nil once consumed
	}
	var pool []candidate
	for _, p := range candidateParams(g.MaxDepth, maxAlt) {
		sel := buildSelection(g.Ground, g.Cons, p)
		// Required structure is always realized up to the schema's true
		// maxDepth regardless of this candidate's targetDepth; targetDepth
		// only bounds how deep optional/selected content in sel is allowed
		// to reach (applied inside buildSelection).
		paths, err := materialize.RealizedPaths(g.Schema, g.RootName, sel, g.MaxDepth)
		if err != nil {
			return nil, err
		}
		pool = append(pool, candidate{params: p, paths: paths})
	}

	covered := xsdpath.NewGroundSet()
	var chosenParams []Params
	var chosenNewPaths [][]xsdpath.Path
	for len(chosenParams) < maxFiles {
		if coveragePercent(g.Ground, covered)/100 >= targetCoverage {
			break
		}

		bestIdx, bestGain, bestTotal := -1, 0, 0
		for i, c := range pool {
			if c.paths == nil {
				continue
			}
			gain := newCoverageCount(g.Ground, covered, c.paths)
			if gain == 0 {
				continue
			}
			total := c.paths.Size()
			if bestIdx == -1 || gain > bestGain || (gain == bestGain && total < bestTotal) {
				bestIdx, bestGain, bestTotal = i, gain, total
			}
		}
		if bestIdx == -1 {
			break // zero-gain stop
		}

		picked := pool[bestIdx]
		var newPaths []xsdpath.Path
		for _, p := range picked.paths.SortedAll() {
			if (g.Ground.E[p] && !covered.E[p]) || (g.Ground.A[p] && !covered.A[p]) {
				newPaths = append(newPaths, p)
			}
		}
		mergeInto(covered, picked.paths, g.Ground)
		chosenParams = append(chosenParams, picked.params)
		chosenNewPaths = append(chosenNewPaths, newPaths)
		pool[bestIdx].paths = nil
	}

	result := &Result{CoveragePercent: coveragePercent(g.Ground, covered)}
	for i, params := range chosenParams {
		sel := buildSelection(g.Ground, g.Cons, params)
		doc, err := materialize.Build(g.Schema, g.RootName, sel, g.MaxDepth)
		if err != nil {
			return nil, err
		}
		result.Snippets = append(result.Snippets, Snippet{Params: params, Document: doc, NewPaths: chosenNewPaths[i]})
	}
	return result, nil
}

func candidateParams(maxDepth, maxAlternatives int) []Params {
	var out []Params
	for depth := 1; depth <= maxDepth; depth++ {
		for _, inc := range []bool{false, true} {
			for ci := 0; ci < maxAlternatives; ci++ {
				out = append(out, Params{TargetDepth: depth, IncludeOptional: inc, ChoiceIndex: ci})
			}
		}
	}
	return out
}

// buildSelection turns Params into a concrete Selection: every path in the
// ground set at or above TargetDepth that is not a choice alternative when
// IncludeOptional is set (harmless to also name required paths — Selection
// only gates optional content), plus the ChoiceIndex-th alternative of each
// choice group, so that alternative is the one realized.
func buildSelection(ground *xsdpath.GroundSet, cons *xsdpath.ConstraintSet, p Params) *materialize.Selection {
	sel := materialize.NewSelection()
	if p.IncludeOptional {
		alternatives := make(map[xsdpath.Path]bool)
		for _, cg := range cons.ChoiceGroups {
			for _, a := range cg.Alternatives {
				alternatives[a] = true
			}
		}
		for _, path := range ground.SortedAll() {
			if path.Depth() <= p.TargetDepth && !alternatives[path] {
				sel.Add(path)
			}
		}
	}
	for _, cg := range cons.ChoiceGroups {
		if len(cg.Alternatives) == 0 {
			continue
		}
		sel.Add(cg.Alternatives[p.ChoiceIndex%len(cg.Alternatives)])
	}
	return sel
}

func newCoverageCount(ground, covered, candidate *xsdpath.GroundSet) int {
	n := 0
	for p := range candidate.E {
		if ground.E[p] && !covered.E[p] {
			n++
		}
	}
	for p := range candidate.A {
		if ground.A[p] && !covered.A[p] {
			n++
		}
	}
	return n
}

func mergeInto(covered, candidate, ground *xsdpath.GroundSet) {
	for p := range candidate.E {
		if ground.E[p] {
			covered.AddElement(p)
		}
	}
	for p := range candidate.A {
		if ground.A[p] {
			covered.AddAttribute(p)
		}
	}
}

func coveragePercent(ground, covered *xsdpath.GroundSet) float64 {
	if ground.Size() == 0 {
		return 100
	}
	return 100 * float64(covered.Size()) / float64(ground.Size())
}
