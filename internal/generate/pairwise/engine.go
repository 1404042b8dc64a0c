package pairwise

import (
	"log/slog"

	"github.com/beevik/etree"

	"github.com/agentflare-ai/xsdcoverage/internal/materialize"
	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// TestPattern is one row of the covering array translated into a
// materialize.Selection, ready to be built into an instance document.
type TestPattern struct {
	Row       Row
	Selection *materialize.Selection
}

// TestPatterns translates every row of ca into a Selection: for each item,
// the row's chosen setting contributes its Path to the selection (the
// "excluded" boolean setting contributes nothing).
func (ca *CoveringArray) TestPatterns() []TestPattern {
	out := make([]TestPattern, len(ca.Rows))
	for i, row := range ca.Rows {
		sel := materialize.NewSelection()
		for k, settingIdx := range row {
			setting := ca.Items[k].Settings[settingIdx]
			if setting.Path != "" {
				sel.Add(setting.Path)
			}
		}
		out[i] = TestPattern{Row: row, Selection: sel}
	}
	return out
}

// Engine drives the Optional Extractor and the greedy covering-array
// construction end to end, producing one realized instance document per
// test pattern (spec.md §4.G).
type Engine struct {
	Schema   *model.Schema
	Ground   *xsdpath.GroundSet
	Cons     *xsdpath.ConstraintSet
	RootName string
	MaxDepth int
	Logger   *slog.Logger
}

// Generate extracts the optional item pool, builds a pairwise covering
// array over it, and materializes one document per row.
func (e *Engine) Generate() ([]*etree.Document, *CoveringArray, error) {
	items := Extract(e.Ground, e.Cons, e.Logger)
	ca := BuildCoveringArray(items)

	docs := make([]*etree.Document, 0, len(ca.Rows))
	for _, tp := range ca.TestPatterns() {
		doc, err := materialize.Build(e.Schema, e.RootName, tp.Selection, e.MaxDepth)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
	}
	return docs, ca, nil
}
