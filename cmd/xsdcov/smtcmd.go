package main

import (
	"fmt"
	"path/filepath"

	"github.com/agentflare-ai/xsdcoverage/internal/enumerate"
	"github.com/agentflare-ai/xsdcoverage/internal/generate/smt"
	"github.com/agentflare-ai/xsdcoverage/internal/materialize"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// SMTResult is the outcome of one SMT-backed generation run.
type SMTResult struct {
	File            string
	CoveragePercent float64
	TargetCoverage  float64
	TargetMet       bool
}

// RunSMT implements the SMT Encoder/Solver entry point (spec.md §4.F, §6):
// it requests the maximize-objective assignment and materializes it to a
// single output file. A GenerationError::Infeasible or ::Timeout from the
// solver is returned unchanged for the driver to surface.
func RunSMT(opts SMTOptions) (*SMTResult, error) {
	schema, err := loadSchema(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	rootName, err := resolveRootName(schema, opts.RootName)
	if err != nil {
		return nil, err
	}
	ground, cons, err := enumerate.Walk(schema, opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	req := smt.MaximizeRequest(ground, cons, opts.TimeoutMs)
	sol, err := smt.Solve(ground, cons, xsdpath.Root(rootName), req)
	if err != nil {
		return nil, err
	}

	sel := materialize.NewSelection(sol.Present()...)
	doc, err := materialize.Build(schema, rootName, sel, opts.MaxDepth)
	if err != nil {
		return nil, err
	}
	applyNamespacePrefixes(doc, opts.Namespaces)

	path := filepath.Join(opts.OutDir, "smt_generated_001.xml")
	if err := doc.WriteToFile(path); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	present := 0
	for _, v := range sol.Assignment {
		if v {
			present++
		}
	}
	coveragePercent := 100.0
	if ground.Size() > 0 {
		coveragePercent = 100 * float64(present) / float64(ground.Size())
	}

	return &SMTResult{
		File:            path,
		CoveragePercent: coveragePercent,
		TargetCoverage:  opts.TargetCoverage * 100,
		TargetMet:       coveragePercent/100 >= opts.TargetCoverage,
	}, nil
}
