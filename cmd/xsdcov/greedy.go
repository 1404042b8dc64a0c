package main

import (
	"fmt"
	"path/filepath"

	"github.com/agentflare-ai/xsdcoverage/internal/enumerate"
	"github.com/agentflare-ai/xsdcoverage/internal/generate/snippet"
)

// GreedyResult is the outcome of a greedy snippet generation run.
type GreedyResult struct {
	Files           []string
	CoveragePercent float64
}

// RunGreedy implements the Snippet Generator entry point (spec.md §4.E,
// §6): ground-truth depth is opts.MaxDepth, but the candidate shapes
// themselves (and the documents built from them) are bounded to
// opts.MaxGenDepth, a shallower knob that keeps generated snippets small
// while the ground set used to score them stays at full fidelity.
func RunGreedy(opts GreedyOptions) (*GreedyResult, error) {
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

	gen := &snippet.Generator{
		Schema:   schema,
		Ground:   ground,
		Cons:     cons,
		RootName: rootName,
		MaxDepth: opts.MaxGenDepth,
	}
	result, err := gen.Generate(opts.TargetCoverage, opts.MaxFiles)
	if err != nil {
		return nil, err
	}

	var files []string
	for i, snip := range result.Snippets {
		applyNamespacePrefixes(snip.Document, opts.Namespaces)
		name := fmt.Sprintf("greedy_generated_%03d.xml", i+1)
		path := filepath.Join(opts.OutDir, name)
		if err := snip.Document.WriteToFile(path); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		files = append(files, path)
	}

	return &GreedyResult{Files: files, CoveragePercent: result.CoveragePercent}, nil
}
