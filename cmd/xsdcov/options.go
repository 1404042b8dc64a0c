// Command xsdcov is the thin driver for the five generation/measurement
// entry points of spec.md §6: coverage measurement, the greedy snippet
// generator, the SMT-backed generator, the pairwise generator, and the
// structural validator. Each subcommand's real work lives in a
// side-effect-light Run function taking a typed options struct; main.go
// only parses flags, calls Run, prints the result and maps errors to the
// process exit codes spec.md §6 defines.
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentflare-ai/xsdcoverage/internal/model"
)

// Exit codes (spec.md §6).
const (
	exitOK             = 0
	exitUsageError     = 1
	exitSchemaError    = 2
	exitGenerationErr  = 3
	exitValidationFail = 4
)

// CoverageOptions parameterizes the Coverage Measurer entry point.
type CoverageOptions struct {
	SchemaPath string
	XMLPaths   []string
	MaxDepth   int
}

// GreedyOptions parameterizes the Snippet Generator entry point.
type GreedyOptions struct {
	SchemaPath     string
	OutDir         string
	RootName       string
	MaxDepth       int
	MaxGenDepth    int
	TargetCoverage float64
	MaxFiles       int
	Namespaces     map[string]string
}

// SMTOptions parameterizes the SMT-backed generator entry point.
type SMTOptions struct {
	SchemaPath     string
	OutDir         string
	RootName       string
	MaxDepth       int
	TargetCoverage float64
	TimeoutMs      int
	Namespaces     map[string]string
}

// PairwiseOptions parameterizes the Pairwise Engine entry point.
type PairwiseOptions struct {
	SchemaPath  string
	OutDir      string
	RootName    string
	MaxDepth    int
	MaxPatterns int
	// RandomSeed is accepted for interface parity with spec.md §6 but
	// unused: the covering-array construction in internal/generate/pairwise
	// is a deterministic greedy algorithm with no random component (see
	// DESIGN.md).
	RandomSeed int
	Namespaces map[string]string
}

// ValidateOptions parameterizes the Validator entry point.
type ValidateOptions struct {
	SchemaPath string
	XMLPaths   []string
	ReportPath string
}

func defaultCoverageOptions() CoverageOptions { return CoverageOptions{MaxDepth: 10} }

func defaultGreedyOptions() GreedyOptions {
	return GreedyOptions{MaxDepth: 10, MaxGenDepth: 10, TargetCoverage: 0.90, MaxFiles: 10}
}

func defaultSMTOptions() SMTOptions {
	return SMTOptions{MaxDepth: 10, TargetCoverage: 0.95, TimeoutMs: 60000}
}

func defaultPairwiseOptions() PairwiseOptions {
	return PairwiseOptions{MaxDepth: 10, MaxPatterns: 50, RandomSeed: 42}
}

// parseNamespaceFlag parses a repeated "-namespace prefix=uri" flag value
// into the override map every generator subcommand accepts.
func parseNamespaceFlag(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		idx := strings.IndexByte(v, '=')
		if idx <= 0 {
			return nil, fmt.Errorf("invalid -namespace value %q, expected prefix=uri", v)
		}
		out[v[:idx]] = v[idx+1:]
	}
	return out, nil
}

// resolveRootName returns explicit if non-empty, otherwise the schema's
// sole top-level element name. A schema with more than one top-level
// element requires an explicit -root.
func resolveRootName(schema *model.Schema, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if len(schema.Elements) == 0 {
		return "", fmt.Errorf("schema declares no top-level elements")
	}
	if len(schema.Elements) > 1 {
		names := make([]string, 0, len(schema.Elements))
		for qn := range schema.Elements {
			names = append(names, qn.Local)
		}
		sort.Strings(names)
		return "", fmt.Errorf("schema declares multiple top-level elements (%s); pass -root", strings.Join(names, ", "))
	}
	for qn := range schema.Elements {
		return qn.Local, nil
	}
	panic("unreachable")
}

// loadSchema parses and resolves the schema at path, using a fresh cache
// per invocation.
func loadSchema(path string) (*model.Schema, error) {
	cache := model.NewCache("")
	return cache.Get(path)
}
