package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/coverage"
	"github.com/agentflare-ai/xsdcoverage/internal/enumerate"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// CoverageResult is the outcome of a coverage measurement run: the report
// plus whether any input file failed to parse (each such failure is
// reported but does not abort the batch, per spec.md §7's XmlParseError
// policy).
type CoverageResult struct {
	Report      string
	ParseErrors []string
}

// RunCoverage implements the Coverage Measurer entry point (spec.md §4.D,
// §6).
func RunCoverage(opts CoverageOptions) (*CoverageResult, error) {
	schema, err := loadSchema(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	ground, _, err := enumerate.Walk(schema, opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	var used []*xsdpath.GroundSet
	var parseErrors []string
	for _, path := range opts.XMLPaths {
		set, err := usedPathsFromFile(path)
		if err != nil {
			slog.Error("failed to parse XML file for coverage measurement", "file", path, "error", err)
			parseErrors = append(parseErrors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		used = append(used, set)
	}

	report := coverage.Measure(ground, coverage.Union(used...))
	return &CoverageResult{Report: renderCoverageReport(ground, report), ParseErrors: parseErrors}, nil
}

func usedPathsFromFile(path string) (*xsdpath.GroundSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := xmldom.Decode(f)
	if err != nil {
		return nil, err
	}
	return coverage.UsedPaths(doc)
}

// renderCoverageReport formats a Report into the text sections spec.md §6
// requires: Element coverage, Attribute coverage, Overall coverage, Unused
// paths, Warning: undefined paths, Used paths.
func renderCoverageReport(ground *xsdpath.GroundSet, r *coverage.Report) string {
	var sb strings.Builder

	elemTotal := len(ground.E)
	attrTotal := len(ground.A)
	elemCovered := elemTotal - len(r.UncoveredElements)
	attrCovered := attrTotal - len(r.UncoveredAttributes)

	fmt.Fprintf(&sb, "Element coverage: %d/%d (%.2f%%)\n", elemCovered, elemTotal, percentOf(elemCovered, elemTotal))
	fmt.Fprintf(&sb, "Attribute coverage: %d/%d (%.2f%%)\n", attrCovered, attrTotal, percentOf(attrCovered, attrTotal))
	fmt.Fprintf(&sb, "Overall coverage: %d/%d (%.2f%%)\n", r.Covered, r.Defined, r.Percentage)

	sb.WriteString("\nUnused paths:\n")
	if len(r.UncoveredElements) == 0 && len(r.UncoveredAttributes) == 0 {
		sb.WriteString("  (none)\n")
	} else {
		for _, p := range r.UncoveredElements {
			fmt.Fprintf(&sb, "  %s\n", p)
		}
		for _, p := range r.UncoveredAttributes {
			fmt.Fprintf(&sb, "  %s\n", p)
		}
	}

	sb.WriteString("\nWarning: undefined paths:\n")
	if len(r.Undefined) == 0 {
		sb.WriteString("  (none)\n")
	} else {
		for _, p := range r.Undefined {
			fmt.Fprintf(&sb, "  %s\n", p)
		}
	}

	sb.WriteString("\nUsed paths:\n")
	uncoveredElem := make(map[xsdpath.Path]bool, len(r.UncoveredElements))
	for _, p := range r.UncoveredElements {
		uncoveredElem[p] = true
	}
	uncoveredAttr := make(map[xsdpath.Path]bool, len(r.UncoveredAttributes))
	for _, p := range r.UncoveredAttributes {
		uncoveredAttr[p] = true
	}
	anyUsed := false
	for _, p := range ground.SortedElements() {
		if !uncoveredElem[p] {
			fmt.Fprintf(&sb, "  %s\n", p)
			anyUsed = true
		}
	}
	for _, p := range ground.SortedAttributes() {
		if !uncoveredAttr[p] {
			fmt.Fprintf(&sb, "  %s\n", p)
			anyUsed = true
		}
	}
	if !anyUsed {
		sb.WriteString("  (none)\n")
	}

	return sb.String()
}

func percentOf(covered, total int) float64 {
	if total == 0 {
		return 100
	}
	return 100 * float64(covered) / float64(total)
}
