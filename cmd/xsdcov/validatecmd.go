package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/diagnostic"
	"github.com/agentflare-ai/xsdcoverage/internal/validate"
)

// FileResult is one input file's validation outcome.
type FileResult struct {
	Path        string
	Valid       bool
	Diagnostics []diagnostic.Diagnostic
	FirstError  string
}

// ValidateResult is the outcome of validating a batch of XML files against
// one schema (spec.md §6 "Validator batch").
type ValidateResult struct {
	Files      []FileResult
	ValidCount int
	Invalid    int
}

// RunValidate implements the Validator entry point (spec.md §6): per-file
// valid/invalid with first error location, plus summary counts.
func RunValidate(opts ValidateOptions) (*ValidateResult, error) {
	schema, err := loadSchema(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	v := validate.New(schema)

	result := &ValidateResult{}
	for _, path := range opts.XMLPaths {
		fr := FileResult{Path: path}
		doc, derr := decodeFile(path)
		if derr != nil {
			fr.Diagnostics = []diagnostic.Diagnostic{{
				Severity: diagnostic.SeverityError,
				Code:     "E001",
				Message:  derr.Error(),
			}}
			fr.FirstError = derr.Error()
		} else {
			violations := v.Validate(doc)
			conv := diagnostic.NewDiagnosticConverter(path)
			fr.Diagnostics = conv.Convert(violations)
			if len(fr.Diagnostics) > 0 {
				fr.FirstError = fmt.Sprintf("%s:%d:%d: %s",
					path, fr.Diagnostics[0].Position.Line, fr.Diagnostics[0].Position.Column, fr.Diagnostics[0].Message)
			}
		}
		fr.Valid = len(fr.Diagnostics) == 0
		if fr.Valid {
			result.ValidCount++
		} else {
			result.Invalid++
		}
		result.Files = append(result.Files, fr)
	}

	if opts.ReportPath != "" {
		if err := os.WriteFile(opts.ReportPath, []byte(renderValidateReport(result)), 0644); err != nil {
			return nil, fmt.Errorf("writing report %s: %w", opts.ReportPath, err)
		}
	}

	return result, nil
}

func decodeFile(path string) (xmldom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xmldom.Decode(f)
}

func renderValidateReport(r *ValidateResult) string {
	var sb strings.Builder
	for _, fr := range r.Files {
		if fr.Valid {
			fmt.Fprintf(&sb, "%s: valid\n", fr.Path)
			continue
		}
		fmt.Fprintf(&sb, "%s: invalid, first error: %s\n", fr.Path, fr.FirstError)
	}
	fmt.Fprintf(&sb, "\nsummary: %d valid, %d invalid\n", r.ValidCount, r.Invalid)
	return sb.String()
}
