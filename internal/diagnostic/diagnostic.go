// Package diagnostic turns validate.Violations into rustc-style
// diagnostics with a source position, severity, short code and hints, for
// the Validator CLI command's human-readable output (spec.md §6).
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/validate"
)

// Diagnostic is one rustc-style validation diagnostic.
type Diagnostic struct {
	Severity  Severity  `json:"severity"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Position  Position  `json:"position"`
	Tag       string    `json:"tag"`
	Attribute string    `json:"attribute,omitempty"`
	SpecRef   string    `json:"spec_ref,omitempty"`
	Hints     []string  `json:"hints,omitempty"`
	Related   []Related `json:"related,omitempty"`
}

// Severity is a diagnostic's severity level.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Position is a source location: file plus line/column/byte offset.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int64  `json:"offset"`
}

// Related points to a related location in the source, for violations that
// reference another part of the document (currently unused — no
// validate.Violation kind yet names a second location — but kept so a
// future duplicate-ID or cross-reference check has somewhere to put one).
type Related struct {
	Label    string   `json:"label"`
	Position Position `json:"position"`
}

// DiagnosticConverter converts validate.Violations into Diagnostics for one
// source document.
type DiagnosticConverter struct {
	fileName string
}

// NewDiagnosticConverter returns a converter that stamps fileName into
// every Diagnostic's Position.
func NewDiagnosticConverter(fileName string) *DiagnosticConverter {
	return &DiagnosticConverter{fileName: fileName}
}

// Convert converts every violation to a Diagnostic, in order.
func (dc *DiagnosticConverter) Convert(violations []validate.Violation) []Diagnostic {
	diagnostics := make([]Diagnostic, 0, len(violations))
	for _, v := range violations {
		diagnostics = append(diagnostics, dc.convertViolation(v))
	}
	return diagnostics
}

func (dc *DiagnosticConverter) convertViolation(v validate.Violation) Diagnostic {
	diag := Diagnostic{
		Severity:  dc.getSeverity(v.Code),
		Code:      dc.mapErrorCode(v.Code),
		Message:   v.Message,
		Position:  dc.getPosition(v.Element, v.Attribute),
		Tag:       dc.getTag(v.Element),
		Attribute: v.Attribute,
		SpecRef:   dc.getSpecRef(v.Code),
		Hints:     dc.generateHints(v),
	}
	return diag
}

// getSeverity determines the severity based on error code.
func (dc *DiagnosticConverter) getSeverity(code string) Severity {
	if strings.HasPrefix(code, "xsd-warn-") {
		return SeverityWarning
	}
	return SeverityError
}

// mapErrorCode maps XSD constraint violation codes to short, user-facing
// codes.
func (dc *DiagnosticConverter) mapErrorCode(xsdCode string) string {
	codeMap := map[string]string{
		"cvc-complex-type.3.2.2": "E200", // Invalid/prohibited attribute
		"cvc-complex-type.2.4.a": "E201", // Invalid child element
		"cvc-complex-type.2.4.b": "E202", // Missing required element
		"cvc-complex-type.2.4.d": "E203", // Unexpected element
		"cvc-complex-type.4":     "E204", // Missing required attribute
		"cvc-complex-type.2.1":   "E211", // Unexpected content in empty element
		"cvc-elt.1":              "E207", // Element not declared
		"cvc-type.2":             "E212", // Unresolvable type
		"cvc-datatype-valid.1":   "E208", // Invalid value for type
		"cvc-enumeration-valid":  "E209", // Value not in enumeration
		"cvc-pattern-valid":      "E210", // Pattern mismatch
		"xsd-null-document":      "E001", // Null document
		"xsd-no-root":            "E002", // No root element
	}
	if mapped, ok := codeMap[xsdCode]; ok {
		return mapped
	}
	return "E" + strings.ReplaceAll(xsdCode, ".", "_")
}

// getPosition gets the position of an element or attribute.
func (dc *DiagnosticConverter) getPosition(elem xmldom.Element, attrName string) Position {
	if elem == nil {
		return Position{File: dc.fileName}
	}

	if attrName != "" {
		if attr := elem.GetAttributeNode(xmldom.DOMString(attrName)); attr != nil {
			if line, col, offset := attr.Position(); line > 0 {
				return Position{File: dc.fileName, Line: line, Column: col, Offset: offset}
			}
		}
	}

	line, col, offset := elem.Position()
	return Position{File: dc.fileName, Line: line, Column: col, Offset: offset}
}

func (dc *DiagnosticConverter) getTag(elem xmldom.Element) string {
	if elem == nil {
		return ""
	}
	return string(elem.LocalName())
}

// getSpecRef returns the specification this tool validates against. XSD
// constraint codes don't individually map to distinct spec sections the
// way a fixed-schema validator's would, so every code gets the same note.
func (dc *DiagnosticConverter) getSpecRef(code string) string {
	return "W3C XML Schema 1.1"
}

// generateHints creates helpful hints based on the violation.
func (dc *DiagnosticConverter) generateHints(v validate.Violation) []string {
	hints := []string{}

	switch v.Code {
	case "cvc-complex-type.2.4.b":
		if len(v.Expected) == 1 {
			hints = append(hints, fmt.Sprintf("Add the required element <%s>", v.Expected[0]))
		} else if len(v.Expected) > 1 {
			hints = append(hints, fmt.Sprintf("Valid children here are: %s", strings.Join(v.Expected, ", ")))
		}

	case "cvc-complex-type.2.4.d":
		if len(v.Expected) > 0 {
			hints = append(hints, fmt.Sprintf("Valid elements here are: %s", strings.Join(v.Expected, ", ")))
		}

	case "cvc-complex-type.4":
		if len(v.Expected) == 1 {
			hints = append(hints, fmt.Sprintf("Add required attribute: %s=\"...\"", v.Expected[0]))
		}

	case "cvc-enumeration-valid":
		if len(v.Expected) > 0 {
			hints = append(hints, fmt.Sprintf("Valid values are: %s", strings.Join(v.Expected, ", ")))
		}

	case "cvc-elt.1":
		hints = append(hints, "Check for typos in the element name and its namespace")
	}

	if len(hints) == 0 && len(v.Expected) > 0 {
		hints = append(hints, fmt.Sprintf("Expected: %s", strings.Join(v.Expected, ", ")))
	}

	return hints
}

// ErrorFormatter renders a Diagnostic in rustc style.
type ErrorFormatter struct {
	Color bool
}

// Format formats diag against source (the original document text, for the
// highlighted source line; pass "" to omit it).
func (ef *ErrorFormatter) Format(diag Diagnostic, source string) string {
	var sb strings.Builder

	severity := string(diag.Severity)
	if ef.Color {
		switch diag.Severity {
		case SeverityError:
			severity = "\033[31;1merror\033[0m"
		case SeverityWarning:
			severity = "\033[33;1mwarning\033[0m"
		case SeverityInfo:
			severity = "\033[36;1minfo\033[0m"
		}
	}
	sb.WriteString(fmt.Sprintf("%s[%s]: %s\n", severity, diag.Code, diag.Message))
	sb.WriteString(fmt.Sprintf(" --> %s:%d:%d\n", diag.Position.File, diag.Position.Line, diag.Position.Column))

	if source != "" && diag.Position.Line > 0 {
		lines := strings.Split(source, "\n")
		if diag.Position.Line <= len(lines) {
			sb.WriteString(fmt.Sprintf("%4d | ", diag.Position.Line))
			sb.WriteString(lines[diag.Position.Line-1] + "\n")
			sb.WriteString("     | ")
			if diag.Position.Column > 0 {
				sb.WriteString(strings.Repeat(" ", diag.Position.Column-1))
				if ef.Color {
					sb.WriteString("\033[31;1m^\033[0m")
				} else {
					sb.WriteString("^")
				}
				if diag.Attribute != "" {
					sb.WriteString(strings.Repeat("~", len(diag.Attribute)))
				}
			}
			sb.WriteString("\n")
		}
	}

	if len(diag.Hints) > 0 {
		sb.WriteString("     |\n")
		for _, hint := range diag.Hints {
			sb.WriteString("     = help: " + hint + "\n")
		}
	}
	if diag.SpecRef != "" {
		sb.WriteString("     = note: see " + diag.SpecRef + "\n")
	}
	for _, rel := range diag.Related {
		sb.WriteString(fmt.Sprintf("\n     %s\n", rel.Label))
		sb.WriteString(fmt.Sprintf("      --> %s:%d:%d\n", rel.Position.File, rel.Position.Line, rel.Position.Column))
	}

	return sb.String()
}
