package diagnostic

import (
	"strings"
	"testing"

	"github.com/agentflare-ai/xsdcoverage/internal/validate"
)

func TestConvertMapsCodeAndSeverity(t *testing.T) {
	dc := NewDiagnosticConverter("order.xml")
	violations := []validate.Violation{
		{Code: "cvc-complex-type.4", Message: "missing required attribute 'id'", Expected: []string{"id"}},
	}
	diags := dc.Convert(violations)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Code != "E204" {
		t.Errorf("expected code E204, got %s", d.Code)
	}
	if d.Severity != SeverityError {
		t.Errorf("expected error severity, got %s", d.Severity)
	}
	if d.Position.File != "order.xml" {
		t.Errorf("expected file name stamped into position, got %q", d.Position.File)
	}
	if len(d.Hints) == 0 || !strings.Contains(d.Hints[0], "id") {
		t.Errorf("expected a hint mentioning the missing attribute, got %v", d.Hints)
	}
}

func TestConvertUnknownCodeFallsBackToGeneratedCode(t *testing.T) {
	dc := NewDiagnosticConverter("x.xml")
	diags := dc.Convert([]validate.Violation{{Code: "cvc-something.9.9"}})
	if diags[0].Code != "Ecvc-something_9_9" {
		t.Errorf("expected generated fallback code, got %s", diags[0].Code)
	}
}

func TestFormatProducesRustcStyleOutput(t *testing.T) {
	dc := NewDiagnosticConverter("order.xml")
	diags := dc.Convert([]validate.Violation{
		{Code: "cvc-enumeration-valid", Message: "value 'pending' is not in enumeration [open closed]", Expected: []string{"open", "closed"}},
	})
	ef := &ErrorFormatter{}
	out := ef.Format(diags[0], "")
	if !strings.Contains(out, "E209") {
		t.Errorf("expected formatted output to contain the code, got %q", out)
	}
	if !strings.Contains(out, "help:") {
		t.Errorf("expected a help hint line, got %q", out)
	}
	if !strings.Contains(out, "W3C XML Schema 1.1") {
		t.Errorf("expected a spec reference note, got %q", out)
	}
}

func TestFormatHighlightsSourceLine(t *testing.T) {
	dc := NewDiagnosticConverter("order.xml")
	diags := dc.Convert([]validate.Violation{{Code: "cvc-elt.1", Message: "element 'bogus' is not declared"}})
	diags[0].Position.Line = 1
	diags[0].Position.Column = 2
	ef := &ErrorFormatter{}
	out := ef.Format(diags[0], "<bogus/>")
	if !strings.Contains(out, "<bogus/>") {
		t.Errorf("expected the source line to be included, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected a caret pointing at the error column, got %q", out)
	}
}
