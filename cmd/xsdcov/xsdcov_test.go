package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testOrderXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="order" type="orderType"/>
  <xs:complexType name="orderType">
    <xs:sequence>
      <xs:element name="item" type="xs:string"/>
      <xs:element name="note" type="xs:string" minOccurs="0"/>
      <xs:choice>
        <xs:element name="cash" type="xs:string"/>
        <xs:element name="card" type="xs:string"/>
      </xs:choice>
    </xs:sequence>
    <xs:attribute name="id" type="xs:string" use="required"/>
    <xs:attribute name="draft" type="xs:boolean" use="optional"/>
  </xs:complexType>
</xs:schema>`

func writeTestSchema(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "order.xsd")
	if err := os.WriteFile(path, []byte(testOrderXSD), 0644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

func writeTestXML(t *testing.T, xml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	if err := os.WriteFile(path, []byte(xml), 0644); err != nil {
		t.Fatalf("write xml: %v", err)
	}
	return path
}

func TestRunCoverageReportsAllSectionsAndPercentages(t *testing.T) {
	schema := writeTestSchema(t)
	xml := writeTestXML(t, `<order id="1"><item>widget</item><cash>5.00</cash></order>`)

	opts := defaultCoverageOptions()
	opts.SchemaPath = schema
	opts.XMLPaths = []string{xml}

	result, err := RunCoverage(opts)
	if err != nil {
		t.Fatalf("RunCoverage: %v", err)
	}
	if len(result.ParseErrors) != 0 {
		t.Fatalf("unexpected parse errors: %v", result.ParseErrors)
	}
	for _, want := range []string{"Element coverage:", "Attribute coverage:", "Overall coverage:", "Unused paths:", "Warning: undefined paths:", "Used paths:"} {
		if !strings.Contains(result.Report, want) {
			t.Errorf("report missing section %q:\n%s", want, result.Report)
		}
	}
	if !strings.Contains(result.Report, "/order/note") {
		t.Errorf("expected /order/note listed as unused, got:\n%s", result.Report)
	}
}

func TestRunCoverageRecordsPerFileParseErrorsWithoutAbortingBatch(t *testing.T) {
	schema := writeTestSchema(t)
	good := writeTestXML(t, `<order id="1"><item>widget</item><cash>5.00</cash></order>`)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.xml")
	if err := os.WriteFile(bad, []byte("<not-closed>"), 0644); err != nil {
		t.Fatalf("write bad xml: %v", err)
	}

	opts := defaultCoverageOptions()
	opts.SchemaPath = schema
	opts.XMLPaths = []string{good, bad}

	result, err := RunCoverage(opts)
	if err != nil {
		t.Fatalf("RunCoverage: %v", err)
	}
	if len(result.ParseErrors) != 1 {
		t.Fatalf("expected exactly one parse error, got %v", result.ParseErrors)
	}
}

func TestRunGreedyWritesNamedFilesAndReachesTargetCoverage(t *testing.T) {
	schema := writeTestSchema(t)
	out := t.TempDir()

	opts := defaultGreedyOptions()
	opts.SchemaPath = schema
	opts.OutDir = out
	opts.MaxDepth = 3
	opts.MaxGenDepth = 3

	result, err := RunGreedy(opts)
	if err != nil {
		t.Fatalf("RunGreedy: %v", err)
	}
	if len(result.Files) == 0 {
		t.Fatal("expected at least one generated file")
	}
	for i, f := range result.Files {
		want := filepath.Join(out, fmt.Sprintf("greedy_generated_%03d.xml", i+1))
		if f != want {
			t.Errorf("file %d: got %q, want %q", i, f, want)
		}
		if _, err := os.Stat(f); err != nil {
			t.Errorf("generated file missing: %v", err)
		}
	}
}

func TestRunSMTProducesSingleFileSatisfyingChoiceConstraint(t *testing.T) {
	schema := writeTestSchema(t)
	out := t.TempDir()

	opts := defaultSMTOptions()
	opts.SchemaPath = schema
	opts.OutDir = out
	opts.MaxDepth = 3

	result, err := RunSMT(opts)
	if err != nil {
		t.Fatalf("RunSMT: %v", err)
	}
	want := filepath.Join(out, "smt_generated_001.xml")
	if result.File != want {
		t.Errorf("got file %q, want %q", result.File, want)
	}
	data, err := os.ReadFile(result.File)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "<cash>") || strings.Contains(body, "<card>") {
		t.Errorf("expected exactly the first choice alternative present, got:\n%s", body)
	}
}

func TestRunPairwiseCoversEveryPairBeforeTerminating(t *testing.T) {
	schema := writeTestSchema(t)
	out := t.TempDir()

	opts := defaultPairwiseOptions()
	opts.SchemaPath = schema
	opts.OutDir = out
	opts.MaxDepth = 3

	result, err := RunPairwise(opts)
	if err != nil {
		t.Fatalf("RunPairwise: %v", err)
	}
	if result.Patterns == 0 {
		t.Fatal("expected at least one pattern")
	}
	if result.PairsTotal > 0 && result.PairsCovered != result.PairsTotal {
		t.Errorf("expected full pair coverage, got %d/%d", result.PairsCovered, result.PairsTotal)
	}
}

func TestRunValidateReportsSummaryCountsAndFirstError(t *testing.T) {
	schema := writeTestSchema(t)
	valid := writeTestXML(t, `<order id="1"><item>widget</item><cash>5.00</cash></order>`)
	invalid := writeTestXML(t, `<order><item>widget</item><cash>5.00</cash></order>`)

	opts := ValidateOptions{SchemaPath: schema, XMLPaths: []string{valid, invalid}}
	result, err := RunValidate(opts)
	if err != nil {
		t.Fatalf("RunValidate: %v", err)
	}
	if result.ValidCount != 1 || result.Invalid != 1 {
		t.Fatalf("expected 1 valid / 1 invalid, got %d/%d", result.ValidCount, result.Invalid)
	}
	for _, fr := range result.Files {
		if fr.Path == invalid && fr.FirstError == "" {
			t.Error("expected a first-error location for the invalid file")
		}
	}
}

func TestRunValidateWritesReportFile(t *testing.T) {
	schema := writeTestSchema(t)
	valid := writeTestXML(t, `<order id="1"><item>widget</item><cash>5.00</cash></order>`)
	reportPath := filepath.Join(t.TempDir(), "report.txt")

	opts := ValidateOptions{SchemaPath: schema, XMLPaths: []string{valid}, ReportPath: reportPath}
	if _, err := RunValidate(opts); err != nil {
		t.Fatalf("RunValidate: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected report file written: %v", err)
	}
	if !strings.Contains(string(data), "summary:") {
		t.Errorf("expected a summary line in the report, got:\n%s", data)
	}
}

func TestResolveRootNameAutoDetectsSoleTopLevelElement(t *testing.T) {
	schema := writeTestSchema(t)
	s, err := loadSchema(schema)
	if err != nil {
		t.Fatalf("loadSchema: %v", err)
	}
	name, err := resolveRootName(s, "")
	if err != nil {
		t.Fatalf("resolveRootName: %v", err)
	}
	if name != "order" {
		t.Errorf("expected auto-detected root 'order', got %q", name)
	}
}

func TestParseNamespaceFlagRejectsMalformedValue(t *testing.T) {
	if _, err := parseNamespaceFlag([]string{"no-equals-sign"}); err == nil {
		t.Fatal("expected an error for a namespace flag without '='")
	}
}
