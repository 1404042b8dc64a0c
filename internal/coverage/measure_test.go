package coverage

import (
	"bytes"
	"testing"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

func decode(t *testing.T, xml string) xmldom.Document {
	t.Helper()
	doc, err := xmldom.Decode(bytes.NewReader([]byte(xml)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func groundSet(elems, attrs []xsdpath.Path) *xsdpath.GroundSet {
	g := xsdpath.NewGroundSet()
	for _, p := range elems {
		g.AddElement(p)
	}
	for _, p := range attrs {
		g.AddAttribute(p)
	}
	return g
}

func TestUsedPathsWalksElementsAndAttributes(t *testing.T) {
	doc := decode(t, `<order id="42"><item>widget</item><item>gadget</item></order>`)
	used, err := UsedPaths(doc)
	if err != nil {
		t.Fatalf("UsedPaths: %v", err)
	}
	if !used.E["/order"] || !used.E["/order/item"] {
		t.Errorf("got elements %v", used.SortedElements())
	}
	if !used.A["/order@id"] {
		t.Errorf("got attributes %v", used.SortedAttributes())
	}
}

func TestMeasureReportsUncoveredAndUndefined(t *testing.T) {
	ground := groundSet(
		[]xsdpath.Path{"/order", "/order/item", "/order/note"},
		[]xsdpath.Path{"/order@id", "/order@draft"},
	)
	doc := decode(t, `<order id="1" extra="x"><item>a</item></order>`)
	used, err := UsedPaths(doc)
	if err != nil {
		t.Fatalf("UsedPaths: %v", err)
	}
	report := Measure(ground, used)

	if report.Defined != 5 {
		t.Errorf("Defined = %d, want 5", report.Defined)
	}
	if report.Covered != 3 { // /order, /order/item, /order@id
		t.Errorf("Covered = %d, want 3", report.Covered)
	}
	wantUncoveredElems := []xsdpath.Path{"/order/note"}
	if len(report.UncoveredElements) != 1 || report.UncoveredElements[0] != wantUncoveredElems[0] {
		t.Errorf("UncoveredElements = %v, want %v", report.UncoveredElements, wantUncoveredElems)
	}
	if len(report.UncoveredAttributes) != 1 || report.UncoveredAttributes[0] != "/order@draft" {
		t.Errorf("UncoveredAttributes = %v, want [/order@draft]", report.UncoveredAttributes)
	}
	if len(report.Undefined) != 1 || report.Undefined[0] != "/order@extra" {
		t.Errorf("Undefined = %v, want [/order@extra]", report.Undefined)
	}
	if report.Percentage != 60 {
		t.Errorf("Percentage = %v, want 60", report.Percentage)
	}
}

func TestUnionMergesMultipleDocuments(t *testing.T) {
	doc1 := decode(t, `<order><item>a</item></order>`)
	doc2 := decode(t, `<order><note>n</note></order>`)
	u1, _ := UsedPaths(doc1)
	u2, _ := UsedPaths(doc2)
	merged := Union(u1, u2)
	if !merged.E["/order/item"] || !merged.E["/order/note"] {
		t.Errorf("Union missing a path: %v", merged.SortedElements())
	}
}

func TestUsedPathsRejectsNilDocument(t *testing.T) {
	if _, err := UsedPaths(nil); err == nil {
		t.Fatal("expected an error for a nil document")
	}
}
