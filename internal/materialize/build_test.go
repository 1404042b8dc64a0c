package materialize

import (
	"bytes"
	"testing"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

func parseSchema(t *testing.T, xsd string) *model.Schema {
	t.Helper()
	doc, err := xmldom.Decode(bytes.NewReader([]byte(xsd)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s, err := model.Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return s
}

const orderSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="order" type="orderType"/>
  <xs:complexType name="orderType">
    <xs:sequence>
      <xs:element name="item" type="xs:string"/>
      <xs:element name="note" type="xs:string" minOccurs="0"/>
    </xs:sequence>
    <xs:attribute name="id" type="xs:string" use="required"/>
    <xs:attribute name="draft" type="xs:boolean" use="optional"/>
  </xs:complexType>
</xs:schema>`

func TestBuildIncludesOnlyRequiredByDefault(t *testing.T) {
	s := parseSchema(t, orderSchema)
	doc, err := Build(s, "order", NewSelection(), 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := doc.Root()
	if root.Tag != "order" {
		t.Fatalf("root tag = %s, want order", root.Tag)
	}
	if root.SelectAttr("id") == nil {
		t.Error("expected required attribute id")
	}
	if root.SelectAttr("draft") != nil {
		t.Error("did not expect optional attribute draft")
	}
	if root.SelectElement("item") == nil {
		t.Error("expected required child item")
	}
	if root.SelectElement("note") != nil {
		t.Error("did not expect optional child note")
	}
}

func TestBuildHonorsSelectionForOptionals(t *testing.T) {
	s := parseSchema(t, orderSchema)
	sel := NewSelection(xsdpath.Path("/order@draft"), xsdpath.Path("/order/note"))
	doc, err := Build(s, "order", sel, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := doc.Root()
	if root.SelectAttr("draft") == nil {
		t.Error("expected selected optional attribute draft")
	}
	if root.SelectElement("note") == nil {
		t.Error("expected selected optional child note")
	}
}

const choiceSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="payment" type="paymentType"/>
  <xs:complexType name="paymentType">
    <xs:choice>
      <xs:element name="cash" type="xs:string"/>
      <xs:element name="card" type="xs:string"/>
    </xs:choice>
  </xs:complexType>
</xs:schema>`

func TestBuildChoicePicksSelectedAlternative(t *testing.T) {
	s := parseSchema(t, choiceSchema)
	sel := NewSelection(xsdpath.Path("/payment/card"))
	doc, err := Build(s, "payment", sel, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := doc.Root()
	if root.SelectElement("card") == nil {
		t.Error("expected the selected alternative card")
	}
	if root.SelectElement("cash") != nil {
		t.Error("did not expect the unselected alternative cash")
	}
}

func TestBuildChoiceDefaultsToFirstAlternative(t *testing.T) {
	s := parseSchema(t, choiceSchema)
	doc, err := Build(s, "payment", NewSelection(), 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := doc.Root()
	if root.SelectElement("cash") == nil {
		t.Error("expected the first alternative cash when nothing is selected")
	}
}

const recursiveSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="node" type="nodeType"/>
  <xs:complexType name="nodeType">
    <xs:sequence>
      <xs:element name="node" type="nodeType"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func TestBuildEmergencyDescentIsBounded(t *testing.T) {
	s := parseSchema(t, recursiveSchema)
	// node is required at every level, so the builder must keep unfolding
	// past maxDepth via the emergency-descent budget, then stop.
	doc, err := Build(s, "node", NewSelection(), 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	depth := 0
	elem := doc.Root()
	for elem != nil {
		depth++
		elem = elem.SelectElement("node")
	}
	// maxDepth=1 plus a 2-level emergency descent budget bounds the total
	// unfolding; it must terminate rather than recurse forever.
	if depth > 1+emergencyDescentBudget {
		t.Errorf("unfolded %d levels, want at most %d", depth, 1+emergencyDescentBudget)
	}
	if depth < 1 {
		t.Error("expected at least the root level to be built")
	}
}

func TestBuildUnknownRootElementFails(t *testing.T) {
	s := parseSchema(t, orderSchema)
	if _, err := Build(s, "nonexistent", NewSelection(), 2); err == nil {
		t.Fatal("expected an error for an undeclared root element")
	}
}
