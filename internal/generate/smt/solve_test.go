package smt

import (
	"bytes"
	"testing"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/enumerate"
	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

func loadSchema(t *testing.T, xsd string) *model.Schema {
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

const choiceSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="order" type="orderType"/>
  <xs:complexType name="orderType">
    <xs:sequence>
      <xs:element name="item" type="xs:string"/>
      <xs:choice>
        <xs:element name="cash" type="xs:string"/>
        <xs:element name="card" type="xs:string"/>
      </xs:choice>
      <xs:element name="note" type="xs:string" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func TestSolveRequiringOneAlternativeForcesItAndExcludesTheOther(t *testing.T) {
	s := loadSchema(t, choiceSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sol, err := Solve(ground, cons, "/order", Request{Require: []xsdpath.Path{"/order/card"}})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sol.Assignment["/order/card"] {
		t.Error("expected /order/card present")
	}
	if sol.Assignment["/order/cash"] {
		t.Error("expected /order/cash absent (mutually exclusive choice)")
	}
	if !sol.Assignment["/order"] || !sol.Assignment["/order/item"] {
		t.Error("expected root and required item present")
	}
	if sol.Assignment["/order/note"] {
		t.Error("did not request /order/note; expected absent")
	}
}

func TestSolveDefaultsUndecidedChoiceToFirstAlternative(t *testing.T) {
	s := loadSchema(t, choiceSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sol, err := Solve(ground, cons, "/order", Request{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sol.Assignment["/order/cash"] {
		t.Error("expected the choice to default to its first alternative, cash")
	}
	if sol.Assignment["/order/card"] {
		t.Error("expected card absent when cash was chosen by default")
	}
}

const requiredChainSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="a" type="aType"/>
  <xs:complexType name="aType">
    <xs:sequence>
      <xs:element name="b" type="bType"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="bType">
    <xs:sequence>
      <xs:element name="c" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func TestSolvePropagatesRequiredChain(t *testing.T) {
	s := loadSchema(t, requiredChainSchema)
	ground, cons, err := enumerate.Walk(s, 3)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sol, err := Solve(ground, cons, "/a", Request{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for _, p := range []xsdpath.Path{"/a", "/a/b", "/a/b/c"} {
		if !sol.Assignment[p] {
			t.Errorf("expected %s present (required chain)", p)
		}
	}
}

func TestSolveRejectsBothAlternativesAsInfeasible(t *testing.T) {
	s := loadSchema(t, choiceSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	_, err = Solve(ground, cons, "/order", Request{Require: []xsdpath.Path{"/order/cash", "/order/card"}})
	if err == nil {
		t.Fatal("expected an infeasible error when both choice alternatives are required")
	}
	smtErr, ok := err.(*Error)
	if !ok || smtErr.Kind != Infeasible {
		t.Fatalf("expected *smt.Error{Kind: Infeasible}, got %#v", err)
	}
}

func TestSolveRejectsUnknownRequiredPath(t *testing.T) {
	s := loadSchema(t, choiceSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if _, err := Solve(ground, cons, "/order", Request{Require: []xsdpath.Path{"/order/nonexistent"}}); err == nil {
		t.Fatal("expected an error for a path not in the ground set")
	}
}

func TestEncodeVarNameReplacesPathCharacters(t *testing.T) {
	if got, want := VarName(xsdpath.Path("/order/item@id")), "_order_item_AT_id"; got != want {
		t.Errorf("VarName = %q, want %q", got, want)
	}
}
