package smt

import (
	"testing"

	"github.com/agentflare-ai/xsdcoverage/internal/enumerate"
)

func TestMaximizeRequestSolvesOneAlternativePerChoiceAndEverythingElsePresent(t *testing.T) {
	s := loadSchema(t, choiceSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	req := MaximizeRequest(ground, cons, 0)
	sol, err := Solve(ground, cons, "/order", req)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sol.Assignment["/order/cash"] || sol.Assignment["/order/card"] {
		t.Errorf("expected the first alternative present and the other absent, got cash=%v card=%v",
			sol.Assignment["/order/cash"], sol.Assignment["/order/card"])
	}
	if !sol.Assignment["/order/note"] {
		t.Error("expected the optional /order/note to be required present by the maximize objective")
	}
	covered, total := 0, 0
	for _, v := range sol.Assignment {
		total++
		if v {
			covered++
		}
	}
	if covered != total-1 {
		t.Errorf("expected every path but the excluded alternative present, got %d/%d", covered, total)
	}
}

func TestMaximizeRequestExcludesWholeSubtreeOfDiscardedAlternative(t *testing.T) {
	s := loadSchema(t, `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="order" type="orderType"/>
  <xs:complexType name="orderType">
    <xs:sequence>
      <xs:choice>
        <xs:element name="cash" type="xs:string"/>
        <xs:element name="card" type="cardType"/>
      </xs:choice>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="cardType">
    <xs:sequence>
      <xs:element name="number" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)
	ground, cons, err := enumerate.Walk(s, 3)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	req := MaximizeRequest(ground, cons, 0)
	sol, err := Solve(ground, cons, "/order", req)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Assignment["/order/card"] || sol.Assignment["/order/card/number"] {
		t.Error("expected the discarded alternative and its descendant excluded")
	}
}
