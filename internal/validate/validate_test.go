package validate

import (
	"bytes"
	"testing"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/model"
)

func loadSchema(t *testing.T, xsd string) *model.Schema {
	t.Helper()
	doc, err := xmldom.Decode(bytes.NewReader([]byte(xsd)))
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	s, err := model.Parse(doc)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func decodeDoc(t *testing.T, xml string) xmldom.Document {
	t.Helper()
	doc, err := xmldom.Decode(bytes.NewReader([]byte(xml)))
	if err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	return doc
}

const orderSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:test">
  <xs:element name="order" type="orderType"/>
  <xs:simpleType name="statusType">
    <xs:restriction base="xs:string">
      <xs:enumeration value="open"/>
      <xs:enumeration value="closed"/>
    </xs:restriction>
  </xs:simpleType>
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
    <xs:attribute name="status" type="statusType" use="optional"/>
  </xs:complexType>
</xs:schema>`

func TestValidateAcceptsConformingDocument(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<order id="1" status="open"><item>widget</item><cash>5.00</cash></order>`)
	v := New(s)
	violations := v.Validate(doc)
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}

func TestValidateReportsMissingRequiredAttribute(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<order><item>widget</item><cash>5.00</cash></order>`)
	v := New(s)
	violations := v.Validate(doc)
	found := false
	for _, vi := range violations {
		if vi.Code == "cvc-complex-type.4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing required attribute violation, got %+v", violations)
	}
}

func TestValidateReportsUnexpectedElement(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<order id="1"><item>widget</item><cash>5.00</cash><bogus>x</bogus></order>`)
	v := New(s)
	violations := v.Validate(doc)
	found := false
	for _, vi := range violations {
		if vi.Code == "cvc-complex-type.2.4.d" && vi.Actual == "bogus" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unexpected element violation for 'bogus', got %+v", violations)
	}
}

func TestValidateReportsAmbiguousChoice(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<order id="1"><item>widget</item><cash>5.00</cash><card>x</card></order>`)
	v := New(s)
	violations := v.Validate(doc)
	found := false
	for _, vi := range violations {
		if vi.Code == "cvc-complex-type.2.4.d" && vi.Message != "" && vi.Actual == "cash,card" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an ambiguous choice violation, got %+v", violations)
	}
}

func TestValidateReportsMissingChoice(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<order id="1"><item>widget</item></order>`)
	v := New(s)
	violations := v.Validate(doc)
	found := false
	for _, vi := range violations {
		if vi.Code == "cvc-complex-type.2.4.b" && len(vi.Expected) > 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing choice violation, got %+v", violations)
	}
}

func TestValidateReportsEnumerationViolation(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<order id="1" status="pending"><item>widget</item><cash>5.00</cash></order>`)
	v := New(s)
	violations := v.Validate(doc)
	found := false
	for _, vi := range violations {
		if vi.Code == "cvc-enumeration-valid" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an enumeration violation for status='pending', got %+v", violations)
	}
}

func TestValidateRejectsUndeclaredRootElement(t *testing.T) {
	s := loadSchema(t, orderSchema)
	doc := decodeDoc(t, `<bogus/>`)
	v := New(s)
	violations := v.Validate(doc)
	if len(violations) != 1 || violations[0].Code != "cvc-elt.1" {
		t.Fatalf("expected a single cvc-elt.1 violation, got %+v", violations)
	}
}

func TestValidateRejectsNilDocument(t *testing.T) {
	s := loadSchema(t, orderSchema)
	v := New(s)
	violations := v.Validate(nil)
	if len(violations) != 1 || violations[0].Code != "xsd-null-document" {
		t.Fatalf("expected a single xsd-null-document violation, got %+v", violations)
	}
}
