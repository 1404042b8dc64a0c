package pairwise

import (
	"bytes"
	"fmt"
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

const testSchema = `<?xml version="1.0" encoding="UTF-8"?>
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

func TestExtractIdentifiesOptionalElementsAttributesAndChoiceGroups(t *testing.T) {
	s := loadSchema(t, testSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	items := Extract(ground, cons, nil)

	byPath := make(map[xsdpath.Path]Item)
	for _, it := range items {
		byPath[it.Path] = it
	}

	if _, ok := byPath["/order/note"]; !ok {
		t.Error("expected /order/note as an optional element item")
	}
	if _, ok := byPath["/order@draft"]; !ok {
		t.Error("expected /order@draft as an optional attribute item")
	}
	if _, ok := byPath["/order/item"]; ok {
		t.Error("/order/item is required, should not be an item")
	}
	if _, ok := byPath["/order@id"]; ok {
		t.Error("/order@id is required, should not be an item")
	}
	if _, ok := byPath["/order/cash"]; ok {
		t.Error("choice alternatives should not appear as standalone items")
	}
	if _, ok := byPath["/order/card"]; ok {
		t.Error("choice alternatives should not appear as standalone items")
	}

	var choiceItem *Item
	for i := range items {
		if items[i].Kind == ChoiceItem {
			choiceItem = &items[i]
		}
	}
	if choiceItem == nil {
		t.Fatal("expected a ChoiceItem for the cash/card choice group")
	}
	if len(choiceItem.Settings) != 2 {
		t.Fatalf("expected 2 settings on the choice item, got %d", len(choiceItem.Settings))
	}
}

func TestExtractTrimsPoolAboveCap(t *testing.T) {
	ground := xsdpath.NewGroundSet()
	cons := xsdpath.NewConstraintSet()
	root := xsdpath.Root("root")
	ground.AddElement(root)

	for i := 0; i < maxItems+50; i++ {
		p := root.Child(fmt.Sprintf("opt%03d", i))
		ground.AddElement(p)
		cons.SetParent(p, root)
	}

	items := Extract(ground, cons, nil)
	if len(items) != maxItems {
		t.Fatalf("expected pool trimmed to %d, got %d", maxItems, len(items))
	}
}

func TestBuildCoveringArrayCoversEveryPairOfSettings(t *testing.T) {
	items := []Item{
		{Path: "/a", Settings: []Setting{{}, {Path: "/a"}}},
		{Path: "/b", Settings: []Setting{{}, {Path: "/b"}}},
		{Path: "/c", Settings: []Setting{{Path: "/c1"}, {Path: "/c2"}, {Path: "/c3"}}},
	}
	ca := BuildCoveringArray(items)
	if len(ca.Rows) == 0 {
		t.Fatal("expected at least one row")
	}

	n := len(items)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for si := range items[i].Settings {
				for sj := range items[j].Settings {
					found := false
					for _, row := range ca.Rows {
						if row[i] == si && row[j] == sj {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("pair (item %d=%d, item %d=%d) never covered", i, si, j, sj)
					}
				}
			}
		}
	}
}

func TestBuildCoveringArraySingleItemCoversAllSettings(t *testing.T) {
	items := []Item{
		{Path: "/solo", Settings: []Setting{{}, {Path: "/solo/a"}, {Path: "/solo/b"}}},
	}
	ca := BuildCoveringArray(items)
	if len(ca.Rows) != 3 {
		t.Fatalf("expected one row per setting, got %d rows", len(ca.Rows))
	}
	seen := make(map[int]bool)
	for _, row := range ca.Rows {
		seen[row[0]] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all 3 settings exercised, got %d", len(seen))
	}
}

func TestBuildCoveringArrayEmptyPoolYieldsNoRows(t *testing.T) {
	ca := BuildCoveringArray(nil)
	if len(ca.Rows) != 0 {
		t.Fatalf("expected no rows for an empty item pool, got %d", len(ca.Rows))
	}
}

func TestTestPatternsTranslateRowsToSelections(t *testing.T) {
	items := []Item{
		{Path: "/note", Settings: []Setting{{}, {Path: "/note"}}},
		{Path: "/choice", Settings: []Setting{{Path: "/cash"}, {Path: "/card"}}},
	}
	ca := &CoveringArray{Items: items, Rows: []Row{{0, 1}, {1, 0}}}
	patterns := ca.TestPatterns()
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	if patterns[0].Selection.Includes("/note") {
		t.Error("row {0,1}: note excluded setting should not select /note")
	}
	if !patterns[0].Selection.Includes("/card") {
		t.Error("row {0,1}: expected /card selected")
	}
	if !patterns[1].Selection.Includes("/note") {
		t.Error("row {1,0}: note included setting should select /note")
	}
	if !patterns[1].Selection.Includes("/cash") {
		t.Error("row {1,0}: expected /cash selected")
	}
}

func TestEngineGenerateProducesOneDocumentPerRow(t *testing.T) {
	s := loadSchema(t, testSchema)
	ground, cons, err := enumerate.Walk(s, 2)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	e := &Engine{Schema: s, Ground: ground, Cons: cons, RootName: "order", MaxDepth: 2}
	docs, ca, err := e.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(docs) != len(ca.Rows) {
		t.Fatalf("expected %d documents, got %d", len(ca.Rows), len(docs))
	}
	if len(docs) == 0 {
		t.Fatal("expected at least one document")
	}
	for _, doc := range docs {
		if doc.Root() == nil || doc.Root().Tag != "order" {
			t.Fatal("expected a root <order> element in every generated document")
		}
	}
}
