// Package validate implements the Validator (spec.md §6): given a schema
// and an XML instance document, it reports where the document departs
// from the schema's structure — missing required elements/attributes,
// unexpected elements/attributes, ambiguous or unsatisfied choice groups,
// and leaf values that fail their type's lexical space or enumeration.
//
// This is a structural validator, not a full XSD 1.1 content-model
// automaton: Sequence and All are walked by element name rather than by
// strict document order, and restriction facets beyond enumeration
// (pattern, length, min/maxInclusive, ...) are out of scope because
// internal/model's SimpleType does not carry them (see DESIGN.md). It is
// exact for the documents this tool itself produces, which is what the
// Materializer validity contract requires.
package validate

import (
	"fmt"
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcoverage/internal/model"
)

// Violation is one structural or lexical departure from the schema.
type Violation struct {
	Element   xmldom.Element
	Attribute string
	Code      string
	Message   string
	Expected  []string
	Actual    string
}

// Validator checks XML instance documents against one schema.
type Validator struct {
	schema *model.Schema
}

// New returns a Validator bound to schema.
func New(schema *model.Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate returns every violation found in doc, in the order encountered
// by a depth-first walk of the document. An empty result means doc
// conforms.
func (v *Validator) Validate(doc xmldom.Document) []Violation {
	if doc == nil {
		return []Violation{{Code: "xsd-null-document", Message: "document is nil"}}
	}
	root := doc.DocumentElement()
	if root == nil {
		return []Violation{{Code: "xsd-no-root", Message: "document has no root element"}}
	}

	name := string(root.LocalName())
	qn := model.QName{Namespace: v.schema.TargetNamespace, Local: name}
	decl, ok := v.schema.Elements[qn]
	if !ok {
		return []Violation{{
			Element: root, Code: "cvc-elt.1",
			Message: fmt.Sprintf("element '%s' is not declared as a top-level element", name),
			Actual:  name,
		}}
	}

	var out []Violation
	v.validateElement(root, decl.TypeRef, &out)
	return out
}

func (v *Validator) addf(out *[]Violation, elem xmldom.Element, attr, code, actual string, expected []string, format string, args ...any) {
	*out = append(*out, Violation{
		Element: elem, Attribute: attr, Code: code,
		Message: fmt.Sprintf(format, args...), Expected: expected, Actual: actual,
	})
}

func (v *Validator) validateElement(elem xmldom.Element, typeRef model.QName, out *[]Violation) {
	typ, err := v.schema.ResolveType(typeRef)
	if err != nil {
		v.addf(out, elem, "", "cvc-type.2", "", nil, "cannot resolve type for '%s': %v", elem.LocalName(), err)
		return
	}

	switch t := typ.(type) {
	case *model.SimpleType:
		v.validateLeaf(elem, typeRef, elementText(elem), out)
	case *model.ComplexType:
		v.validateAttributes(elem, t, out)
		switch t.Content {
		case model.Empty:
			if children := elem.Children(); children.Length() > 0 {
				v.addf(out, elem, "", "cvc-complex-type.2.1", "", nil,
					"element '%s' has empty content and may not have children", elem.LocalName())
			}
		case model.SimpleContentModel:
			v.validateLeaf(elem, t.SimpleBase, elementText(elem), out)
		case model.ElementOnly, model.Mixed:
			v.validateContent(elem, t.Particle, out)
		}
	}
}

func (v *Validator) validateAttributes(elem xmldom.Element, t *model.ComplexType, out *[]Violation) {
	declared := make(map[string]model.AttributeDecl)
	for _, a := range v.schema.InheritedAttributes(t) {
		declared[a.Name.Local] = a
	}

	present := make(map[string]string)
	attrs := elem.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		a := attrs.Item(i)
		if a == nil {
			continue
		}
		local := string(a.LocalName())
		present[local] = string(a.NodeValue())
		if _, ok := declared[local]; !ok {
			v.addf(out, elem, local, "cvc-complex-type.3.2.2", local, nil,
				"attribute '%s' is not declared on element '%s'", local, elem.LocalName())
		}
	}

	for local, decl := range declared {
		value, ok := present[local]
		switch decl.Use {
		case model.Required:
			if !ok {
				v.addf(out, elem, local, "cvc-complex-type.4", "", []string{local},
					"missing required attribute '%s' on element '%s'", local, elem.LocalName())
				continue
			}
		case model.Prohibited:
			if ok {
				v.addf(out, elem, local, "cvc-complex-type.3.2.2", local, nil,
					"attribute '%s' is prohibited on element '%s'", local, elem.LocalName())
			}
			continue
		}
		if ok {
			v.validateLeafValue(elem, local, decl.TypeRef, value, out)
		}
	}
}

// validateContent matches elem's actual child elements against p by local
// name. Sequence and All simply recurse into every sub-particle; Choice
// requires exactly one alternative's name to be present among the actual
// children. Any actual child not consumed by some ElementParticle is
// reported as unexpected.
func (v *Validator) validateContent(elem xmldom.Element, p model.Particle, out *[]Violation) {
	byName := make(map[string][]xmldom.Element)
	var order []string
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		c := children.Item(i)
		if c == nil {
			continue
		}
		name := string(c.LocalName())
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = append(byName[name], c)
	}

	consumed := make(map[string]bool)
	v.walkParticle(elem, p, byName, consumed, out)

	for _, name := range order {
		if !consumed[name] {
			for _, c := range byName[name] {
				v.addf(out, c, "", "cvc-complex-type.2.4.d", name, nil,
					"element '%s' is not expected inside '%s'", name, elem.LocalName())
			}
		}
	}
}

func (v *Validator) walkParticle(owner xmldom.Element, p model.Particle, byName map[string][]xmldom.Element, consumed map[string]bool, out *[]Violation) {
	switch part := p.(type) {
	case nil:
		return
	case *model.Sequence:
		for _, child := range part.Particles {
			v.walkParticle(owner, child, byName, consumed, out)
		}
	case *model.All:
		for _, child := range part.Particles {
			v.walkParticle(owner, child, byName, consumed, out)
		}
	case *model.Choice:
		v.walkChoice(owner, part, byName, consumed, out)
	case *model.ElementParticle:
		v.walkElementParticle(owner, part, byName, consumed, out)
	}
}

func (v *Validator) walkElementParticle(owner xmldom.Element, ep *model.ElementParticle, byName map[string][]xmldom.Element, consumed map[string]bool, out *[]Violation) {
	consumed[ep.Name] = true
	matches := byName[ep.Name]
	if len(matches) < ep.MinOcc {
		v.addf(out, owner, "", "cvc-complex-type.2.4.b", "", []string{ep.Name},
			"missing required element '%s' inside '%s'", ep.Name, owner.LocalName())
	}
	if ep.MaxOcc >= 0 && len(matches) > ep.MaxOcc {
		v.addf(out, owner, "", "cvc-complex-type.2.4.d", ep.Name, nil,
			"element '%s' occurs more than the allowed %d time(s) inside '%s'", ep.Name, ep.MaxOcc, owner.LocalName())
	}
	for _, m := range matches {
		v.validateElement(m, ep.TypeRef, out)
	}
}

func (v *Validator) walkChoice(owner xmldom.Element, c *model.Choice, byName map[string][]xmldom.Element, consumed map[string]bool, out *[]Violation) {
	var presentAlts []string
	names := make([]string, 0, len(c.Particles))
	for _, alt := range c.Particles {
		altNames := representativeNames(alt)
		names = append(names, altNames...)
		for _, n := range altNames {
			consumed[n] = true
			if len(byName[n]) > 0 {
				presentAlts = append(presentAlts, n)
			}
		}
	}

	switch {
	case len(presentAlts) == 0 && c.MinOcc >= 1:
		v.addf(out, owner, "", "cvc-complex-type.2.4.b", "", names,
			"missing required choice inside '%s': expected one of %s", owner.LocalName(), strings.Join(names, ", "))
	case len(presentAlts) > 1:
		v.addf(out, owner, "", "cvc-complex-type.2.4.d", strings.Join(presentAlts, ","), names,
			"only one of %s may be present inside '%s', found %s", strings.Join(names, ", "), owner.LocalName(), strings.Join(presentAlts, ", "))
	}

	for _, alt := range c.Particles {
		for _, n := range representativeNames(alt) {
			if len(byName[n]) > 0 {
				v.walkParticle(owner, alt, byName, consumed, out)
				break
			}
		}
	}
}

// representativeNames returns every element-particle local name reachable
// directly inside a Choice alternative, so a nested Sequence/All/Choice
// branch still contributes concrete names to choose among.
func representativeNames(p model.Particle) []string {
	switch v := p.(type) {
	case *model.ElementParticle:
		return []string{v.Name}
	case *model.Sequence:
		var out []string
		for _, child := range v.Particles {
			out = append(out, representativeNames(child)...)
		}
		return out
	case *model.All:
		var out []string
		for _, child := range v.Particles {
			out = append(out, representativeNames(child)...)
		}
		return out
	case *model.Choice:
		var out []string
		for _, child := range v.Particles {
			out = append(out, representativeNames(child)...)
		}
		return out
	}
	return nil
}

func (v *Validator) validateLeaf(elem xmldom.Element, typeRef model.QName, value string, out *[]Violation) {
	v.validateLeafValue(elem, "", typeRef, value, out)
}

// validateLeafValue checks value against typeRef's builtin lexical space
// and every named SimpleType's enumeration facet along its restriction
// chain (mirroring internal/materialize's leafValue resolution). attr is
// empty for element text, or the attribute's local name.
func (v *Validator) validateLeafValue(elem xmldom.Element, attr string, typeRef model.QName, value string, out *[]Violation) {
	builtinLocal := typeRef.Local
	visited := map[model.QName]bool{}
	qn := typeRef
	for !visited[qn] {
		visited[qn] = true
		st, ok := v.schema.Types[qn].(*model.SimpleType)
		if !ok {
			break
		}
		if len(st.Enumeration) > 0 {
			allowed := false
			for _, e := range st.Enumeration {
				if e == value {
					allowed = true
					break
				}
			}
			if !allowed {
				v.addf(out, elem, attr, "cvc-enumeration-valid", value, st.Enumeration,
					"value '%s' is not in enumeration %v", value, st.Enumeration)
				return
			}
		}
		builtinLocal = st.Base.Local
		if st.IsBuiltinRef {
			break
		}
		qn = st.Base
	}

	if bt := GetBuiltinType(builtinLocal); bt != nil {
		if err := bt.Validator(value); err != nil {
			v.addf(out, elem, attr, "cvc-datatype-valid.1", value, nil, "%v", err)
		}
	}
}

func elementText(elem xmldom.Element) string {
	var sb strings.Builder
	nodes := elem.ChildNodes()
	for i := uint(0); i < nodes.Length(); i++ {
		if n := nodes.Item(i); n != nil && n.NodeType() == 3 {
			sb.WriteString(string(n.NodeValue()))
		}
	}
	return strings.TrimSpace(sb.String())
}
