// Package materialize implements the Schema-Aware Materializer (spec.md
// §4.H): given a schema and a Selection of optional paths and choice
// alternatives to realize, it builds a valid XML instance document.
package materialize

import (
	"github.com/beevik/etree"

	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// emergencyDescentBudget is how many levels past maxDepth the builder will
// still unfold a required element before giving up on that branch
// (spec.md §4.H rule 6).
const emergencyDescentBudget = 2

type builder struct {
	schema   *model.Schema
	sel      *Selection
	maxDepth int
}

// Build constructs a pretty-printed XML document rooted at the top-level
// element named rootName, realizing every structurally required
// element/attribute plus whatever sel additionally asks for, down to
// maxDepth (with a bounded emergency descent for required content beyond
// it).
func Build(schema *model.Schema, rootName string, sel *Selection, maxDepth int) (*etree.Document, error) {
	qn := model.QName{Namespace: schema.TargetNamespace, Local: rootName}
	decl, ok := schema.Elements[qn]
	if !ok {
		return nil, &Error{Path: "/" + rootName, Reason: "no top-level element declaration with this name"}
	}

	b := &builder{schema: schema, sel: sel, maxDepth: maxDepth}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(rootName)
	if schema.TargetNamespace != "" {
		root.CreateAttr("xmlns", schema.TargetNamespace)
	}
	budget := 0
	if maxDepth == 1 {
		budget = emergencyDescentBudget
	}
	if err := b.fillElement(root, xsdpath.Root(rootName), decl.TypeRef, 1, budget); err != nil {
		return nil, err
	}
	doc.Indent(2)
	return doc, nil
}

// fillElement populates elem (already created at path, at the given depth)
// according to its resolved type: attributes, text content, and — for
// element-only/mixed content — its particle tree.
func (b *builder) fillElement(elem *etree.Element, path xsdpath.Path, typeRef model.QName, depth, descentBudget int) error {
	typ, err := b.schema.ResolveType(typeRef)
	if err != nil {
		return &Error{Path: string(path), Reason: err.Error()}
	}

	switch t := typ.(type) {
	case *model.SimpleType:
		elem.SetText(leafValue(b.schema, typeRef))
	case *model.ComplexType:
		for _, a := range b.schema.InheritedAttributes(t) {
			if a.Use == model.Prohibited {
				continue
			}
			attrPath := path.Attr(a.Name.Local)
			if a.Use != model.Required && !b.sel.Includes(attrPath) {
				continue
			}
			elem.CreateAttr(a.Name.Local, leafValue(b.schema, a.TypeRef))
		}
		switch t.Content {
		case model.SimpleContentModel:
			elem.SetText(leafValue(b.schema, t.SimpleBase))
		case model.ElementOnly, model.Mixed:
			if t.Particle != nil {
				return b.fillParticle(elem, t.Particle, path, depth, descentBudget, false)
			}
		}
	}
	return nil
}

// fillParticle descends a content particle tree, appending element
// children to parent. force overrides normal required/selected gating for
// the particles directly inside a chosen Choice alternative, since picking
// that alternative means realizing it.
func (b *builder) fillParticle(parent *etree.Element, p model.Particle, owner xsdpath.Path, depth, descentBudget int, force bool) error {
	switch v := p.(type) {
	case nil:
		return nil
	case *model.Sequence:
		for _, child := range v.Particles {
			if err := b.fillParticle(parent, child, owner, depth, descentBudget, force); err != nil {
				return err
			}
		}
	case *model.All:
		for _, child := range v.Particles {
			if err := b.fillParticle(parent, child, owner, depth, descentBudget, force); err != nil {
				return err
			}
		}
	case *model.Choice:
		chosen, ok := b.chooseBranch(v, owner)
		if !ok {
			return nil
		}
		return b.fillParticle(parent, chosen, owner, depth, descentBudget, true)
	case *model.ElementParticle:
		return b.fillElementParticle(parent, v, owner, depth, descentBudget, force)
	}
	return nil
}

func (b *builder) fillElementParticle(parent *etree.Element, v *model.ElementParticle, owner xsdpath.Path, depth, descentBudget int, force bool) error {
	childPath := owner.Child(v.Name)
	required := force || v.MinOcc >= 1
	if !required && !b.sel.Includes(childPath) {
		return nil
	}

	childDepth := depth + 1
	budget := descentBudget
	switch {
	case childDepth > b.maxDepth:
		if !required || budget <= 0 {
			return nil
		}
		budget--
	case childDepth == b.maxDepth:
		budget = emergencyDescentBudget
	}

	child := parent.CreateElement(v.Name)
	return b.fillElement(child, childPath, v.TypeRef, childDepth, budget)
}

// chooseBranch picks the lowest-indexed Choice alternative whose
// representative path is selected, falling back to the first alternative
// (spec.md §4.H rule 5).
func (b *builder) chooseBranch(v *model.Choice, owner xsdpath.Path) (model.Particle, bool) {
	for _, p := range v.Particles {
		if rp, ok := representativePath(p, owner); ok && b.sel.Includes(rp) {
			return p, true
		}
	}
	if len(v.Particles) > 0 {
		return v.Particles[0], true
	}
	return nil, false
}

func representativePath(p model.Particle, owner xsdpath.Path) (xsdpath.Path, bool) {
	switch v := p.(type) {
	case *model.ElementParticle:
		return owner.Child(v.Name), true
	case *model.Sequence:
		for _, child := range v.Particles {
			if rp, ok := representativePath(child, owner); ok {
				return rp, true
			}
		}
	case *model.All:
		for _, child := range v.Particles {
			if rp, ok := representativePath(child, owner); ok {
				return rp, true
			}
		}
	case *model.Choice:
		for _, child := range v.Particles {
			if rp, ok := representativePath(child, owner); ok {
				return rp, true
			}
		}
	}
	return "", false
}
