package materialize

import (
	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// RealizedPaths computes the path set a Selection would materialize at the
// given depth, without building any XML. The generators score many
// candidate selections before committing to an actual document, and
// re-running the gating rules below against a GroundSet is far cheaper
// than building and re-walking an etree.Document for each candidate.
//
// This mirrors Build/fillElement/fillParticle's gating rules exactly; it is
// kept as a separate, etree-free walk rather than unified behind a generic
// sink because the corpus this tool is grounded on never reaches for
// generics to share two small, concretely-typed walks.
func RealizedPaths(schema *model.Schema, rootName string, sel *Selection, maxDepth int) (*xsdpath.GroundSet, error) {
	qn := model.QName{Namespace: schema.TargetNamespace, Local: rootName}
	decl, ok := schema.Elements[qn]
	if !ok {
		return nil, &Error{Path: "/" + rootName, Reason: "no top-level element declaration with this name"}
	}
	r := &realizer{schema: schema, sel: sel, maxDepth: maxDepth, out: xsdpath.NewGroundSet()}
	budget := 0
	if maxDepth == 1 {
		budget = emergencyDescentBudget
	}
	if err := r.element(xsdpath.Root(rootName), decl.TypeRef, 1, budget); err != nil {
		return nil, err
	}
	return r.out, nil
}

type realizer struct {
	schema   *model.Schema
	sel      *Selection
	maxDepth int
	out      *xsdpath.GroundSet
}

func (r *realizer) element(path xsdpath.Path, typeRef model.QName, depth, budget int) error {
	r.out.AddElement(path)
	typ, err := r.schema.ResolveType(typeRef)
	if err != nil {
		return &Error{Path: string(path), Reason: err.Error()}
	}
	ct, ok := typ.(*model.ComplexType)
	if !ok {
		return nil
	}
	for _, a := range r.schema.InheritedAttributes(ct) {
		if a.Use == model.Prohibited {
			continue
		}
		attrPath := path.Attr(a.Name.Local)
		if a.Use != model.Required && !r.sel.Includes(attrPath) {
			continue
		}
		r.out.AddAttribute(attrPath)
	}
	if ct.Particle != nil && (ct.Content == model.ElementOnly || ct.Content == model.Mixed) {
		return r.particle(ct.Particle, path, depth, budget, false)
	}
	return nil
}

func (r *realizer) particle(p model.Particle, owner xsdpath.Path, depth, budget int, force bool) error {
	switch v := p.(type) {
	case nil:
		return nil
	case *model.Sequence:
		for _, c := range v.Particles {
			if err := r.particle(c, owner, depth, budget, force); err != nil {
				return err
			}
		}
	case *model.All:
		for _, c := range v.Particles {
			if err := r.particle(c, owner, depth, budget, force); err != nil {
				return err
			}
		}
	case *model.Choice:
		chosen, ok := r.choose(v, owner)
		if !ok {
			return nil
		}
		return r.particle(chosen, owner, depth, budget, true)
	case *model.ElementParticle:
		return r.elementParticle(v, owner, depth, budget, force)
	}
	return nil
}

func (r *realizer) elementParticle(v *model.ElementParticle, owner xsdpath.Path, depth, budget int, force bool) error {
	childPath := owner.Child(v.Name)
	required := force || v.MinOcc >= 1
	if !required && !r.sel.Includes(childPath) {
		return nil
	}
	childDepth := depth + 1
	b := budget
	switch {
	case childDepth > r.maxDepth:
		if !required || b <= 0 {
			return nil
		}
		b--
	case childDepth == r.maxDepth:
		b = emergencyDescentBudget
	}
	return r.element(childPath, v.TypeRef, childDepth, b)
}

func (r *realizer) choose(v *model.Choice, owner xsdpath.Path) (model.Particle, bool) {
	for _, p := range v.Particles {
		if rp, ok := representativePath(p, owner); ok && r.sel.Includes(rp) {
			return p, true
		}
	}
	if len(v.Particles) > 0 {
		return v.Particles[0], true
	}
	return nil, false
}
