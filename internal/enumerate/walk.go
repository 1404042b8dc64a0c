// Package enumerate implements the Path Enumerator and Constraint Extractor
// (spec.md §4.B, §4.C): a depth-bounded walk of a schema's particle trees
// that produces the GroundSet and ConstraintSet every other subsystem reads.
package enumerate

import (
	"sort"

	"github.com/agentflare-ai/xsdcoverage/internal/model"
	"github.com/agentflare-ai/xsdcoverage/internal/xsdpath"
)

// visitKey is the cycle guard spec.md §4.B requires: a (current-path,
// type-qname, depth) triple that, once entered, is never re-entered.
type visitKey struct {
	path  xsdpath.Path
	typ   model.QName
	depth int
}

type walker struct {
	schema   *model.Schema
	maxDepth int
	ground   *xsdpath.GroundSet
	cons     *xsdpath.ConstraintSet
	seen     map[visitKey]bool
}

// Walk enumerates every element and attribute path reachable from schema's
// top-level element declarations, down to maxDepth, and extracts the
// parent/required/choice constraints that hold between them.
func Walk(schema *model.Schema, maxDepth int) (*xsdpath.GroundSet, *xsdpath.ConstraintSet, error) {
	w := &walker{
		schema:   schema,
		maxDepth: maxDepth,
		ground:   xsdpath.NewGroundSet(),
		cons:     xsdpath.NewConstraintSet(),
		seen:     make(map[visitKey]bool),
	}

	roots := make([]*model.ElementDecl, 0, len(schema.Elements))
	for _, decl := range schema.Elements {
		roots = append(roots, decl)
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Name.Local != roots[j].Name.Local {
			return roots[i].Name.Local < roots[j].Name.Local
		}
		return roots[i].Name.Namespace < roots[j].Name.Namespace
	})

	for _, decl := range roots {
		if _, err := w.visitElement(nil, 0, decl.Name.Local, decl.TypeRef); err != nil {
			return nil, nil, err
		}
	}
	return w.ground, w.cons, nil
}

// visitElement emits the path of one element particle and, if its depth
// doesn't exceed maxDepth, recurses into its type to emit attribute paths
// and walk its content particle.
func (w *walker) visitElement(parent *xsdpath.Path, currentDepth int, name string, typeRef model.QName) (xsdpath.Path, error) {
	childDepth := currentDepth + 1
	var childPath xsdpath.Path
	if parent == nil {
		childPath = xsdpath.Root(name)
	} else {
		childPath = parent.Child(name)
	}

	w.ground.AddElement(childPath)
	if parent != nil {
		w.cons.SetParent(childPath, *parent)
	}

	if childDepth > w.maxDepth {
		return childPath, nil
	}
	if childDepth == w.maxDepth {
		w.cons.Recursive[childPath] = true
	}

	typ, err := w.schema.ResolveType(typeRef)
	if err != nil {
		return childPath, &Error{Path: string(childPath), Reason: err.Error()}
	}

	key := visitKey{path: childPath, typ: typeRef, depth: childDepth}
	if w.seen[key] {
		return childPath, nil
	}
	w.seen[key] = true

	ct, ok := typ.(*model.ComplexType)
	if !ok {
		// SimpleType (including built-ins): a text-only leaf, nothing further
		// to unfold.
		return childPath, nil
	}

	for _, a := range w.schema.InheritedAttributes(ct) {
		if a.Use == model.Prohibited {
			continue
		}
		attrPath := childPath.Attr(a.Name.Local)
		w.ground.AddAttribute(attrPath)
		w.cons.SetParent(attrPath, childPath)
		if a.Use == model.Required {
			w.cons.AddRequired(childPath, attrPath)
		}
	}

	if ct.Particle != nil && (ct.Content == model.ElementOnly || ct.Content == model.Mixed) && childDepth < w.maxDepth {
		if err := w.walkParticle(ct.Particle, childPath, childDepth, false); err != nil {
			return childPath, err
		}
	}
	return childPath, nil
}

// walkParticle descends a content particle tree without extending the
// current path (Sequence/Choice/All are not path nodes; spec.md §3).
// insideChoice suppresses required-pair recording for elements that are
// immediate alternatives of a Choice, since their presence is governed by
// the choice group's exactly-one-of constraint, not an individual minOccurs.
func (w *walker) walkParticle(p model.Particle, owner xsdpath.Path, ownerDepth int, insideChoice bool) error {
	switch v := p.(type) {
	case nil:
		return nil
	case *model.Sequence:
		for _, child := range v.Particles {
			if err := w.walkParticle(child, owner, ownerDepth, insideChoice); err != nil {
				return err
			}
		}
	case *model.All:
		for _, child := range v.Particles {
			if err := w.walkParticle(child, owner, ownerDepth, insideChoice); err != nil {
				return err
			}
		}
	case *model.Choice:
		var alternatives []xsdpath.Path
		for _, child := range v.Particles {
			if ep, ok := child.(*model.ElementParticle); ok {
				alternatives = append(alternatives, owner.Child(ep.Name))
			} else if rep, ok := representativePath(child, owner); ok {
				alternatives = append(alternatives, rep)
			}
			if err := w.walkParticle(child, owner, ownerDepth, true); err != nil {
				return err
			}
		}
		if len(alternatives) > 0 {
			w.cons.AddChoiceGroup(owner, alternatives)
		}
	case *model.ElementParticle:
		childPath, err := w.visitElement(&owner, ownerDepth, v.Name, v.TypeRef)
		if err != nil {
			return err
		}
		if v.MinOcc >= 1 && !insideChoice {
			w.cons.AddRequired(owner, childPath)
		}
	}
	return nil
}

// representativePath finds the path of the first element particle nested
// inside a non-Element Choice alternative (a bare Sequence/All/Choice
// branch), so the choice group still has a concrete path to key its
// exactly-one-of constraint and the materializer's branch selection on.
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
