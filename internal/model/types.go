// Package model implements the Schema Model & Loader: it parses an XSD
// document (with xs:import/xs:include) into an in-memory, immutable schema
// that the rest of the toolchain walks to enumerate paths, measure coverage
// and materialize instances.
//
// The design follows the teacher's tagged-variant style (schema.go in
// github.com/agentflare-ai/go-xsd): Type and Particle are interfaces with a
// closed set of concrete implementations, switched on with type assertions
// rather than an inheritance hierarchy.
package model

import "fmt"

// XSDNamespace is the XML Schema namespace URI. The loader auto-detects
// whichever prefix a document binds it to ("xs", "xsd", or none).
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// QName is a namespace-qualified name.
type QName struct {
	Namespace string
	Local     string
}

func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Namespace, q.Local)
}

// ContentModel tags the shape of a complex type's content, per spec §3.
type ContentModel int

const (
	// Empty types carry neither text nor children.
	Empty ContentModel = iota
	// SimpleContentModel types carry type-valid text and no children.
	SimpleContentModel
	// ElementOnly types carry only child elements.
	ElementOnly
	// Mixed types carry both text and child elements.
	Mixed
)

func (c ContentModel) String() string {
	switch c {
	case Empty:
		return "empty"
	case SimpleContentModel:
		return "simpleContent"
	case ElementOnly:
		return "element-only"
	case Mixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// AttributeUse mirrors the XSD use values on xs:attribute.
type AttributeUse string

const (
	Required   AttributeUse = "required"
	Optional   AttributeUse = "optional"
	Prohibited AttributeUse = "prohibited"
)

// AttributeDecl is a declared attribute on a complex type.
type AttributeDecl struct {
	Name    QName
	TypeRef QName
	Use     AttributeUse
}

// Type is implemented by SimpleType and ComplexType.
type Type interface {
	Name() QName
	isType()
}

// SimpleType carries restriction facets over a base type (built-in or
// another named simple type). Union and list simple types are parsed but not
// separately modeled: general XSD 1.1 value-space validation, which is where
// they matter, is out of scope (spec.md Non-goals).
type SimpleType struct {
	QName        QName
	Base         QName
	Enumeration  []string // restriction/enumeration values, in document order
	IsBuiltinRef bool     // Base names a built-in XSD type rather than another SimpleType
}

func (st *SimpleType) Name() QName { return st.QName }
func (*SimpleType) isType()        {}

// ComplexType is a named or anonymous complex type: its content tag, the
// particle tree (for element-only/mixed content), a simple-content base (for
// simpleContent), its own attributes, and the xs:extension base whose
// attributes it inherits (see Schema.InheritedAttributes).
type ComplexType struct {
	QName      QName
	Content    ContentModel
	Particle   Particle        // root particle for element-only/mixed; nil otherwise
	SimpleBase QName           // base type for simpleContent
	Attributes []AttributeDecl // declared directly on this type (not inherited)
	ExtBase    QName           // xs:extension base (complexContent); zero QName if none
}

func (ct *ComplexType) Name() QName { return ct.QName }
func (*ComplexType) isType()        {}

// Particle is implemented by Element, Sequence, Choice and All, per spec §3.
type Particle interface {
	MinOccurs() int
	MaxOccurs() int
	isParticle()
}

// ElementParticle is an element particle: a name, a reference to its type, and
// occurrence bounds.
type ElementParticle struct {
	Name    string // local name
	TypeRef QName
	MinOcc  int
	MaxOcc  int // -1 means unbounded
}

func (e *ElementParticle) MinOccurs() int { return e.MinOcc }
func (e *ElementParticle) MaxOccurs() int { return e.MaxOcc }
func (*ElementParticle) isParticle()      {}

// Sequence groups particles that must occur in declared order.
type Sequence struct {
	Particles []Particle
	MinOcc    int
	MaxOcc    int
}

func (s *Sequence) MinOccurs() int { return s.MinOcc }
func (s *Sequence) MaxOccurs() int { return s.MaxOcc }
func (*Sequence) isParticle()      {}

// Choice groups particles of which exactly one is realized per occurrence.
type Choice struct {
	Particles []Particle
	MinOcc    int
	MaxOcc    int
}

func (c *Choice) MinOccurs() int { return c.MinOcc }
func (c *Choice) MaxOccurs() int { return c.MaxOcc }
func (*Choice) isParticle()      {}

// All groups particles that may occur in any order, each at most once.
type All struct {
	Particles []Particle
	MinOcc    int
	MaxOcc    int
}

func (a *All) MinOccurs() int { return a.MinOcc }
func (a *All) MaxOccurs() int { return a.MaxOcc }
func (*All) isParticle()      {}

// ElementDecl is a top-level (global) element declaration: the root of one
// enumeration walk.
type ElementDecl struct {
	Name    QName
	TypeRef QName
}

// Import records an xs:import or xs:include directive.
type Import struct {
	Namespace      string
	SchemaLocation string
	IsInclude      bool
}
