package model

import (
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// Schema is a compiled, immutable-after-load XSD schema: the set of named
// types and top-level element declarations a run of the enumerator,
// measurer and materializer all read without locking (spec.md §5).
type Schema struct {
	TargetNamespace string
	Elements        map[QName]*ElementDecl
	Types           map[QName]Type
	AttributeGroups map[QName]*attributeGroup
	Groups          map[QName]*group
	Imports         []Import
	// Opaque records namespaces referenced by xs:import whose schemaLocation
	// could not be opened locally. Elements/types in an opaque namespace are
	// treated as element-only with no declared children (spec.md §4.A).
	Opaque map[string]bool
}

// attributeGroup and group are resolved away during Parse; they never
// surface in the public Type/Particle trees the enumerator walks.
type attributeGroup struct {
	Name       QName
	Attributes []AttributeDecl
	Refs       []QName
}

type group struct {
	Name     QName
	Particle Particle
}

// groupRef records a group reference with its occurrence bounds; it does not
// implement Particle, and the parse pass does not use it. Group refs in the
// raw particle tree are groupRefParticle values, and attribute-group refs are
// AttributeDecls marked with the "__group_ref__" use, until resolveReferences
// inlines both.
type groupRef struct {
	Ref    QName
	MinOcc int
	MaxOcc int
}

func newSchema() *Schema {
	return &Schema{
		Elements:        make(map[QName]*ElementDecl),
		Types:           make(map[QName]Type),
		AttributeGroups: make(map[QName]*attributeGroup),
		Groups:          make(map[QName]*group),
		Opaque:          make(map[string]bool),
	}
}

// Parse parses an XSD schema from an already-decoded XML document. Imports
// and includes are not resolved here; use Loader.Load for that.
func Parse(doc xmldom.Document) (*Schema, error) {
	if doc == nil {
		return nil, &ParseError{Reason: "nil document"}
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, &ParseError{Reason: "document has no root element"}
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, &ParseError{Reason: "root element is not xs:schema"}
	}

	s := newSchema()
	s.TargetNamespace = string(root.GetAttribute("targetNamespace"))

	children := root.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		var err error
		switch string(child.LocalName()) {
		case "element":
			err = s.parseTopLevelElement(child)
		case "simpleType":
			err = s.parseTopLevelSimpleType(child)
		case "complexType":
			err = s.parseTopLevelComplexType(child)
		case "attributeGroup":
			err = s.parseAttributeGroup(child)
		case "group":
			err = s.parseNamedGroup(child)
		case "import":
			s.Imports = append(s.Imports, Import{
				Namespace:      string(child.GetAttribute("namespace")),
				SchemaLocation: string(child.GetAttribute("schemaLocation")),
			})
		case "include":
			s.Imports = append(s.Imports, Import{
				SchemaLocation: string(child.GetAttribute("schemaLocation")),
				IsInclude:      true,
			})
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.resolveReferences(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) qname(name string) QName {
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		// The document's namespace bindings already resolved element/attribute
		// nodes by the time go-xmldom hands them to us; for a type reference
		// string we only need the local part plus our own target namespace,
		// since every named type this tool resolves lives either in this
		// schema's target namespace or among the XSD built-ins (matched by
		// local name in builtin.go, independent of prefix).
		return QName{Namespace: s.TargetNamespace, Local: name[idx+1:]}
	}
	return QName{Namespace: s.TargetNamespace, Local: name}
}

func parseOccurs(elem xmldom.Element, attr string, def int) int {
	v := string(elem.GetAttribute(xmldom.DOMString(attr)))
	if v == "" {
		return def
	}
	if v == "unbounded" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func childrenOf(elem xmldom.Element) []xmldom.Element {
	var out []xmldom.Element
	nodes := elem.Children()
	for i := uint(0); i < nodes.Length(); i++ {
		if c := nodes.Item(i); c != nil && string(c.NamespaceURI()) == XSDNamespace {
			out = append(out, c)
		}
	}
	return out
}

func (s *Schema) parseTopLevelElement(elem xmldom.Element) error {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil // a bare ref at the top level is not legal XSD; ignore defensively
	}
	decl := &ElementDecl{Name: QName{Namespace: s.TargetNamespace, Local: name}}
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		decl.TypeRef = s.qname(typeName)
	} else if inline := s.parseInlineType(elem, name); inline != (QName{}) {
		decl.TypeRef = inline
	}
	s.Elements[decl.Name] = decl
	return nil
}

// parseInlineType parses an anonymous simpleType/complexType child of an
// element or attribute declaration, registers it under a synthetic name
// scoped to the declaring particle, and returns its QName.
func (s *Schema) parseInlineType(elem xmldom.Element, ownerHint string) QName {
	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "simpleType":
			qn := QName{Namespace: s.TargetNamespace, Local: "_anon_" + ownerHint}
			st := s.parseSimpleTypeBody(child, qn)
			s.Types[qn] = st
			return qn
		case "complexType":
			qn := QName{Namespace: s.TargetNamespace, Local: "_anon_" + ownerHint}
			ct := s.parseComplexTypeBody(child, qn)
			s.Types[qn] = ct
			return qn
		}
	}
	return QName{}
}

func (s *Schema) parseTopLevelSimpleType(elem xmldom.Element) error {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}
	qn := QName{Namespace: s.TargetNamespace, Local: name}
	s.Types[qn] = s.parseSimpleTypeBody(elem, qn)
	return nil
}

func (s *Schema) parseSimpleTypeBody(elem xmldom.Element, qn QName) *SimpleType {
	st := &SimpleType{QName: qn}
	for _, child := range childrenOf(elem) {
		if string(child.LocalName()) != "restriction" {
			// union/list simple types: general XSD 1.1 value-space validation
			// is out of scope (spec.md Non-goals); treat as an unconstrained
			// string-like type so the materializer still has something to do.
			continue
		}
		base := string(child.GetAttribute("base"))
		if base != "" {
			st.Base = s.qname(base)
			st.IsBuiltinRef = IsBuiltinType(localName(base))
		}
		for _, facet := range childrenOf(child) {
			if string(facet.LocalName()) == "enumeration" {
				st.Enumeration = append(st.Enumeration, string(facet.GetAttribute("value")))
			}
		}
	}
	return st
}

func localName(qname string) string {
	if idx := strings.IndexByte(qname, ':'); idx >= 0 {
		return qname[idx+1:]
	}
	return qname
}

func (s *Schema) parseTopLevelComplexType(elem xmldom.Element) error {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}
	qn := QName{Namespace: s.TargetNamespace, Local: name}
	s.Types[qn] = s.parseComplexTypeBody(elem, qn)
	return nil
}

func (s *Schema) parseComplexTypeBody(elem xmldom.Element, qn QName) *ComplexType {
	ct := &ComplexType{QName: qn, Content: Empty}
	mixed := string(elem.GetAttribute("mixed")) == "true"

	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "simpleContent":
			ct.Content = SimpleContentModel
			for _, sc := range childrenOf(child) {
				if string(sc.LocalName()) == "extension" {
					if base := string(sc.GetAttribute("base")); base != "" {
						ct.SimpleBase = s.qname(base)
					}
					ct.Attributes = append(ct.Attributes, s.parseAttributes(sc)...)
				} else if string(sc.LocalName()) == "restriction" {
					if base := string(sc.GetAttribute("base")); base != "" {
						ct.SimpleBase = s.qname(base)
					}
					ct.Attributes = append(ct.Attributes, s.parseAttributes(sc)...)
				}
			}
		case "complexContent":
			if string(child.GetAttribute("mixed")) == "true" {
				mixed = true
			}
			for _, cc := range childrenOf(child) {
				if string(cc.LocalName()) == "extension" || string(cc.LocalName()) == "restriction" {
					if base := string(cc.GetAttribute("base")); base != "" && string(cc.LocalName()) == "extension" {
						ct.ExtBase = s.qname(base)
					}
					if p := s.parseContentParticle(cc); p != nil {
						ct.Particle = p
						ct.Content = ElementOnly
					}
					ct.Attributes = append(ct.Attributes, s.parseAttributes(cc)...)
				}
			}
		case "sequence", "choice", "all":
			ct.Particle = s.parseModelGroup(child)
			ct.Content = ElementOnly
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ct.Particle = &groupRefParticle{Ref: s.qname(ref), MinOcc: parseOccurs(child, "minOccurs", 1), MaxOcc: parseOccurs(child, "maxOccurs", 1)}
				ct.Content = ElementOnly
			}
		case "attribute":
			if a := s.parseAttribute(child); a != nil {
				ct.Attributes = append(ct.Attributes, *a)
			}
		case "attributeGroup":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ct.Attributes = append(ct.Attributes, AttributeDecl{Name: s.qname(ref), Use: "__group_ref__"})
			}
		}
	}

	if mixed && ct.Content == ElementOnly {
		ct.Content = Mixed
	}
	return ct
}

func (s *Schema) parseContentParticle(elem xmldom.Element) Particle {
	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			return s.parseModelGroup(child)
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				return &groupRefParticle{Ref: s.qname(ref), MinOcc: parseOccurs(child, "minOccurs", 1), MaxOcc: parseOccurs(child, "maxOccurs", 1)}
			}
		}
	}
	return nil
}

// groupRefParticle implements Particle so it can sit in the raw tree
// returned by the parse pass; resolveReferences replaces every instance with
// the referenced group's actual particles before the schema is handed out.
type groupRefParticle struct {
	Ref    QName
	MinOcc int
	MaxOcc int
}

func (g *groupRefParticle) MinOccurs() int { return g.MinOcc }
func (g *groupRefParticle) MaxOccurs() int { return g.MaxOcc }
func (*groupRefParticle) isParticle()      {}

func (s *Schema) parseModelGroup(elem xmldom.Element) Particle {
	minOcc := parseOccurs(elem, "minOccurs", 1)
	maxOcc := parseOccurs(elem, "maxOccurs", 1)
	var particles []Particle
	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "element":
			particles = append(particles, s.parseElementParticle(child))
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				particles = append(particles, &groupRefParticle{Ref: s.qname(ref), MinOcc: parseOccurs(child, "minOccurs", 1), MaxOcc: parseOccurs(child, "maxOccurs", 1)})
			}
		case "sequence", "choice", "all":
			particles = append(particles, s.parseModelGroup(child))
		}
	}
	switch string(elem.LocalName()) {
	case "choice":
		return &Choice{Particles: particles, MinOcc: minOcc, MaxOcc: maxOcc}
	case "all":
		return &All{Particles: particles, MinOcc: minOcc, MaxOcc: maxOcc}
	default:
		return &Sequence{Particles: particles, MinOcc: minOcc, MaxOcc: maxOcc}
	}
}

func (s *Schema) parseElementParticle(elem xmldom.Element) Particle {
	minOcc := parseOccurs(elem, "minOccurs", 1)
	maxOcc := parseOccurs(elem, "maxOccurs", 1)
	if ref := string(elem.GetAttribute("ref")); ref != "" {
		rq := s.qname(ref)
		return &ElementParticle{Name: rq.Local, TypeRef: QName{}, MinOcc: minOcc, MaxOcc: maxOcc}
	}
	name := string(elem.GetAttribute("name"))
	ep := &ElementParticle{Name: name, MinOcc: minOcc, MaxOcc: maxOcc}
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		ep.TypeRef = s.qname(typeName)
	} else if inline := s.parseInlineType(elem, name); inline != (QName{}) {
		ep.TypeRef = inline
	}
	return ep
}

func (s *Schema) parseAttribute(elem xmldom.Element) *AttributeDecl {
	name := string(elem.GetAttribute("name"))
	ref := string(elem.GetAttribute("ref"))
	if name == "" && ref == "" {
		return nil
	}
	a := &AttributeDecl{Use: Optional}
	if name != "" {
		a.Name = QName{Namespace: s.TargetNamespace, Local: name}
	} else {
		a.Name = s.qname(ref)
	}
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		a.TypeRef = s.qname(typeName)
	} else if inline := s.parseInlineType(elem, name); inline != (QName{}) {
		a.TypeRef = inline
	}
	switch string(elem.GetAttribute("use")) {
	case "required":
		a.Use = Required
	case "prohibited":
		a.Use = Prohibited
	}
	return a
}

func (s *Schema) parseAttributes(elem xmldom.Element) []AttributeDecl {
	var out []AttributeDecl
	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "attribute":
			if a := s.parseAttribute(child); a != nil {
				out = append(out, *a)
			}
		case "attributeGroup":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				out = append(out, AttributeDecl{Name: s.qname(ref), Use: "__group_ref__"})
			}
		}
	}
	return out
}

func (s *Schema) parseAttributeGroup(elem xmldom.Element) error {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}
	qn := QName{Namespace: s.TargetNamespace, Local: name}
	ag := &attributeGroup{Name: qn}
	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "attribute":
			if a := s.parseAttribute(child); a != nil {
				ag.Attributes = append(ag.Attributes, *a)
			}
		case "attributeGroup":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ag.Refs = append(ag.Refs, s.qname(ref))
			}
		}
	}
	s.AttributeGroups[qn] = ag
	return nil
}

func (s *Schema) parseNamedGroup(elem xmldom.Element) error {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}
	qn := QName{Namespace: s.TargetNamespace, Local: name}
	g := &group{Name: qn}
	for _, child := range childrenOf(elem) {
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			g.Particle = s.parseModelGroup(child)
		}
	}
	s.Groups[qn] = g
	return nil
}

// resolveReferences inlines group refs and attribute-group refs; attributes
// inherited through xs:extension chains are not copied here but collected
// at lookup time by InheritedAttributes. Group-definition cycles that
// never pass through an element particle are a ParseError (spec.md §4.A);
// cycles through an element (the common recursive-type case) are fine and
// left to the depth-bounded enumerator.
func (s *Schema) resolveReferences() error {
	for qn, g := range s.Groups {
		visited := map[QName]bool{qn: true}
		resolved, err := s.resolveParticle(g.Particle, visited)
		if err != nil {
			return err
		}
		g.Particle = resolved
	}
	for _, t := range s.Types {
		ct, ok := t.(*ComplexType)
		if !ok {
			continue
		}
		resolved, err := s.resolveParticle(ct.Particle, map[QName]bool{})
		if err != nil {
			return err
		}
		ct.Particle = resolved
		ct.Attributes = s.resolveAttributes(ct.Attributes, map[QName]bool{})
	}
	for _, ag := range s.AttributeGroups {
		ag.Attributes = append(ag.Attributes, s.resolveAttributeGroupRefs(ag.Refs, map[QName]bool{})...)
		ag.Refs = nil
	}
	return nil
}

func (s *Schema) resolveParticle(p Particle, visited map[QName]bool) (Particle, error) {
	switch v := p.(type) {
	case nil:
		return nil, nil
	case *groupRefParticle:
		if visited[v.Ref] {
			return nil, newParseError(v.Ref.String(), "cyclic group definition (not through an element)")
		}
		g, ok := s.Groups[v.Ref]
		if !ok {
			return nil, newParseError(v.Ref.String(), "reference to undefined group")
		}
		next := map[QName]bool{v.Ref: true}
		for k := range visited {
			next[k] = true
		}
		inner, err := s.resolveParticle(g.Particle, next)
		if err != nil {
			return nil, err
		}
		switch ig := inner.(type) {
		case *Sequence:
			return &Sequence{Particles: ig.Particles, MinOcc: v.MinOcc, MaxOcc: v.MaxOcc}, nil
		case *Choice:
			return &Choice{Particles: ig.Particles, MinOcc: v.MinOcc, MaxOcc: v.MaxOcc}, nil
		case *All:
			return &All{Particles: ig.Particles, MinOcc: v.MinOcc, MaxOcc: v.MaxOcc}, nil
		default:
			return inner, nil
		}
	case *Sequence:
		resolved, err := s.resolveParticleList(v.Particles, visited)
		if err != nil {
			return nil, err
		}
		return &Sequence{Particles: resolved, MinOcc: v.MinOcc, MaxOcc: v.MaxOcc}, nil
	case *Choice:
		resolved, err := s.resolveParticleList(v.Particles, visited)
		if err != nil {
			return nil, err
		}
		return &Choice{Particles: resolved, MinOcc: v.MinOcc, MaxOcc: v.MaxOcc}, nil
	case *All:
		resolved, err := s.resolveParticleList(v.Particles, visited)
		if err != nil {
			return nil, err
		}
		return &All{Particles: resolved, MinOcc: v.MinOcc, MaxOcc: v.MaxOcc}, nil
	default:
		return p, nil
	}
}

func (s *Schema) resolveParticleList(particles []Particle, visited map[QName]bool) ([]Particle, error) {
	out := make([]Particle, 0, len(particles))
	for _, p := range particles {
		r, err := s.resolveParticle(p, visited)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Schema) resolveAttributes(attrs []AttributeDecl, visited map[QName]bool) []AttributeDecl {
	out := make([]AttributeDecl, 0, len(attrs))
	for _, a := range attrs {
		if a.Use == "__group_ref__" {
			if visited[a.Name] {
				continue
			}
			next := map[QName]bool{a.Name: true}
			for k := range visited {
				next[k] = true
			}
			out = append(out, s.resolveAttributeGroupRefs([]QName{a.Name}, next)...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *Schema) resolveAttributeGroupRefs(refs []QName, visited map[QName]bool) []AttributeDecl {
	var out []AttributeDecl
	for _, ref := range refs {
		ag, ok := s.AttributeGroups[ref]
		if !ok {
			continue
		}
		out = append(out, s.resolveAttributes(ag.Attributes, visited)...)
	}
	return out
}

// InheritedAttributes returns a complex type's own attributes plus those
// inherited (recursively) through xs:extension, as spec.md §4.B requires
// when emitting attribute paths.
func (s *Schema) InheritedAttributes(ct *ComplexType) []AttributeDecl {
	attrs := append([]AttributeDecl(nil), ct.Attributes...)
	base := ct.ExtBase
	visited := map[QName]bool{ct.QName: true}
	for base != (QName{}) && !visited[base] {
		visited[base] = true
		baseType, ok := s.Types[base]
		if !ok {
			break
		}
		baseCT, ok := baseType.(*ComplexType)
		if !ok {
			break
		}
		attrs = append(attrs, baseCT.Attributes...)
		base = baseCT.ExtBase
	}
	return attrs
}

// ResolveType looks up a type by QName, falling back to a synthetic built-in
// SimpleType wrapper when the name matches a built-in XSD type (so callers
// have a uniform Type to switch on).
func (s *Schema) ResolveType(qn QName) (Type, error) {
	if t, ok := s.Types[qn]; ok {
		return t, nil
	}
	if IsBuiltinType(qn.Local) {
		return &SimpleType{QName: qn, Base: qn, IsBuiltinRef: true}, nil
	}
	if s.Opaque[qn.Namespace] {
		return &ComplexType{QName: qn, Content: ElementOnly}, nil
	}
	return nil, newParseError(qn.String(), "undefined type reference")
}
