// Package xsdpath implements the Path, GroundSet and ConstraintSet data
// model of spec.md §3: the shared vocabulary the enumerator, measurer,
// generators and materializer all speak.
package xsdpath

import "strings"

// Path is a hierarchical element or attribute path key. Element paths look
// like "/Root/Child"; attribute paths append "@AttrName" to their owning
// element path. Paths are order-sensitive and case-sensitive, and two
// unfoldings of the same recursive element at different depths are distinct
// keys (spec.md §3).
type Path string

// Root constructs the path of a top-level element.
func Root(name string) Path {
	return Path("/" + name)
}

// Child constructs the path of an element named name under parent.
func (p Path) Child(name string) Path {
	return p + Path("/"+name)
}

// Attr constructs the attribute path owned by an element path.
func (p Path) Attr(name string) Path {
	return p + Path("@"+name)
}

// IsAttribute reports whether p denotes an attribute path.
func (p Path) IsAttribute() bool {
	return strings.Contains(string(p), "@")
}

// ElementPath returns the owning element path of an attribute path, or p
// itself if p is already an element path.
func (p Path) ElementPath() Path {
	if idx := strings.IndexByte(string(p), '@'); idx >= 0 {
		return p[:idx]
	}
	return p
}

// Depth is the path's count of '/' separators; an attribute path inherits
// the depth of its owning element path (spec.md §3).
func (p Path) Depth() int {
	elemPart := string(p.ElementPath())
	return strings.Count(elemPart, "/")
}

// Parent returns the path one level up (the owning element path of the
// parent element), and whether p has a parent at all (false for a root
// element path).
func (p Path) Parent() (Path, bool) {
	elemPart := string(p.ElementPath())
	idx := strings.LastIndexByte(elemPart, '/')
	if idx <= 0 {
		return "", false
	}
	return Path(elemPart[:idx]), true
}

// Name returns the last path segment: the attribute name for an attribute
// path, the element's local name otherwise.
func (p Path) Name() string {
	s := string(p)
	if idx := strings.LastIndexByte(s, '@'); idx >= 0 {
		return s[idx+1:]
	}
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
