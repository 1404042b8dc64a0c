package materialize

import "github.com/agentflare-ai/xsdcoverage/internal/model"

// leafValue picks the text content for a simple-typed leaf: the first
// enumeration value if the type restricts to one, otherwise the
// builtinPlaceholder for its built-in base type (spec.md §4.H rule 4).
func leafValue(schema *model.Schema, typeRef model.QName) string {
	typ, err := schema.ResolveType(typeRef)
	if err != nil {
		return "value"
	}
	st, ok := typ.(*model.SimpleType)
	if !ok {
		return "value"
	}
	if len(st.Enumeration) > 0 {
		return st.Enumeration[0]
	}
	if st.IsBuiltinRef {
		return builtinPlaceholder(st.Base.Local)
	}
	// A restriction over another named simple type: one more hop is enough
	// for materialization purposes since facet-level validation is out of
	// scope (spec.md Non-goals).
	if base, err := schema.ResolveType(st.Base); err == nil {
		if bst, ok := base.(*model.SimpleType); ok {
			if len(bst.Enumeration) > 0 {
				return bst.Enumeration[0]
			}
			return builtinPlaceholder(bst.Base.Local)
		}
	}
	return builtinPlaceholder(st.Base.Local)
}

// builtinPlaceholder returns a lexically valid sample value for the common
// built-in types; built-in types without a case here get "value".
func builtinPlaceholder(local string) string {
	switch local {
	case "base64Binary":
		return "U2FtcGxlRGF0YQ=="
	case "hexBinary":
		return "48656C6C6F"
	case "boolean":
		return "true"
	case "int", "integer", "long", "short", "byte",
		"unsignedInt", "unsignedLong", "unsignedShort", "unsignedByte",
		"positiveInteger", "nonNegativeInteger":
		return "1"
	case "negativeInteger", "nonPositiveInteger":
		return "-1"
	case "decimal", "float", "double":
		return "1.0"
	case "date":
		return "2024-01-01"
	case "dateTime":
		return "2024-01-01T00:00:00Z"
	case "time":
		return "00:00:00"
	case "anyURI":
		return "urn:example"
	case "string", "normalizedString", "token":
		return "sample"
	default:
		return "value"
	}
}
