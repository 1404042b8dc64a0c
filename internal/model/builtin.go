package model

// builtinTypeNames is the set of built-in XSD primitive and derived type
// local names this tool recognizes, adapted from the teacher's
// builtin_types.go registry (trimmed to names only — value validation lives
// in internal/validate, which still needs the full registry for Validator).
var builtinTypeNames = map[string]bool{
	"string": true, "boolean": true, "decimal": true, "float": true, "double": true,
	"duration": true, "dateTime": true, "time": true, "date": true,
	"gYearMonth": true, "gYear": true, "gMonthDay": true, "gDay": true, "gMonth": true,
	"hexBinary": true, "base64Binary": true, "anyURI": true, "QName": true, "NOTATION": true,
	"normalizedString": true, "token": true, "language": true, "Name": true, "NCName": true,
	"ID": true, "IDREF": true, "IDREFS": true, "ENTITY": true, "ENTITIES": true,
	"NMTOKEN": true, "NMTOKENS": true,
	"integer": true, "nonPositiveInteger": true, "negativeInteger": true, "long": true,
	"int": true, "short": true, "byte": true, "nonNegativeInteger": true,
	"unsignedLong": true, "unsignedInt": true, "unsignedShort": true, "unsignedByte": true,
	"positiveInteger": true,
}

// IsBuiltinType reports whether name (local name, no prefix) is a built-in
// XSD Schema type.
func IsBuiltinType(name string) bool {
	return builtinTypeNames[name]
}
