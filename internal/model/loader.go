package model

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agentflare-ai/go-xmldom"
)

// wellKnownOpaqueNamespaces are external namespaces whose imports commonly
// cannot be opened locally, so such an unresolved import is logged at debug
// level rather than as a warning. The materializer has no hard-coded
// subtree for elements of these namespaces.
var wellKnownOpaqueNamespaces = map[string]bool{
	"http://www.w3.org/2000/09/xmldsig#": true,
}

// Loader resolves xs:import/xs:include directives against the local
// filesystem. Network retrieval is out of scope (spec.md §1 Non-goals); an
// import whose schemaLocation cannot be opened locally is recorded as an
// opaque namespace instead of failing the run.
type Loader struct {
	BaseDir string
	loaded  map[string]*Schema
	loading map[string]bool
}

// NewLoader creates a Loader resolving relative schemaLocations against baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir, loaded: make(map[string]*Schema), loading: make(map[string]bool)}
}

// Load parses the schema at location, recursively loads every
// xs:import/xs:include it reaches that can be resolved locally, and merges
// into the result the main schema plus the schemas it imports or includes
// directly. Declarations of schemas reached only through another imported
// schema are not merged, and only the main schema's own unresolved imports
// are recorded as opaque.
func (l *Loader) Load(location string) (*Schema, error) {
	resolved := l.resolvePath(location)
	main, err := l.loadRecursive(resolved)
	if err != nil {
		return nil, err
	}

	combined := newSchema()
	combined.TargetNamespace = main.TargetNamespace
	l.merge(main, combined)
	for _, imp := range main.Imports {
		if imp.SchemaLocation == "" {
			continue
		}
		loc := l.resolveRelative(imp.SchemaLocation, resolved)
		if imported, ok := l.loaded[loc]; ok {
			l.merge(imported, combined)
		} else if imp.Namespace != "" {
			combined.Opaque[imp.Namespace] = true
		}
	}
	if err := combined.resolveReferences(); err != nil {
		return nil, err
	}
	return combined, nil
}

// loadRecursive expects location already resolved (absolute, or relative to
// the process's working directory) — callers compose further relative
// locations with resolveRelative before recursing, so this never re-joins
// against BaseDir.
func (l *Loader) loadRecursive(location string) (*Schema, error) {
	abs := location
	if s, ok := l.loaded[abs]; ok {
		return s, nil
	}
	if l.loading[abs] {
		return nil, newParseError(abs, "circular xs:include/xs:import")
	}
	l.loading[abs] = true
	defer delete(l.loading, abs)

	doc, err := l.loadDocument(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", abs, err)
	}
	schema, err := Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", abs, err)
	}
	l.loaded[abs] = schema

	for _, imp := range schema.Imports {
		if imp.SchemaLocation == "" {
			continue
		}
		loc := l.resolveRelative(imp.SchemaLocation, abs)
		if _, err := l.loadRecursive(loc); err != nil {
			if imp.IsInclude {
				return nil, fmt.Errorf("failed to include %s: %w", imp.SchemaLocation, err)
			}
			if wellKnownOpaqueNamespaces[imp.Namespace] {
				slog.Debug("import unresolved, using opaque-namespace fallback", "namespace", imp.Namespace)
			} else {
				slog.Warn("import could not be resolved locally, treating namespace as opaque",
					"location", imp.SchemaLocation, "namespace", imp.Namespace, "error", err)
			}
		}
	}
	return schema, nil
}

func (l *Loader) merge(source, target *Schema) {
	for qn, e := range source.Elements {
		if _, exists := target.Elements[qn]; !exists {
			target.Elements[qn] = e
		}
	}
	for qn, t := range source.Types {
		if _, exists := target.Types[qn]; !exists {
			target.Types[qn] = t
		}
	}
	for qn, ag := range source.AttributeGroups {
		if _, exists := target.AttributeGroups[qn]; !exists {
			target.AttributeGroups[qn] = ag
		}
	}
	for qn, g := range source.Groups {
		if _, exists := target.Groups[qn]; !exists {
			target.Groups[qn] = g
		}
	}
	for ns := range source.Opaque {
		target.Opaque[ns] = true
	}
}

func (l *Loader) resolvePath(location string) string {
	if filepath.IsAbs(location) {
		return location
	}
	if l.BaseDir != "" {
		return filepath.Join(l.BaseDir, location)
	}
	return location
}

func (l *Loader) resolveRelative(relative, base string) string {
	if filepath.IsAbs(relative) {
		return relative
	}
	return filepath.Join(filepath.Dir(base), relative)
}

func (l *Loader) loadDocument(location string) (xmldom.Document, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xmldom.Decode(f)
}
