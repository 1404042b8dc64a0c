package main

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// applyNamespacePrefixes rewrites doc's default-namespace binding to a
// prefixed one for every override whose URI matches what the Materializer
// emitted, renaming every element in the tree to carry that prefix. This is
// purely an output-formatting concern over the already-valid document the
// Materializer built, not part of its own validity contract.
func applyNamespacePrefixes(doc *etree.Document, overrides map[string]string) {
	if len(overrides) == 0 {
		return
	}
	root := doc.Root()
	if root == nil {
		return
	}

	prefixes := make([]string, 0, len(overrides))
	for p := range overrides {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		uri := overrides[prefix]
		attr := root.SelectAttr("xmlns")
		if attr == nil || attr.Value != uri {
			continue
		}
		root.RemoveAttr("xmlns")
		root.CreateAttr("xmlns:"+prefix, uri)
		renameTreePrefix(root, prefix)
		break
	}
}

func renameTreePrefix(elem *etree.Element, prefix string) {
	if !strings.Contains(elem.Tag, ":") {
		elem.Tag = prefix + ":" + elem.Tag
	}
	for _, c := range elem.ChildElements() {
		renameTreePrefix(c, prefix)
	}
}
