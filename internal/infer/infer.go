// Package infer fills in names and kinds that a documentation comment does
// not state explicitly, from its other tags and from the syntax it documents.
package infer

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docjs/internal/model"
	"github.com/phobologic/docjs/internal/syntax"
)

// identifierKinds are node kinds whose text is a usable name.
var identifierKinds = []string{
	"identifier",
	"property_identifier",
	"shorthand_property_identifier",
	"shorthand_property_identifier_pattern",
	"private_property_identifier",
	"type_identifier",
}

// skipInference reports whether e should be left alone.
func skipInference(e model.Entity) bool {
	return e.Ignore || e.Name != ""
}

// Name returns a copy of e with Name inferred. Tag rules are tried in a
// fixed priority order; the first present tag wins. Without a naming tag the
// documented syntax is searched depth-first for an identifier. An entity for
// which nothing is found is returned nameless.
func Name(e model.Entity) model.Entity {
	if skipInference(e) {
		return e
	}
	e = e.Clone()

	switch {
	case e.Event != "":
		e.Name = e.Event
	case e.Alias != "":
		e.Name = e.Alias
	case e.Callback != "":
		e.Name = e.Callback
	case e.Class != nil && e.Class.Name != "":
		e.Name = e.Class.Name
	case e.Module != nil:
		e.Name = e.Module.Name
		if e.Name == "" {
			base := filepath.Base(e.Context.File)
			e.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	case e.Typedef != nil:
		e.Name = e.Typedef.Name
	default:
		e.Name = FromSyntax(e.Context.Node)
	}
	return e
}

// FromSyntax searches the subtree at ref in depth-first pre-order for the
// first named node. For member access (object.property) the property name
// is used, never the object.
func FromSyntax(ref syntax.NodeRef) string {
	if !ref.Valid() {
		return ""
	}

	var name string
	found := func(n *sitter.Node) bool {
		if n == nil {
			return false
		}
		name = syntax.Text(n, ref.Source)
		return name != ""
	}

	table := syntax.Table{
		"member_expression": func(n *sitter.Node) bool {
			return found(n.ChildByFieldName("property"))
		},
	}
	for _, kind := range identifierKinds {
		table[kind] = found
	}

	syntax.Walk(ref.Node, table)
	return name
}
