package infer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docjs/internal/model"
)

// declarationKinds maps declaration node kinds to documentation kinds.
var declarationKinds = map[string]string{
	"function_declaration":           "function",
	"generator_function_declaration": "function",
	"function_expression":            "function",
	"function":                       "function",
	"arrow_function":                 "function",
	"method_definition":              "function",
	"class_declaration":              "class",
	"class":                          "class",
	"abstract_class_declaration":     "class",
	"interface_declaration":          "interface",
	"type_alias_declaration":         "typedef",
	"enum_declaration":               "enum",
	"module":                         "namespace",
	"internal_module":                "namespace",
}

// wrapperKinds are nodes whose meaning comes from what they wrap.
var wrapperKinds = map[string]string{
	"export_statement":        "declaration",
	"expression_statement":    "",
	"assignment_expression":   "right",
	"pair":                    "value",
	"variable_declarator":     "value",
	"public_field_definition": "value",
	"field_definition":        "value",
}

// Kind returns a copy of e with Kind inferred from the documented syntax
// when no tag declared it. Const declarations with a non-function value are
// constants.
func Kind(e model.Entity) model.Entity {
	if e.Ignore || e.Kind != "" || !e.Context.Node.Valid() {
		return e
	}
	if kind := kindOf(e.Context.Node.Node, 0); kind != "" {
		e = e.Clone()
		e.Kind = kind
	}
	return e
}

func kindOf(n *sitter.Node, depth int) string {
	if n == nil || depth > 4 {
		return ""
	}
	t := n.Type()
	if kind, ok := declarationKinds[t]; ok {
		return kind
	}

	switch t {
	case "lexical_declaration", "variable_declaration":
		var decl *sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "variable_declarator" {
				decl = c
				break
			}
		}
		if decl == nil {
			return ""
		}
		if kind := kindOf(decl.ChildByFieldName("value"), depth+1); kind != "" {
			return kind
		}
		if t == "lexical_declaration" && n.Child(0).Type() == "const" {
			return "constant"
		}
		return ""
	}

	field, ok := wrapperKinds[t]
	if !ok {
		return ""
	}
	if field == "" {
		return kindOf(n.NamedChild(0), depth+1)
	}
	return kindOf(n.ChildByFieldName(field), depth+1)
}
