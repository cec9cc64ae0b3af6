package jsdoc

import (
	"github.com/phobologic/docjs/internal/model"
)

// builtins promote standard tags onto entity fields.
var builtins = map[string]Handler{
	"param":    func(e *model.Entity, t model.Tag) { e.Params = appendParam(e.Params, t) },
	"property": func(e *model.Entity, t model.Tag) { e.Properties = appendParam(e.Properties, t) },
	"returns":  func(e *model.Entity, t model.Tag) { e.Returns = appendReturn(e.Returns, t) },
	"throws":   func(e *model.Entity, t model.Tag) { e.Throws = appendReturn(e.Throws, t) },
	"type":     func(e *model.Entity, t model.Tag) { e.Type = t.Type },
	"typedef": func(e *model.Entity, t model.Tag) {
		e.Typedef = &model.NamedType{Name: t.Name, Type: t.Type}
		e.Kind = "typedef"
		if t.Description != "" && e.Description == "" {
			e.Description = t.Description
		}
	},
	"callback": func(e *model.Entity, t model.Tag) {
		e.Callback = t.Name
		e.Kind = "typedef"
	},
	"class": func(e *model.Entity, t model.Tag) {
		e.Class = &model.NamedType{Name: t.Name, Type: t.Type}
		e.Kind = "class"
	},
	"module": func(e *model.Entity, t model.Tag) {
		e.Module = &model.NamedType{Name: t.Name, Type: t.Type}
		e.Kind = "module"
	},
	"name": func(e *model.Entity, t model.Tag) { e.Name = t.Name },
	"event": func(e *model.Entity, t model.Tag) {
		e.Event = t.Name
		e.Kind = "event"
	},
	"alias":    func(e *model.Entity, t model.Tag) { e.Alias = t.Name },
	"memberof": func(e *model.Entity, t model.Tag) { e.MemberOf = t.Name },
	"kind":     func(e *model.Entity, t model.Tag) { e.Kind = t.Name },
	"access":   func(e *model.Entity, t model.Tag) { e.Access = t.Name },
	"private":  func(e *model.Entity, _ model.Tag) { e.Access = "private" },
	"public":   func(e *model.Entity, _ model.Tag) { e.Access = "public" },
	"protected": func(e *model.Entity, _ model.Tag) {
		e.Access = "protected"
	},
	"package":  func(e *model.Entity, _ model.Tag) { e.Access = "package" },
	"static":   func(e *model.Entity, _ model.Tag) { e.Scope = "static" },
	"instance": func(e *model.Entity, _ model.Tag) { e.Scope = "instance" },
	"inner":    func(e *model.Entity, _ model.Tag) { e.Scope = "inner" },
	"global":   func(e *model.Entity, _ model.Tag) { e.Scope = "global" },
	"ignore":   func(e *model.Entity, _ model.Tag) { e.Ignore = true },
	"example":  func(e *model.Entity, t model.Tag) { e.Examples = append(e.Examples, t.Description) },
	"see":      func(e *model.Entity, t model.Tag) { e.See = append(e.See, t.Description) },
	"since":    func(e *model.Entity, t model.Tag) { e.Since = t.Description },
	"deprecated": func(e *model.Entity, t model.Tag) {
		e.Deprecated = t.Description
	},
	"description": func(e *model.Entity, t model.Tag) { e.Description = t.Description },
	"summary":     func(e *model.Entity, t model.Tag) { e.Summary = t.Description },
	"function":    declare("function"),
	"constant":    declare("constant"),
	"member":      declare("member"),
	"namespace":   declare("namespace"),
	"interface":   declare("interface"),
	"mixin":       declare("mixin"),
	"external":    declare("external"),
	"enum": func(e *model.Entity, t model.Tag) {
		e.Kind = "enum"
		if t.Type != nil {
			e.Type = t.Type
		}
	},
}

// declare handles kind-declaring tags with an optional name, such as
// "@function foo" or "@constant {number} MAX".
func declare(kind string) Handler {
	return func(e *model.Entity, t model.Tag) {
		e.Kind = kind
		if t.Name != "" && e.Name == "" {
			e.Name = t.Name
		}
		if t.Type != nil && e.Type == nil {
			e.Type = t.Type
		}
	}
}

// appendReturn skips a bare tag that carries neither type nor description.
func appendReturn(rs []model.Return, t model.Tag) []model.Return {
	if t.Type == nil && t.Description == "" {
		return rs
	}
	return append(rs, model.Return{Type: t.Type, Description: t.Description})
}

func appendParam(params []model.Param, t model.Tag) []model.Param {
	if t.Name == "" {
		return params
	}
	p := model.Param{
		Name:        LeafName(t.Name),
		RawPath:     t.Name,
		Type:        t.Type,
		Description: t.Description,
		Default:     t.Default,
	}
	if t.Type != nil {
		p.Optional = t.Type.Optional
	}
	return append(params, p)
}
