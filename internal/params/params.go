// Package params nests dotted parameter declarations such as
// "employee.name" under their parent parameter.
package params

import (
	"regexp"

	"github.com/phobologic/docjs/internal/model"
)

// separatorRe matches the nesting separator: a dot, optionally preceded by
// an empty array index, so "list[].id" nests under "list".
var separatorRe = regexp.MustCompile(`(\[\])?\.`)

type node struct {
	param    model.Param
	children []*node
}

// Nest restructures a flat, ordered parameter list into a tree in a single
// left-to-right pass. A dotted parameter attaches to the most recent
// parameter registered under its first path segment, so "a.b.c" lands
// directly under "a" whether or not "a.b" was declared. Parents must be
// declared before their children; a child whose parent has not been seen
// yet is kept at the top level. The input is not modified.
func Nest(flat []model.Param) []model.Param {
	if len(flat) == 0 {
		return flat
	}

	index := make(map[string]*node, len(flat))
	var roots []*node

	for _, p := range flat {
		path := p.RawPath
		if path == "" {
			path = p.Name
		}
		n := &node{param: p}
		n.param.Properties = nil

		var parent *node
		if head, ok := parentKey(path); ok {
			parent = index[head]
		}
		if parent != nil {
			parent.children = append(parent.children, n)
		} else {
			roots = append(roots, n)
		}
		index[path] = n
	}

	return materialize(roots)
}

// Orphans returns the raw paths of dotted parameters in flat whose parent
// was not declared before them.
func Orphans(flat []model.Param) []string {
	seen := make(map[string]struct{}, len(flat))
	var orphans []string
	for _, p := range flat {
		path := p.RawPath
		if path == "" {
			path = p.Name
		}
		if head, ok := parentKey(path); ok {
			if _, found := seen[head]; !found {
				orphans = append(orphans, path)
			}
		}
		seen[path] = struct{}{}
	}
	return orphans
}

// parentKey returns the first segment of a dotted path, and false when path
// has no separator.
func parentKey(path string) (string, bool) {
	parts := separatorRe.Split(path, 2)
	if len(parts) < 2 {
		return "", false
	}
	return parts[0], true
}

func materialize(nodes []*node) []model.Param {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]model.Param, len(nodes))
	for i, n := range nodes {
		out[i] = n.param
		out[i].Properties = materialize(n.children)
	}
	return out
}

// Entity returns a copy of e with its params and properties nested.
func Entity(e model.Entity) model.Entity {
	if len(e.Params) == 0 && len(e.Properties) == 0 {
		return e
	}
	e = e.Clone()
	e.Params = Nest(e.Params)
	e.Properties = Nest(e.Properties)
	return e
}
