// Package model defines core data structures for docjs.
package model

import (
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docjs/internal/syntax"
)

// FileDescriptor is a source file participating in a documentation run.
type FileDescriptor struct {
	Path   string `json:"file"`
	Source string `json:"source"`

	// Literal marks an in-memory input that never touches the filesystem.
	Literal bool `json:"-"`
}

// DependencyEdge records a module reference found in From.
// To is empty when the specifier is external or could not be resolved.
type DependencyEdge struct {
	From      string
	Specifier string
	To        string
	External  bool
}

// Position is a 1-based line and 0-based column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Loc is a source range.
type Loc struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NodeLoc returns the source range of a syntax node.
func NodeLoc(n *sitter.Node) Loc {
	return Loc{
		Start: Position{Line: int(n.StartPoint().Row) + 1, Column: int(n.StartPoint().Column)},
		End:   Position{Line: int(n.EndPoint().Row) + 1, Column: int(n.EndPoint().Column)},
	}
}

// RawComment is a documentation comment found in a file, before tag parsing.
type RawComment struct {
	// Text is the full comment including delimiters.
	Text string
	// Value is the text between the block-comment delimiters.
	Value     string
	StartLine int
	EndLine   int
	Loc       Loc
	File      string

	// Node is the syntax node the comment documents; zero for standalone
	// comments.
	Node syntax.NodeRef
}

// Type is a JSDoc type expression.
type Type struct {
	Expression string `json:"expression"`
	Optional   bool   `json:"optional,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
	Variadic   bool   `json:"variadic,omitempty"`
}

// String returns the type expression with its modifiers applied.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	s := t.Expression
	if t.Variadic {
		s = "..." + s
	}
	if t.Nullable {
		s = "?" + s
	}
	return s
}

// Param is a documented parameter or property.
type Param struct {
	// Name is the leaf identifier; RawPath keeps the declared dotted path.
	Name        string  `json:"name"`
	RawPath     string  `json:"rawPath,omitempty"`
	Type        *Type   `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Default     string  `json:"default,omitempty"`
	Optional    bool    `json:"optional,omitempty"`
	Properties  []Param `json:"properties,omitempty"`
}

// Return documents a return value or thrown error.
type Return struct {
	Type        *Type  `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// NamedType is a tag carrying an optional name and type, such as @class,
// @module or @typedef.
type NamedType struct {
	Name string `json:"name,omitempty"`
	Type *Type  `json:"type,omitempty"`
}

// Tag is a single parsed tag in source order.
type Tag struct {
	Title       string `json:"title"`
	Name        string `json:"name,omitempty"`
	Type        *Type  `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
	Line        int    `json:"line"`
}

// GitHubLink points at the documented code in a hosted repository.
type GitHubLink struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Context locates an entity in the source tree.
type Context struct {
	File    string      `json:"file"`
	Loc     Loc         `json:"loc"`
	SortKey string      `json:"sortKey,omitempty"`
	GitHub  *GitHubLink `json:"github,omitempty"`

	// Node is valid only while the file's syntax tree is open; the pipeline
	// clears it before entities leave the file stage.
	Node syntax.NodeRef `json:"-"`
}

// Entity is a parsed documentation comment.
type Entity struct {
	Description string `json:"description"`
	Summary     string `json:"summary,omitempty"`
	Tags        []Tag  `json:"tags"`

	Name     string `json:"name,omitempty"`
	Kind     string `json:"kind,omitempty"`
	MemberOf string `json:"memberof,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Access   string `json:"access,omitempty"`

	Event    string     `json:"event,omitempty"`
	Alias    string     `json:"alias,omitempty"`
	Callback string     `json:"callback,omitempty"`
	Class    *NamedType `json:"class,omitempty"`
	Module   *NamedType `json:"module,omitempty"`
	Typedef  *NamedType `json:"typedef,omitempty"`
	Type     *Type      `json:"type,omitempty"`

	Params     []Param  `json:"params,omitempty"`
	Properties []Param  `json:"properties,omitempty"`
	Returns    []Return `json:"returns,omitempty"`
	Throws     []Return `json:"throws,omitempty"`
	Examples   []string `json:"examples,omitempty"`
	See        []string `json:"see,omitempty"`
	Since      string   `json:"since,omitempty"`
	Deprecated string   `json:"deprecated,omitempty"`
	Ignore     bool     `json:"ignore,omitempty"`

	// Loc is the range of the comment itself; Context.Loc is the range of
	// the documented code.
	Loc     Loc        `json:"loc"`
	Context Context    `json:"context"`
	Errors  []TagError `json:"errors,omitempty"`
}

// Clone returns a copy of e whose slices can be modified without affecting
// e. Nested parameter trees are copied as well.
func (e Entity) Clone() Entity {
	e.Tags = slices.Clone(e.Tags)
	e.Params = CloneParams(e.Params)
	e.Properties = CloneParams(e.Properties)
	e.Returns = slices.Clone(e.Returns)
	e.Throws = slices.Clone(e.Throws)
	e.Examples = slices.Clone(e.Examples)
	e.See = slices.Clone(e.See)
	e.Errors = slices.Clone(e.Errors)
	if e.Context.GitHub != nil {
		gh := *e.Context.GitHub
		e.Context.GitHub = &gh
	}
	return e
}

// CloneParams deep-copies a parameter tree.
func CloneParams(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		p.Properties = CloneParams(p.Properties)
		out[i] = p
	}
	return out
}
