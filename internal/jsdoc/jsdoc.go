// Package jsdoc parses documentation comment text into a description and a
// structured tag set.
package jsdoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/docjs/internal/model"
)

var (
	unwrapRe    = regexp.MustCompile(`^\s*\*\s?`)
	titleRe     = regexp.MustCompile(`^@([A-Za-z][\w-]*)`)
	separatorRe = regexp.MustCompile(`(\[\])?\.`)
)

// aliases maps synonyms to their canonical tag title.
var aliases = map[string]string{
	"arg":          "param",
	"argument":     "param",
	"return":       "returns",
	"prop":         "property",
	"exception":    "throws",
	"desc":         "description",
	"func":         "function",
	"method":       "function",
	"const":        "constant",
	"emits":        "fires",
	"extends":      "augments",
	"virtual":      "abstract",
	"fileoverview": "file",
	"overview":     "file",
	"host":         "external",
	"var":          "member",
	"constructor":  "class",
	"defaultvalue": "default",
}

// Handler applies a parsed tag to an entity.
type Handler func(e *model.Entity, tag model.Tag)

// Parser parses documentation comments. The zero value is not usable; use
// New. Handlers registered on one Parser do not affect others.
type Parser struct {
	handlers map[string]Handler
}

// New returns a Parser that understands the standard JSDoc tags.
func New() *Parser {
	p := &Parser{handlers: make(map[string]Handler, len(builtins))}
	for title, h := range builtins {
		p.handlers[title] = h
	}
	return p
}

// Register adds or replaces the handler for a tag title. A nil handler
// accepts the tag without promoting it onto the entity.
func (p *Parser) Register(title string, h Handler) {
	if h == nil {
		h = func(*model.Entity, model.Tag) {}
	}
	p.handlers[strings.ToLower(title)] = h
}

// Parse parses a documentation comment. Unknown and malformed tags are
// recorded in the entity's Errors; parsing always produces a best-effort
// entity.
func (p *Parser) Parse(rc model.RawComment) model.Entity {
	e := model.Entity{
		Tags: []model.Tag{},
		Loc:  rc.Loc,
		Context: model.Context{
			File: rc.File,
			Loc:  rc.Loc,
			Node: rc.Node,
		},
	}
	if rc.Node.Valid() {
		e.Context.Loc = model.NodeLoc(rc.Node.Node)
	}

	lines := unwrap(rc.Value)
	var desc []string
	i := 0
	for ; i < len(lines) && !isTagLine(lines[i]); i++ {
		desc = append(desc, lines[i])
	}
	e.Description = strings.TrimSpace(strings.Join(desc, "\n"))

	for i < len(lines) {
		start := i
		block := []string{strings.TrimSpace(lines[i])}
		for i++; i < len(lines) && !isTagLine(lines[i]); i++ {
			block = append(block, lines[i])
		}
		p.parseTag(&e, block, rc.StartLine+start)
	}

	return e
}

func (p *Parser) parseTag(e *model.Entity, block []string, line int) {
	m := titleRe.FindStringSubmatch(block[0])
	if m == nil {
		e.Errors = append(e.Errors, model.TagError{Message: "missing tag title", Line: line})
		return
	}
	title := strings.ToLower(m[1])
	if canonical, ok := aliases[title]; ok {
		title = canonical
	}
	block[0] = strings.TrimPrefix(block[0], m[0])
	rest := strings.TrimRight(strings.Join(block, "\n"), " \t\n")
	if title != "example" {
		rest = strings.TrimSpace(rest)
	} else {
		rest = strings.TrimPrefix(strings.TrimPrefix(rest, " "), "\n")
	}

	tag := model.Tag{Title: title, Line: line}
	shape, known := shapes[title]
	if !known {
		if _, registered := p.handlers[title]; !registered {
			e.Errors = append(e.Errors, model.TagError{
				Message: fmt.Sprintf("unknown tag @%s", m[1]),
				Line:    line,
			})
		}
		shape = shapeText
	}

	var err error
	if tag, err = shape.parse(tag, rest); err != nil {
		e.Errors = append(e.Errors, model.TagError{
			Message: fmt.Sprintf("@%s: %v", title, err),
			Line:    line,
		})
		if tag.Title == "" {
			return
		}
	}

	e.Tags = append(e.Tags, tag)
	if h, ok := p.handlers[title]; ok {
		h(e, tag)
	}
}

// unwrap strips the leading '*' decoration from each comment line.
func unwrap(value string) []string {
	lines := strings.Split(value, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(unwrapRe.ReplaceAllString(l, ""), "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isTagLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "@")
}

// LeafName returns the last segment of a dotted parameter path, so
// "options.list[].id" becomes "id".
func LeafName(path string) string {
	parts := separatorRe.Split(path, -1)
	return parts[len(parts)-1]
}
