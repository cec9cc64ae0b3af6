// Package extract locates documentation comments in source files using
// tree-sitter and pairs each with the syntax node it documents.
package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docjs/internal/lang"
	"github.com/phobologic/docjs/internal/model"
	"github.com/phobologic/docjs/internal/syntax"
)

const commentKind = "comment"

// IsDocComment reports whether text is a documentation comment: a block
// comment whose body starts with exactly one '*' beyond the opener.
func IsDocComment(text string) bool {
	if len(text) < 4 || !strings.HasPrefix(text, "/*") || !strings.HasSuffix(text, "*/") {
		return false
	}
	value := text[2 : len(text)-2]
	return len(value)-len(strings.TrimLeft(value, "*")) == 1
}

// Parsed is a file's syntax tree together with the documentation comments
// found in it. Node references in Comments are valid until Close.
type Parsed struct {
	File         string
	Source       []byte
	Comments     []model.RawComment
	SyntaxErrors []*model.SyntaxError

	tree *sitter.Tree
}

// Close releases the syntax tree.
func (p *Parsed) Close() {
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
}

// Extractor parses files and extracts their documentation comments.
// An Extractor is not safe for concurrent use; each goroutine needs its own.
type Extractor struct {
	parsers map[string]*sitter.Parser
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{parsers: make(map[string]*sitter.Parser)}
}

func (x *Extractor) parser(l *lang.Language) *sitter.Parser {
	p, ok := x.parsers[l.Name]
	if !ok {
		p = l.NewParser()
		x.parsers[l.Name] = p
	}
	return p
}

// Extract parses fd and returns its documentation comments in source order.
// A file that fails to parse cleanly still yields comments from the
// recovered tree; the failure is reported in SyntaxErrors.
func (x *Extractor) Extract(ctx context.Context, fd model.FileDescriptor) (*Parsed, error) {
	source := []byte(fd.Source)
	parsed := &Parsed{File: fd.Path, Source: source}
	if len(source) == 0 {
		return parsed, nil
	}

	tree, err := x.parser(lang.ForPath(fd.Path)).ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fd.Path, err)
	}
	parsed.tree = tree

	root := tree.RootNode()
	if root.HasError() {
		parsed.SyntaxErrors = syntaxErrors(root, fd.Path)
	}

	syntax.Each(root, func(n *sitter.Node) bool {
		if n.Type() != commentKind {
			return false
		}
		text := syntax.Text(n, source)
		if !IsDocComment(text) {
			return false
		}
		start, end := syntax.Lines(n)
		rc := model.RawComment{
			Text:      text,
			Value:     text[2 : len(text)-2],
			StartLine: start,
			EndLine:   end,
			Loc:       model.NodeLoc(n),
			File:      fd.Path,
		}
		if target := documentedNode(n); target != nil {
			rc.Node = syntax.NodeRef{Node: target, Source: source}
		}
		parsed.Comments = append(parsed.Comments, rc)
		return false
	})

	return parsed, nil
}

// documentedNode returns the node a comment documents: its next named
// sibling that is not a comment, or its enclosing node when nothing
// follows. Consecutive comments all document the same node.
func documentedNode(c *sitter.Node) *sitter.Node {
	for next := c.NextSibling(); next != nil; next = next.NextSibling() {
		if next.IsNamed() && next.Type() != commentKind {
			return next
		}
	}
	parent := c.Parent()
	if parent == nil || parent.Parent() == nil {
		return nil
	}
	return parent
}

func syntaxErrors(root *sitter.Node, file string) []*model.SyntaxError {
	var errs []*model.SyntaxError
	seen := make(map[int]struct{})
	syntax.Each(root, func(n *sitter.Node) bool {
		if n.Type() == "ERROR" || n.IsMissing() {
			line, _ := syntax.Lines(n)
			if _, dup := seen[line]; !dup {
				seen[line] = struct{}{}
				errs = append(errs, &model.SyntaxError{File: file, Line: line})
			}
		}
		return false
	})
	return errs
}
