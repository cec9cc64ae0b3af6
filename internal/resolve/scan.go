package resolve

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/docjs/internal/lang"
	"github.com/phobologic/docjs/internal/syntax"
)

// Specifiers returns the module specifiers referenced by source, in source
// order and without duplicates: require('x'), import ... from 'x',
// export ... from 'x' and import('x').
func Specifiers(ctx context.Context, path string, source []byte) ([]string, error) {
	if len(source) == 0 {
		return nil, nil
	}
	parser := lang.ForPath(path).NewParser()
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	var specs []string
	seen := make(map[string]struct{})
	add := func(n *sitter.Node) {
		if n == nil || n.Type() != "string" {
			return
		}
		s := stringContent(n, source)
		if s == "" {
			return
		}
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			specs = append(specs, s)
		}
	}

	syntax.Walk(tree.RootNode(), syntax.Table{
		"call_expression": func(n *sitter.Node) bool {
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return false
			}
			isRequire := fn.Type() == "identifier" && syntax.Text(fn, source) == "require"
			if isRequire || fn.Type() == "import" {
				if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
					add(args.NamedChild(0))
				}
			}
			return false
		},
		"import_statement": func(n *sitter.Node) bool {
			add(n.ChildByFieldName("source"))
			return false
		},
		"export_statement": func(n *sitter.Node) bool {
			add(n.ChildByFieldName("source"))
			return false
		},
	})

	return specs, nil
}

// stringContent returns the text of a string literal without its quotes.
func stringContent(n *sitter.Node, source []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "string_fragment" {
			return syntax.Text(child, source)
		}
	}
	text := syntax.Text(n, source)
	if len(text) >= 2 {
		return strings.TrimSpace(text[1 : len(text)-1])
	}
	return ""
}
