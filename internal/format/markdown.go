package format

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/phobologic/docjs/internal/model"
)

//go:embed templates/markdown.tmpl
var defaultMarkdownTemplate string

// inlineTagRe matches inline references such as {@link Foo}, {@link Foo|the
// foo} and {@tutorial intro}.
var inlineTagRe = regexp.MustCompile(`\{@(?:link|linkcode|linkplain|tutorial)\s+([^}|\s]+)(?:[|\s][^}]*)?\}`)

// Markdown renders entities through a text/template, either the built-in
// template or one loaded from Options.Template.
type Markdown struct{}

// markdownData is the value templates execute against.
type markdownData struct {
	Name     string
	Entities []model.Entity
}

func (Markdown) Format(entities []model.Entity, opts Options) (string, error) {
	src := defaultMarkdownTemplate
	if opts.Template != "" {
		data, err := os.ReadFile(opts.Template)
		if err != nil {
			return "", fmt.Errorf("reading template: %w", err)
		}
		src = string(data)
	}

	tmpl, err := template.New("markdown").Funcs(helpers(opts)).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, markdownData{Name: opts.Name, Entities: entities}); err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return b.String(), nil
}

// helpers builds the function table for a single render.
func helpers(opts Options) template.FuncMap {
	return template.FuncMap{
		"formatParams":      FormatParams,
		"formatType":        FormatType,
		"formatDescription": FormatDescription,
		"inlines":           Inlines,
		"flattenParams":     flattenParams,
		"relPath":           func(path string) string { return relPath(opts.Root, path) },
	}
}

// FormatParams renders a call signature such as "(a, [b])", bracketing
// optional parameters. It returns "" when there are none.
func FormatParams(params []model.Param) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		if p.Optional {
			names[i] = "[" + p.Name + "]"
		} else {
			names[i] = p.Name
		}
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// FormatType renders a type expression as inline code.
func FormatType(t *model.Type) string {
	if t == nil || t.Expression == "" {
		return ""
	}
	s := t.String()
	if t.Optional {
		s += "="
	}
	return "`" + s + "`"
}

// FormatDescription collapses a description onto one line and resolves its
// inline tags.
func FormatDescription(desc string) string {
	return Inlines(strings.ReplaceAll(desc, "\n", " "))
}

// Inlines replaces inline reference tags with their target as inline code.
func Inlines(s string) string {
	return inlineTagRe.ReplaceAllString(s, "`$1`")
}

type paramLine struct {
	Indent string
	Path   string
	Param  model.Param
}

// flattenParams walks a nested parameter tree, depth first.
func flattenParams(params []model.Param) []paramLine {
	var out []paramLine
	var walk func(ps []model.Param, depth int, prefix string)
	walk = func(ps []model.Param, depth int, prefix string) {
		for _, p := range ps {
			path := p.RawPath
			if path == "" {
				path = prefix + p.Name
			}
			out = append(out, paramLine{Indent: strings.Repeat("    ", depth), Path: path, Param: p})
			walk(p.Properties, depth+1, path+".")
		}
	}
	walk(params, 0, "")
	return out
}
