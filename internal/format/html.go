package format

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/phobologic/docjs/internal/model"
)

//go:embed templates/page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

// HTML renders the Markdown output as a standalone HTML page.
type HTML struct{}

type pageData struct {
	Title string
	Body  template.HTML
}

func (HTML) Format(entities []model.Entity, opts Options) (string, error) {
	src, err := Markdown{}.Format(entities, opts)
	if err != nil {
		return "", err
	}

	md := markdown.New(
		markdown.HTML(false),
		markdown.XHTMLOutput(true),
		markdown.Tables(true),
		markdown.Linkify(false),
		markdown.Typographer(false),
	)

	title := opts.Name
	if title == "" {
		title = "API documentation"
	}

	var b strings.Builder
	if err := page.Execute(&b, pageData{
		Title: title,
		Body:  template.HTML(md.RenderToString([]byte(src))),
	}); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return b.String(), nil
}
