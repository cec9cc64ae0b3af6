// Package readme injects generated documentation under a heading of a
// Markdown document and reports the resulting change as a unified diff.
package readme

import (
	"fmt"
	"strings"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/phobologic/docjs/internal/model"
)

type heading struct {
	level int
	start int // first line of the heading
	end   int // line after the heading
	text  string
}

func parser() *markdown.Markdown {
	return markdown.New(markdown.HTML(true), markdown.Tables(true))
}

// headings lists the document's headings in order.
func headings(doc string) []heading {
	tokens := parser().Parse([]byte(doc))

	var out []heading
	for i, tok := range tokens {
		h, ok := tok.(*markdown.HeadingOpen)
		if !ok {
			continue
		}
		text := ""
		if i+1 < len(tokens) {
			if inline, ok := tokens[i+1].(*markdown.Inline); ok {
				text = strings.TrimSpace(inline.Content)
			}
		}
		out = append(out, heading{level: h.HLevel, start: h.Map[0], end: h.Map[1], text: text})
	}
	return out
}

// Inject replaces the content under the heading whose text is section with
// body. The replaced content runs up to the next heading of the same or a
// higher level, or the end of the document. Headings in body are demoted
// so they nest under section. It returns an error wrapping
// [model.ErrHeadingNotFound] when doc has no such heading.
func Inject(doc, section, body string) (string, error) {
	section = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(section), "#"))

	hs := headings(doc)
	idx := -1
	for i, h := range hs {
		if h.text == section {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("heading %q: %w", section, model.ErrHeadingNotFound)
	}
	target := hs[idx]

	lines := strings.SplitAfter(doc, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	stop := len(lines)
	for _, h := range hs[idx+1:] {
		if h.level <= target.level {
			stop = h.start
			break
		}
	}

	var b strings.Builder
	for _, l := range lines[:target.end] {
		b.WriteString(l)
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if body = strings.TrimSpace(Demote(body, target.level)); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	if stop < len(lines) {
		b.WriteString("\n")
		for _, l := range lines[stop:] {
			b.WriteString(l)
		}
	}
	return b.String(), nil
}

// Demote shifts the ATX headings of doc so that the shallowest sits one
// level below parent. Headings never go deeper than level 6.
func Demote(doc string, parent int) string {
	hs := headings(doc)
	if len(hs) == 0 {
		return doc
	}
	shallowest := 6
	for _, h := range hs {
		shallowest = min(shallowest, h.level)
	}
	shift := parent + 1 - shallowest
	if shift <= 0 {
		return doc
	}

	lines := strings.SplitAfter(doc, "\n")
	for _, h := range hs {
		line := lines[h.start]
		trimmed := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(trimmed, "#") {
			continue // setext heading
		}
		add := min(shift, 6-h.level)
		lines[h.start] = line[:len(line)-len(trimmed)] + strings.Repeat("#", add) + trimmed
	}
	return strings.Join(lines, "")
}
