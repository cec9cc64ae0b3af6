// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// documentation runs.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/docjs/internal/graph"
	"github.com/phobologic/docjs/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// File is a source file row.
type File struct {
	Path     string
	Language string
	Rank     float64
}

// Document is everything a TOON rendering covers. Paths are written as
// given; callers relativize them first.
type Document struct {
	Name         string
	Root         string
	Files        []File
	Entities     []model.Entity
	Dependencies []graph.Dependency
	Externals    []string
}

// Encode converts a Document into TOON format.
func Encode(doc *Document) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("name: %s", encodeValue(doc.Name)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(doc.Root)))

	var fileRows [][]string
	for i := range doc.Files {
		f := &doc.Files[i]
		fileRows = append(fileRows, []string{f.Path, f.Language, fmt.Sprintf("%.4f", f.Rank)})
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "rank"}, fileRows))

	var entityRows, paramRows, returnRows [][]string
	for i := range doc.Entities {
		e := &doc.Entities[i]
		id := entityID(e)
		entityRows = append(entityRows, []string{
			e.Context.File,
			strconv.Itoa(e.Loc.Start.Line),
			e.Name,
			e.Kind,
			e.MemberOf,
			e.Access,
			summary(e),
		})
		paramRows = appendParams(paramRows, id, "", e.Params)
		for _, r := range e.Returns {
			returnRows = append(returnRows, []string{id, r.Type.String(), oneLine(r.Description)})
		}
	}
	parts = append(parts, formatTabular("entities", []string{"file", "line", "name", "kind", "memberof", "access", "summary"}, entityRows))
	parts = append(parts, formatTabular("params", []string{"entity", "name", "type", "optional", "default", "description"}, paramRows))
	parts = append(parts, formatTabular("returns", []string{"entity", "type", "description"}, returnRows))

	var depRows [][]string
	for i := range doc.Dependencies {
		d := &doc.Dependencies[i]
		depRows = append(depRows, []string{d.Source, d.Target, strings.Join(d.Specifiers, " ")})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "specifiers"}, depRows))

	if len(doc.Externals) > 0 {
		var extRows [][]string
		for _, m := range doc.Externals {
			extRows = append(extRows, []string{m})
		}
		parts = append(parts, formatTabular("externals", []string{"module"}, extRows))
	}

	return strings.Join(parts, "\n")
}

// entityID names an entity in dependent tables: its qualified name, or its
// file and line when it has none.
func entityID(e *model.Entity) string {
	switch {
	case e.Name == "":
		return fmt.Sprintf("%s:%d", e.Context.File, e.Loc.Start.Line)
	case e.MemberOf != "":
		return e.MemberOf + "." + e.Name
	default:
		return e.Name
	}
}

func appendParams(rows [][]string, id, prefix string, ps []model.Param) [][]string {
	for _, p := range ps {
		name := p.RawPath
		if name == "" {
			name = prefix + p.Name
		}
		rows = append(rows, []string{
			id,
			name,
			p.Type.String(),
			strconv.FormatBool(p.Optional),
			p.Default,
			oneLine(p.Description),
		})
		rows = appendParams(rows, id, name+".", p.Properties)
	}
	return rows
}

func summary(e *model.Entity) string {
	if e.Summary != "" {
		return oneLine(e.Summary)
	}
	first, _, _ := strings.Cut(e.Description, "\n\n")
	return oneLine(first)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(value string) string {
	return `"` + quoter.Replace(value) + `"`
}
