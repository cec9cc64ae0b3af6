package format

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docjs/internal/model"
)

func sampleEntities() []model.Entity {
	return []model.Entity{
		{
			Description: "Get one\nor more.",
			Tags:        []model.Tag{{Title: "returns", Type: &model.Type{Expression: "number"}, Description: "one"}},
			Name:        "getOne",
			Kind:        "function",
			Params: []model.Param{
				{Name: "employee", Type: &model.Type{Expression: "Object"}, Description: "See {@link Employee}.", Properties: []model.Param{
					{Name: "name", RawPath: "employee.name", Type: &model.Type{Expression: "string"}},
				}},
				{Name: "count", Type: &model.Type{Expression: "number", Optional: true}, Optional: true, Default: "1"},
			},
			Returns:  []model.Return{{Type: &model.Type{Expression: "number"}, Description: "one"}},
			Examples: []string{"getOne();"},
			Loc:      model.Loc{Start: model.Position{Line: 1}, End: model.Position{Line: 4}},
			Context: model.Context{
				File:    "/work/src/index.js",
				Loc:     model.Loc{Start: model.Position{Line: 5}, End: model.Position{Line: 7}},
				SortKey: "00000000:00000001",
			},
			Errors: []model.TagError{{Message: "unknown tag @frob", Line: 3}},
		},
		{
			Description: "Standalone.",
			Tags:        []model.Tag{},
			Context:     model.Context{File: "/work/src/index.js", SortKey: "00000000:00000010"},
		},
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"json", "md", "markdown", "HTML", "toon"} {
		f, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := ByName("pdf")
	assert.ErrorContains(t, err, `unknown format "pdf"`)
	assert.Equal(t, []string{"html", "json", "md", "toon"}, Names())
}

func TestJSONStripsInternalFields(t *testing.T) {
	t.Parallel()

	entities := sampleEntities()
	out, err := JSON{}.Format(entities, Options{})
	require.NoError(t, err)

	assert.NotContains(t, out, "sortKey")
	assert.NotContains(t, out, `"errors"`)
	assert.NotContains(t, out, "unknown tag")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "getOne", decoded[0]["name"])
	assert.Equal(t, "/work/src/index.js", decoded[0]["context"].(map[string]any)["file"])

	// Input untouched.
	assert.Equal(t, "00000000:00000001", entities[0].Context.SortKey)
	assert.Len(t, entities[0].Errors, 1)
}

func TestJSONIdempotent(t *testing.T) {
	t.Parallel()

	entities := sampleEntities()
	first, err := JSON{}.Format(entities, Options{})
	require.NoError(t, err)
	second, err := JSON{}.Format(entities, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJSONEmpty(t *testing.T) {
	t.Parallel()

	out, err := JSON{}.Format(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	entities := sampleEntities()
	out, err := Markdown{}.Format(entities, Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "## getOne(employee, [count])\n\nGet one or more.\n"), out)
	assert.Contains(t, out, "**Parameters**\n\n-   `employee` `Object` See `Employee`.\n    -   `employee.name` `string`\n-   `count` `number=` (default `1`)\n")
	assert.Contains(t, out, "**Returns**\n\n`number` one\n")
	assert.Contains(t, out, "```javascript\ngetOne();\n```\n")
	assert.Contains(t, out, "\n## anonymous\n\nStandalone.\n")
	assert.NotContains(t, out, "<no value>")
}

func TestMarkdownCustomTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{{range .Entities}}{{.Name}}{{formatParams .Params}}|{{relPath .Context.File}}{{"\n"}}{{end}}`,
	), 0o644))

	out, err := Markdown{}.Format(sampleEntities(), Options{Template: path, Root: "/work"})
	require.NoError(t, err)
	assert.Equal(t, "getOne(employee, [count])|src/index.js\n|src/index.js\n", out)

	_, err = Markdown{}.Format(nil, Options{Template: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "reading template")
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatParams(nil))
	assert.Equal(t, "(a, [b])", FormatParams([]model.Param{{Name: "a"}, {Name: "b", Optional: true}}))
	assert.Equal(t, "", FormatType(nil))
	assert.Equal(t, "`?string`", FormatType(&model.Type{Expression: "string", Nullable: true}))
	assert.Equal(t, "`...number`", FormatType(&model.Type{Expression: "number", Variadic: true}))
	assert.Equal(t, "a b", FormatDescription("a\nb"))

	tcs := map[string]string{
		"{@link Foo}":             "`Foo`",
		"see {@link Foo|the foo}": "see `Foo`",
		"{@linkcode Bar.baz} x":   "`Bar.baz` x",
		"{@tutorial intro}":       "`intro`",
		"{@link http://x.y z}":    "`http://x.y`",
		"plain {text}":            "plain {text}",
	}
	for in, want := range tcs {
		assert.Equal(t, want, Inlines(in), in)
	}
}

func TestHTML(t *testing.T) {
	t.Parallel()

	out, err := HTML{}.Format(sampleEntities(), Options{Name: "widgets <beta>"})
	require.NoError(t, err)
	assert.Contains(t, out, "<title>widgets &lt;beta&gt;</title>")
	assert.Contains(t, out, "<h2>getOne(employee, [count])</h2>")
	assert.Contains(t, out, "<code>Employee</code>")
	assert.Contains(t, out, "<h2>anonymous</h2>")
}

func TestTOON(t *testing.T) {
	t.Parallel()

	files := []model.FileDescriptor{{Path: "/work/src/index.js"}, {Path: "/work/src/util.js"}}
	edges := []model.DependencyEdge{
		{From: "/work/src/index.js", Specifier: "./util", To: "/work/src/util.js"},
		{From: "/work/src/index.js", Specifier: "lodash", External: true},
	}
	entities := sampleEntities()
	out, err := TOON{}.Format(entities, Options{Name: "widgets", Root: "/work", Files: files, Edges: edges})
	require.NoError(t, err)

	assert.Contains(t, out, "name: widgets\nroot: work\n")
	assert.Contains(t, out, "files[2]{path,language,rank}:\n  src/index.js,javascript,")
	assert.Contains(t, out, "\n  src/index.js,1,getOne,function,")
	assert.Contains(t, out, "\n  getOne,employee.name,string,")
	assert.Contains(t, out, "dependencies[1]{source,target,specifiers}:\n  src/index.js,src/util.js,./util")
	assert.Contains(t, out, "externals[1]{module}:\n  lodash")
	assert.Equal(t, "/work/src/index.js", entities[0].Context.File)
}
