package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docjs/internal/model"
)

func extract(t *testing.T, file, source string) *Parsed {
	t.Helper()
	p, err := New().Extract(context.Background(), model.FileDescriptor{Path: file, Source: source})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestIsDocComment(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  bool
	}{
		"jsdoc":        {input: "/** x */", want: true},
		"multiline":    {input: "/**\n * x\n */", want: true},
		"plain block":  {input: "/* x */", want: false},
		"banner":       {input: "/*** x */", want: false},
		"divider":      {input: "/******************/", want: false},
		"empty jsdoc":  {input: "/**/", want: false},
		"line comment": {input: "// x", want: false},
		"unterminated": {input: "/** x", want: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsDocComment(tc.input))
		})
	}
}

func TestExtractFiltersComments(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.js", `/* plain */
/*** banner */
// line
/** documented */
function a() {}
`)
	require.Len(t, p.Comments, 1)
	c := p.Comments[0]
	assert.Equal(t, "/** documented */", c.Text)
	assert.Equal(t, "* documented ", c.Value)
	assert.Equal(t, 4, c.StartLine)
	assert.Equal(t, 4, c.EndLine)
	assert.Equal(t, "function_declaration", c.Node.Kind())
	assert.Equal(t, "a.js", c.File)
}

func TestExtractVisitsAllNodeKinds(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.js", `/** variable */
var x = 1;

/** member assignment */
foo.bar = function () {};

var obj = {
  /** property */
  prop: 2
};

class A {
  /** method */
  m() {}
}
`)
	kinds := make([]string, len(p.Comments))
	for i, c := range p.Comments {
		kinds[i] = c.Node.Kind()
	}
	assert.Equal(t, []string{
		"variable_declaration",
		"expression_statement",
		"pair",
		"method_definition",
	}, kinds)
}

func TestExtractSourceOrder(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.js", "/** one */\nvar a;\n/** two */\nvar b;\n/** three */\nvar c;\n")
	require.Len(t, p.Comments, 3)
	for i := 1; i < len(p.Comments); i++ {
		assert.Less(t, p.Comments[i-1].StartLine, p.Comments[i].StartLine)
	}
}

func TestExtractConsecutiveCommentsShareNode(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.js", `/**
 * A number, or a string containing a number.
 * @typedef {(number|string)} NumberLike
 */

/** get one */
function getOne() { return 1; }
`)
	require.Len(t, p.Comments, 2)
	assert.Equal(t, "function_declaration", p.Comments[0].Node.Kind())
	assert.Equal(t, "function_declaration", p.Comments[1].Node.Kind())
}

func TestExtractSkipsPlainComments(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"line comment":  "/** Doc */\n// eslint-disable-next-line\nfunction getOne() {}\n",
		"block comment": "/** Doc */\n/* plain */\nfunction getOne() {}\n",
	}

	for name, source := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := extract(t, "a.js", source)
			require.Len(t, p.Comments, 1)
			assert.Equal(t, "function_declaration", p.Comments[0].Node.Kind())
		})
	}
}

func TestExtractEnclosingNode(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.js", "function outer() {\n  /** trailing */\n}\n")
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "statement_block", p.Comments[0].Node.Kind())
}

func TestExtractEndOfFileIsStandalone(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.js", "var a;\n/** at the end */\n")
	require.Len(t, p.Comments, 1)
	assert.False(t, p.Comments[0].Node.Valid())
}

func TestExtractTypeScript(t *testing.T) {
	t.Parallel()

	p := extract(t, "a.ts", "/** typed */\nexport function f(a: number): string { return ''; }\n")
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "export_statement", p.Comments[0].Node.Kind())
}

func TestExtractSyntaxError(t *testing.T) {
	t.Parallel()

	p := extract(t, "broken.js", "/** still here */\nfunction ok() {}\nfunction (\n")
	assert.NotEmpty(t, p.SyntaxErrors)
	assert.Equal(t, "broken.js", p.SyntaxErrors[0].File)
	require.Len(t, p.Comments, 1)
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()

	p := extract(t, "empty.js", "")
	assert.Empty(t, p.Comments)
	assert.Empty(t, p.SyntaxErrors)
}
