package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docjs/internal/model"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func canonical(t *testing.T, p string) string {
	t.Helper()
	c, err := Canonical(p)
	require.NoError(t, err)
	return c
}

func paths(files []model.FileDescriptor) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func resolveAll(inputs []Input, opts Options) ([]model.FileDescriptor, []model.DependencyEdge, error) {
	res, err := Resolve(context.Background(), inputs, opts)
	if err != nil {
		return nil, nil, err
	}
	return res.Files, res.Edges, nil
}

func TestResolveSingleFile(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"index.js": "/** get one */\nfunction getOne() { return 1; }\n",
	})
	files, edges, err := resolveAll([]Input{Path(filepath.Join(dir, "index.js"))}, Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, canonical(t, filepath.Join(dir, "index.js")), files[0].Path)
	assert.Contains(t, files[0].Source, "getOne")
	assert.Empty(t, edges)
}

func TestResolveFollowsRequire(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"requires.js": "var foo = require('./foo');\nvar fs = require('fs');\n",
		"foo.js":      "module.exports = 1;\n",
	})
	entry := filepath.Join(dir, "requires.js")

	files, edges, err := resolveAll([]Input{Path(entry)}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		canonical(t, entry),
		canonical(t, filepath.Join(dir, "foo.js")),
	}, paths(files))

	require.Len(t, edges, 2)
	assert.Equal(t, "./foo", edges[0].Specifier)
	assert.Equal(t, canonical(t, filepath.Join(dir, "foo.js")), edges[0].To)
	assert.Equal(t, "fs", edges[1].Specifier)
	assert.True(t, edges[1].External)
	assert.Empty(t, edges[1].To)
}

func TestResolveShallow(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"requires.js": "var foo = require('./foo');\n",
		"foo.js":      "module.exports = 1;\n",
	})
	files, edges, err := resolveAll(
		[]Input{Path(filepath.Join(dir, "requires.js"))},
		Options{Shallow: true},
	)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Empty(t, edges)
}

func TestResolveLiteralPassesThrough(t *testing.T) {
	t.Parallel()

	for _, shallow := range []bool{true, false} {
		files, _, err := resolveAll(
			[]Input{Literal("memory.js", "/** x */\nvar x = require('./nowhere');\n")},
			Options{Shallow: shallow},
		)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "memory.js", files[0].Path)
		assert.Equal(t, "/** x */\nvar x = require('./nowhere');\n", files[0].Source)
		assert.True(t, files[0].Literal)
	}
}

func TestResolveDirectory(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"b.js":                   "",
		"a.ts":                   "",
		"lib/c.mjs":              "",
		"notes.txt":              "",
		"node_modules/dep/x.js":  "",
		"lib/component.test.jsx": "",
	})
	files, _, err := resolveAll([]Input{Path(dir)}, Options{Shallow: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		canonical(t, filepath.Join(dir, "a.ts")),
		canonical(t, filepath.Join(dir, "b.js")),
		canonical(t, filepath.Join(dir, "lib/c.mjs")),
		canonical(t, filepath.Join(dir, "lib/component.test.jsx")),
	}, paths(files))
}

func TestResolveGlob(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.js":   "",
		"b.js":   "",
		"c.json": "",
	})
	files, _, err := resolveAll([]Input{Path(filepath.Join(dir, "*"))}, Options{Shallow: true})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestResolveMissingEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, _, err := resolveAll([]Input{Path(filepath.Join(dir, "missing.js"))}, Options{})
	require.Error(t, err)

	var rerr *model.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, filepath.Join(dir, "missing.js"), rerr.Path)

	_, _, err = resolveAll([]Input{Path(filepath.Join(dir, "*.js"))}, Options{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveCycleAndDiamond(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.js": "import b from './b.js';\nimport c from './c';\n",
		"b.js": "export { d } from './d';\nrequire('./a');\n",
		"c.js": "const d = require('./d.js');\n",
		"d.js": "export const d = () => import('./a.js');\n",
	})

	files, edges, err := resolveAll([]Input{Path(filepath.Join(dir, "a.js"))}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		canonical(t, filepath.Join(dir, "a.js")),
		canonical(t, filepath.Join(dir, "b.js")),
		canonical(t, filepath.Join(dir, "c.js")),
		canonical(t, filepath.Join(dir, "d.js")),
	}, paths(files))
	assert.Len(t, edges, 6)
}

func TestResolveDuplicateEntries(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.js": ""})
	entry := filepath.Join(dir, "a.js")
	files, _, err := resolveAll([]Input{Path(entry), Path(dir), Path(entry)}, Options{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestResolveUnresolvedDependencyIsLeaf(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.js": "require('./gone');\n"})
	files, edges, err := resolveAll([]Input{Path(filepath.Join(dir, "a.js"))}, Options{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
	require.Len(t, edges, 1)
	assert.False(t, edges[0].External)
	assert.Empty(t, edges[0].To)
}

// ghostResolver resolves every internal specifier to a file that does not
// exist.
type ghostResolver struct{ target string }

func (ghostResolver) Classify(spec string) Class { return Internal }

func (g ghostResolver) Resolve(string, string) (string, error) { return g.target, nil }

func TestResolveUnreadableDependencyIsRecorded(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.js": "require('./ghost');\n"})
	ghost := filepath.Join(dir, "ghost.js")

	res, err := Resolve(context.Background(),
		[]Input{Path(filepath.Join(dir, "a.js"))},
		Options{Modules: ghostResolver{target: ghost}},
	)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, ghost, res.Failures[0].Path)
	assert.ErrorIs(t, res.Failures[0], model.ErrUnreadable)
}

func TestNodeResolver(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"main.js":               "",
		"exact":                 "",
		"lib/util.ts":           "",
		"pkg/package.json":      `{"main": "dist/entry"}`,
		"pkg/dist/entry.js":     "",
		"plain/index.jsx":       "",
		"badpkg/package.json":   `{not json`,
		"badpkg/index.js":       "",
		"mainless/package.json": `{"name": "x"}`,
		"mainless/index.cjs":    "",
	})
	from := filepath.Join(dir, "main.js")
	r := NodeResolver{Extensions: DefaultExtensions}

	tcs := map[string]struct {
		spec string
		want string
	}{
		"exact path":           {spec: "./exact", want: "exact"},
		"extension appended":   {spec: "./lib/util", want: "lib/util.ts"},
		"package main":         {spec: "./pkg", want: "pkg/dist/entry.js"},
		"index file":           {spec: "./plain", want: "plain/index.jsx"},
		"bad package.json":     {spec: "./badpkg", want: "badpkg/index.js"},
		"package without main": {spec: "./mainless", want: "mainless/index.cjs"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Resolve(from, tc.spec)
			require.NoError(t, err)
			assert.Equal(t, canonical(t, filepath.Join(dir, tc.want)), got)
		})
	}

	_, err := r.Resolve(from, "./nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestNodeResolverClassify(t *testing.T) {
	t.Parallel()

	r := NodeResolver{}
	assert.Equal(t, Internal, r.Classify("./a"))
	assert.Equal(t, Internal, r.Classify("../a"))
	assert.Equal(t, Internal, r.Classify("/abs/a"))
	assert.Equal(t, External, r.Classify("lodash"))
	assert.Equal(t, External, r.Classify("@scope/pkg"))
	assert.Equal(t, External, r.Classify("node:fs"))
}

func TestSpecifiers(t *testing.T) {
	t.Parallel()

	source := `import a from "./a";
import * as b from './b';
import './side-effect';
export { c } from './c';
export * from './d';
const e = require('./e');
const again = require('./a');
const lazy = import('./f');
const dynamic = require(name);
`
	got, err := Specifiers(context.Background(), "x.js", []byte(source))
	require.NoError(t, err)
	assert.Equal(t, []string{"./a", "./b", "./side-effect", "./c", "./d", "./e", "./f"}, got)

	got, err = Specifiers(context.Background(), "x.ts", []byte("import type { T } from './types';\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"./types"}, got)

	got, err = Specifiers(context.Background(), "empty.js", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
