package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/docjs/internal/graph"
	"github.com/phobologic/docjs/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "getOne", "getOne"},
		{"leading space", " a", `" a"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "true", `"true"`},
		{"Null keyword", "Null", `"Null"`},
		{"integer", "42", "42"},
		{"float", "0.2500", "0.2500"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "src/a.js:12", `"src/a.js:12"`},
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"array type", "Array<string>", "Array<string>"},
		{"record type", "{a: number}", `"{a: number}"`},
		{"dash prefix", "-flag", `"-flag"`},
		{"path", "lib/index.js", "lib/index.js"},
		{"member path", "employee.name", "employee.name"},
		{"union", "(number|string)", "(number|string)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Name: "widgets",
		Root: "widgets",
		Files: []File{
			{Path: "index.js", Language: "javascript", Rank: 0.25},
			{Path: "lib/util.ts", Language: "typescript", Rank: 0.75},
		},
		Entities: []model.Entity{
			{
				Name:        "hire",
				Kind:        "function",
				Description: "Hire someone.\n\nMore detail.",
				Loc:         model.Loc{Start: model.Position{Line: 3}},
				Context:     model.Context{File: "index.js"},
				Params: []model.Param{{
					Name: "employee",
					Type: &model.Type{Expression: "Object"},
					Properties: []model.Param{{
						Name:        "name",
						Type:        &model.Type{Expression: "string"},
						Optional:    true,
						Default:     "anon",
						Description: "The\nname.",
					}},
				}},
				Returns: []model.Return{{Type: &model.Type{Expression: "boolean"}}},
			},
			{
				Description: "Loose comment.",
				Loc:         model.Loc{Start: model.Position{Line: 9}},
				Context:     model.Context{File: "lib/util.ts"},
			},
		},
		Dependencies: []graph.Dependency{
			{Source: "index.js", Target: "lib/util.ts", Specifiers: []string{"./lib/util"}},
		},
		Externals: []string{"lodash"},
	}

	got := Encode(doc)
	want := strings.Join([]string{
		"name: widgets",
		"root: widgets",
		"files[2]{path,language,rank}:",
		"  index.js,javascript,0.2500",
		"  lib/util.ts,typescript,0.7500",
		"entities[2]{file,line,name,kind,memberof,access,summary}:",
		`  index.js,3,hire,function,"","",Hire someone.`,
		`  lib/util.ts,9,"","","","",Loose comment.`,
		"params[2]{entity,name,type,optional,default,description}:",
		`  hire,employee,Object,"false","",""`,
		`  hire,employee.name,string,"true",anon,The name.`,
		"returns[1]{entity,type,description}:",
		`  hire,boolean,""`,
		"dependencies[1]{source,target,specifiers}:",
		"  index.js,lib/util.ts,./lib/util",
		"externals[1]{module}:",
		"  lodash",
	}, "\n")

	if got != want {
		t.Errorf("Encode mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(&Document{Name: "empty", Root: "empty"})
	for _, section := range []string{
		"files[0]{path,language,rank}:",
		"entities[0]{file,line,name,kind,memberof,access,summary}:",
		"dependencies[0]{source,target,specifiers}:",
	} {
		if !strings.Contains(got, section) {
			t.Errorf("expected %q, got:\n%s", section, got)
		}
	}
	if strings.Contains(got, "externals") {
		t.Errorf("externals section should be omitted when empty:\n%s", got)
	}
}

func TestEntityID(t *testing.T) {
	t.Parallel()

	e := model.Entity{Name: "render", MemberOf: "Widget"}
	if got := entityID(&e); got != "Widget.render" {
		t.Errorf("entityID = %q", got)
	}
	e = model.Entity{Context: model.Context{File: "a.js"}, Loc: model.Loc{Start: model.Position{Line: 4}}}
	if got := entityID(&e); got != "a.js:4" {
		t.Errorf("entityID = %q", got)
	}
}
