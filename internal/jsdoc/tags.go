package jsdoc

import (
	"errors"
	"strings"
	"unicode"

	"github.com/phobologic/docjs/internal/model"
)

var (
	errUnterminatedType = errors.New("unterminated type expression")
	errMissingType      = errors.New("missing type")
	errMissingName      = errors.New("missing name")
	errUnterminatedName = errors.New("unterminated optional name")
)

// shape describes which fields a tag carries after its title.
type shape struct {
	typ      bool // {Type} may follow the title
	needType bool
	name     bool // a name may follow the type
	needName bool
	optional bool // [name=default] syntax allowed
	text     bool // trailing text becomes the description
	flag     bool // no content expected
}

var (
	shapeText  = shape{text: true}
	shapeFlag  = shape{flag: true}
	shapeName  = shape{name: true, needName: true}
	shapeParam = shape{typ: true, name: true, needName: true, optional: true, text: true}
	shapeTyped = shape{typ: true, text: true}
	shapeDecl  = shape{typ: true, name: true, text: true}
)

var shapes = map[string]shape{
	"param":           shapeParam,
	"property":        shapeParam,
	"returns":         shapeTyped,
	"throws":          shapeTyped,
	"yields":          shapeTyped,
	"type":            {typ: true, needType: true},
	"enum":            {typ: true},
	"this":            {typ: true, text: true},
	"typedef":         {typ: true, name: true, needName: true, text: true},
	"callback":        shapeName,
	"name":            shapeName,
	"event":           shapeName,
	"alias":           shapeName,
	"memberof":        shapeName,
	"lends":           shapeName,
	"mixes":           shapeName,
	"augments":        shapeName,
	"implements":      shapeName,
	"fires":           shapeName,
	"listens":         shapeName,
	"requires":        shapeName,
	"borrows":         shapeText,
	"kind":            shapeName,
	"access":          shapeName,
	"class":           shapeDecl,
	"module":          shapeDecl,
	"namespace":       shapeDecl,
	"constant":        shapeDecl,
	"member":          shapeDecl,
	"function":        {name: true},
	"interface":       {name: true},
	"mixin":           {name: true},
	"external":        {name: true},
	"example":         shapeText,
	"see":             shapeText,
	"since":           shapeText,
	"deprecated":      shapeText,
	"description":     shapeText,
	"summary":         shapeText,
	"author":          shapeText,
	"version":         shapeText,
	"license":         shapeText,
	"copyright":       shapeText,
	"todo":            shapeText,
	"default":         shapeText,
	"tutorial":        shapeText,
	"variation":       shapeText,
	"file":            shapeText,
	"private":         shapeFlag,
	"public":          shapeFlag,
	"protected":       shapeFlag,
	"package":         shapeFlag,
	"ignore":          shapeFlag,
	"static":          shapeFlag,
	"instance":        shapeFlag,
	"inner":           shapeFlag,
	"global":          shapeFlag,
	"async":           shapeFlag,
	"generator":       shapeFlag,
	"abstract":        shapeFlag,
	"override":        shapeFlag,
	"readonly":        shapeFlag,
	"inheritdoc":      shapeFlag,
	"hideconstructor": shapeFlag,
}

// parse fills tag from the text following its title. On error the
// returned tag keeps whatever was parsed before the problem; a tag with an
// empty Title should be dropped.
func (s shape) parse(tag model.Tag, rest string) (model.Tag, error) {
	if s.flag {
		return tag, nil
	}

	if s.typ && strings.HasPrefix(rest, "{") {
		expr, remaining, err := splitType(rest)
		if err != nil {
			tag.Description = rest
			return tag, err
		}
		tag.Type = ParseType(expr)
		rest = strings.TrimSpace(remaining)
	} else if s.needType {
		return tag, errMissingType
	}

	if s.name {
		if s.optional && strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return model.Tag{}, errUnterminatedName
			}
			inner := rest[1:end]
			name, def, _ := strings.Cut(inner, "=")
			tag.Name = strings.TrimSpace(name)
			tag.Default = strings.TrimSpace(def)
			if tag.Type == nil {
				tag.Type = &model.Type{}
			}
			tag.Type.Optional = true
			rest = strings.TrimSpace(rest[end+1:])
		} else {
			name, remaining := splitWord(rest)
			if s.text || name != "" {
				tag.Name = name
				rest = remaining
			}
		}
		if tag.Name == "" && s.needName {
			return model.Tag{}, errMissingName
		}
	}

	if s.text || !s.name {
		rest = strings.TrimPrefix(rest, "- ")
		tag.Description = rest
	}
	return tag, nil
}

// splitType splits a leading {type} from s, honoring nested braces.
func splitType(s string) (expr, rest string, err error) {
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), s[i+1:], nil
			}
		}
	}
	return "", s, errUnterminatedType
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// ParseType parses a JSDoc type expression, lifting the optional (T=),
// nullable (?T), non-null (!T) and variadic (...T) modifiers into flags.
func ParseType(expr string) *model.Type {
	t := &model.Type{}
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "...") {
		t.Variadic = true
		expr = strings.TrimPrefix(expr, "...")
	}
	if strings.HasSuffix(expr, "=") {
		t.Optional = true
		expr = strings.TrimSuffix(expr, "=")
	}
	switch {
	case strings.HasPrefix(expr, "?") && len(expr) > 1:
		t.Nullable = true
		expr = expr[1:]
	case strings.HasPrefix(expr, "!"):
		expr = expr[1:]
	}
	t.Expression = expr
	return t
}
