package format

import (
	"path/filepath"

	"github.com/phobologic/docjs/internal/graph"
	"github.com/phobologic/docjs/internal/lang"
	"github.com/phobologic/docjs/internal/model"
	"github.com/phobologic/docjs/internal/toon"
)

// TOON renders entities together with the run's file dependency graph.
type TOON struct{}

func (TOON) Format(entities []model.Entity, opts Options) (string, error) {
	deps := graph.Build(opts.Files, opts.Edges)
	ranks := graph.Rank(opts.Files, deps)

	doc := &toon.Document{
		Name:      opts.Name,
		Root:      opts.Root,
		Externals: graph.Externals(opts.Edges),
	}
	if doc.Root != "" {
		doc.Root = filepath.Base(doc.Root)
	}

	for _, f := range opts.Files {
		doc.Files = append(doc.Files, toon.File{
			Path:     relPath(opts.Root, f.Path),
			Language: lang.ForPath(f.Path).Name,
			Rank:     ranks[f.Path],
		})
	}
	for _, d := range deps {
		d.Source = relPath(opts.Root, d.Source)
		d.Target = relPath(opts.Root, d.Target)
		doc.Dependencies = append(doc.Dependencies, d)
	}
	doc.Entities = make([]model.Entity, len(entities))
	for i, e := range entities {
		e.Context.File = relPath(opts.Root, e.Context.File)
		doc.Entities[i] = e
	}

	return toon.Encode(doc), nil
}
