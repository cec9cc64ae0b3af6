// Package pipeline composes resolution, extraction, tag parsing, inference
// and parameter nesting into a single documentation run.
package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/phobologic/docjs/internal/extract"
	"github.com/phobologic/docjs/internal/infer"
	"github.com/phobologic/docjs/internal/jsdoc"
	"github.com/phobologic/docjs/internal/model"
	"github.com/phobologic/docjs/internal/params"
	"github.com/phobologic/docjs/internal/resolve"
	"github.com/phobologic/docjs/internal/syntax"
)

// SortOrder selects the order of the entity sequence.
type SortOrder string

const (
	SortSource SortOrder = "source"
	SortAlpha  SortOrder = "alpha"
)

// Linker supplies source links for documented locations.
type Linker interface {
	Link(ctx context.Context, file string, loc model.Loc) *model.GitHubLink
}

// Options configures a run. The zero value follows dependencies, keeps
// every entity and orders by source position.
type Options struct {
	Resolve resolve.Options

	// Access keeps only entities whose access level is listed. An entity
	// without an access tag counts as "public". Ignored entities are
	// dropped whenever Access is set.
	Access []string
	Sort   SortOrder

	// Parser parses tags. It may carry registered tag extensions.
	Parser *jsdoc.Parser
	Links  Linker

	Workers int
	Logger  *slog.Logger
}

// Diagnostic is a problem found in a file that did not stop the run.
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.File, d.Message)
}

// Result is the output of a run.
type Result struct {
	Entities    []model.Entity
	Files       []model.FileDescriptor
	Edges       []model.DependencyEdge
	Diagnostics []Diagnostic
}

// HasErrors reports whether any entity carries tag errors or any file
// failed to parse cleanly.
func (r *Result) HasErrors() bool {
	if len(r.Diagnostics) > 0 {
		return true
	}
	for _, e := range r.Entities {
		if len(e.Errors) > 0 {
			return true
		}
	}
	return false
}

type fileResult struct {
	entities    []model.Entity
	diagnostics []Diagnostic
}

// Run resolves inputs and documents every resolved file. Resolution errors
// are fatal; everything after resolution is recorded per file and entity.
func Run(ctx context.Context, inputs []resolve.Input, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Resolve.Logger == nil {
		opts.Resolve.Logger = opts.Logger
	}
	if opts.Parser == nil {
		opts.Parser = jsdoc.New()
	}

	resolved, err := resolve.Resolve(ctx, inputs, opts.Resolve)
	if err != nil {
		return nil, err
	}
	files, edges := resolved.Files, resolved.Edges
	opts.Logger.Debug("resolved files",
		slog.Int("files", len(files)),
		slog.Int("edges", len(edges)),
	)

	results, err := documentConcurrent(ctx, files, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Files: files, Edges: edges}
	for _, f := range resolved.Failures {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{File: f.Path, Message: f.Err.Error()})
	}
	for _, r := range results {
		res.Entities = append(res.Entities, r.entities...)
		res.Diagnostics = append(res.Diagnostics, r.diagnostics...)
	}
	if res.Entities == nil {
		res.Entities = []model.Entity{}
	}

	res.Entities = filterAccess(res.Entities, opts.Access)
	if opts.Sort == SortAlpha {
		sortAlpha(res.Entities)
	}
	return res, nil
}

// documentConcurrent processes files on a bounded worker pool. Each worker
// owns its extractor; results land in index-addressed slots so output
// order matches file order regardless of scheduling.
func documentConcurrent(ctx context.Context, files []model.FileDescriptor, opts Options) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	numWorkers = min(numWorkers, len(files))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			x := extract.New()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				r, err := documentFile(ctx, x, idx, files[idx], opts)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[idx] = r
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// documentFile runs every per-file stage while the file's syntax tree is
// open, then drops the node references before the tree is released.
func documentFile(ctx context.Context, x *extract.Extractor, idx int, fd model.FileDescriptor, opts Options) (fileResult, error) {
	parsed, err := x.Extract(ctx, fd)
	if err != nil {
		return fileResult{}, err
	}
	defer parsed.Close()

	var r fileResult
	for _, se := range parsed.SyntaxErrors {
		r.diagnostics = append(r.diagnostics, Diagnostic{File: se.File, Line: se.Line, Message: "syntax error"})
	}

	r.entities = make([]model.Entity, 0, len(parsed.Comments))
	for _, c := range parsed.Comments {
		e := opts.Parser.Parse(c)
		e = infer.Name(e)
		e = infer.Kind(e)
		if orphans := params.Orphans(e.Params); len(orphans) > 0 {
			opts.Logger.Debug("parameters without a declared parent",
				slog.String("file", fd.Path),
				slog.Int("line", c.StartLine),
				slog.String("params", strings.Join(orphans, ", ")),
			)
		}
		e = params.Entity(e)

		e.Context.SortKey = sortKey(idx, c.StartLine)
		if opts.Links != nil && !fd.Literal {
			e.Context.GitHub = opts.Links.Link(ctx, fd.Path, e.Context.Loc)
		}
		e.Context.Node = syntax.NodeRef{}
		r.entities = append(r.entities, e)
	}
	return r, nil
}

func sortKey(fileIndex, line int) string {
	return fmt.Sprintf("%08d:%08d", fileIndex, line)
}

func filterAccess(entities []model.Entity, access []string) []model.Entity {
	if len(access) == 0 {
		return entities
	}
	kept := entities[:0:0]
	for _, e := range entities {
		if e.Ignore {
			continue
		}
		level := e.Access
		if level == "" {
			level = "public"
		}
		if slices.Contains(access, level) {
			kept = append(kept, e)
		}
	}
	return kept
}

// sortAlpha orders entities by name, falling back to source order for
// equal or missing names.
func sortAlpha(entities []model.Entity) {
	slices.SortStableFunc(entities, func(a, b model.Entity) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.Context.SortKey, b.Context.SortKey),
		)
	})
}
