// Package resolve turns entry inputs into the ordered set of source files a
// documentation run parses, optionally following module references.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/docjs/internal/discover"
	"github.com/phobologic/docjs/internal/lang"
	"github.com/phobologic/docjs/internal/model"
)

// DefaultExtensions are the file extensions followed when Options.Extensions
// is empty.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}

// Input is an entry to a run: either a path (file, directory or glob) or an
// in-memory source file.
type Input struct {
	Path    string
	Literal *model.FileDescriptor
}

// Path returns a filesystem input.
func Path(p string) Input { return Input{Path: p} }

// Literal returns an in-memory input. It is never read from disk.
func Literal(file, source string) Input {
	return Input{Literal: &model.FileDescriptor{Path: file, Source: source, Literal: true}}
}

// Options controls resolution.
type Options struct {
	// Shallow disables dependency following.
	Shallow    bool
	Extensions []string
	Modules    ModuleResolver
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Modules == nil {
		o.Modules = NodeResolver{Extensions: o.Extensions}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// visited records canonical paths already claimed by the run.
type visited struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// claim reports whether the caller is the first to claim path.
func (v *visited) claim(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.paths[path]; ok {
		return false
	}
	v.paths[path] = struct{}{}
	return true
}

// Result is the outcome of resolution.
type Result struct {
	// Files are the descriptors in discovery order.
	Files []model.FileDescriptor
	// Edges are the module references found while following dependencies.
	Edges []model.DependencyEdge
	// Failures are dependencies that could not be read and files whose
	// references could not be scanned. The run continues without them.
	Failures []*model.ResolutionError
}

// Resolve returns the files for inputs and the references between them. An
// entry that cannot be found or read returns a *model.ResolutionError; a
// dependency that cannot be read is recorded in Result.Failures.
func Resolve(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	seen := &visited{paths: make(map[string]struct{})}

	var (
		files []model.FileDescriptor
		paths []string // entries still to be read, in order
		slots []int    // index into files for each entry in paths
	)
	for _, in := range inputs {
		if in.Literal != nil {
			if seen.claim(in.Literal.Path) {
				files = append(files, *in.Literal)
			}
			continue
		}
		expanded, err := expand(in.Path, opts.Extensions)
		if err != nil {
			return nil, err
		}
		for _, p := range expanded {
			if !seen.claim(p) {
				continue
			}
			paths = append(paths, p)
			slots = append(slots, len(files))
			files = append(files, model.FileDescriptor{Path: p})
		}
	}

	sources, errs := readAll(ctx, paths)
	for i, err := range errs {
		if err != nil {
			return nil, &model.ResolutionError{Path: paths[i], Err: err}
		}
		files[slots[i]].Source = sources[i]
	}

	if opts.Shallow {
		return &Result{Files: files}, nil
	}

	res, err := follow(ctx, files, seen, opts)
	if err != nil {
		return nil, err
	}
	res.Files = append(files, res.Files...)
	return res, nil
}

// expand resolves a single path input to canonical file paths.
func expand(input string, exts []string) ([]string, error) {
	if strings.ContainsAny(input, "*?[") {
		matches, err := filepath.Glob(input)
		if err != nil {
			return nil, &model.ResolutionError{Path: input, Err: err}
		}
		if len(matches) == 0 {
			return nil, &model.ResolutionError{Path: input, Err: model.ErrNotFound}
		}
		var out []string
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || !lang.HasExtension(m, exts) {
				continue
			}
			c, err := Canonical(m)
			if err != nil {
				return nil, &model.ResolutionError{Path: m, Err: err}
			}
			out = append(out, c)
		}
		return out, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &model.ResolutionError{Path: input, Err: model.ErrNotFound}
		}
		return nil, &model.ResolutionError{Path: input, Err: fmt.Errorf("%w: %v", model.ErrUnreadable, err)}
	}

	if !info.IsDir() {
		c, err := Canonical(input)
		if err != nil {
			return nil, &model.ResolutionError{Path: input, Err: err}
		}
		return []string{c}, nil
	}

	entries, err := discover.Files(input, exts)
	if err != nil {
		return nil, &model.ResolutionError{Path: input, Err: fmt.Errorf("%w: %v", model.ErrUnreadable, err)}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		c, err := Canonical(e.Abs)
		if err != nil {
			return nil, &model.ResolutionError{Path: e.Abs, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// readAll reads paths concurrently. Results are index-aligned with paths.
func readAll(ctx context.Context, paths []string) ([]string, []error) {
	sources := make([]string, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0) * 4)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			data, err := os.ReadFile(p)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %v", model.ErrUnreadable, err)
				return nil
			}
			sources[i] = string(data)
			return nil
		})
	}
	_ = g.Wait()
	return sources, errs
}

// follow walks module references breadth-first from the entry files. Each
// level is scanned concurrently; edges are then resolved and claimed in the
// level's order so that emission order does not depend on scheduling. The
// returned Files hold only the dependencies.
func follow(ctx context.Context, entries []model.FileDescriptor, seen *visited, opts Options) (*Result, error) {
	res := &Result{}

	level := entries
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		specs := make([][]string, len(level))
		scanErrs := make([]error, len(level))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, fd := range level {
			if !lang.HasExtension(fd.Path, opts.Extensions) {
				continue
			}
			g.Go(func() error {
				s, err := Specifiers(gctx, fd.Path, []byte(fd.Source))
				if err != nil {
					scanErrs[i] = err
					return nil
				}
				specs[i] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []string
		for i, fd := range level {
			if scanErrs[i] != nil {
				opts.Logger.Warn("scanning dependencies",
					slog.String("file", fd.Path),
					slog.Any("err", scanErrs[i]),
				)
				res.Failures = append(res.Failures, &model.ResolutionError{Path: fd.Path, Err: scanErrs[i]})
				continue
			}
			for _, spec := range specs[i] {
				edge := model.DependencyEdge{From: fd.Path, Specifier: spec}
				if opts.Modules.Classify(spec) == External {
					edge.External = true
					res.Edges = append(res.Edges, edge)
					opts.Logger.Debug("external module",
						slog.String("file", fd.Path),
						slog.String("module", spec),
					)
					continue
				}

				target, err := opts.Modules.Resolve(fd.Path, spec)
				if err != nil {
					res.Edges = append(res.Edges, edge)
					opts.Logger.Debug("unresolved module",
						slog.String("file", fd.Path),
						slog.String("module", spec),
						slog.Any("err", err),
					)
					continue
				}
				edge.To = target
				res.Edges = append(res.Edges, edge)

				if lang.HasExtension(target, opts.Extensions) && seen.claim(target) {
					next = append(next, target)
				}
			}
		}

		sources, errs := readAll(ctx, next)
		level = level[:0:0]
		for i, p := range next {
			if errs[i] != nil {
				opts.Logger.Warn("skipping dependency",
					slog.String("file", p),
					slog.Any("err", errs[i]),
				)
				res.Failures = append(res.Failures, &model.ResolutionError{Path: p, Err: errs[i]})
				continue
			}
			level = append(level, model.FileDescriptor{Path: p, Source: sources[i]})
		}
		res.Files = append(res.Files, level...)
	}

	return res, nil
}
