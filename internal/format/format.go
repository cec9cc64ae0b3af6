// Package format renders documentation entities as JSON, Markdown, HTML or
// TOON.
package format

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/phobologic/docjs/internal/model"
)

// Options carries everything a formatter may need beyond the entities.
type Options struct {
	// Template is the path of a Markdown template replacing the built-in
	// one. Used by the Markdown and HTML formatters.
	Template string

	// Name titles the output (HTML page title, TOON header).
	Name string

	// Root, when set, makes file paths in human-oriented output relative.
	Root string

	// Files and Edges describe the run for formats that include the file
	// dependency graph.
	Files []model.FileDescriptor
	Edges []model.DependencyEdge
}

// Formatter renders an entity sequence. Implementations must not modify the
// entities and must tolerate entities without names, params or with errors.
type Formatter interface {
	Format(entities []model.Entity, opts Options) (string, error)
}

var formatters = map[string]Formatter{
	"json": JSON{},
	"md":   Markdown{},
	"html": HTML{},
	"toon": TOON{},
}

// Names returns the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ByName returns the formatter registered under name. "markdown" is
// accepted for "md".
func ByName(name string) (Formatter, error) {
	name = strings.ToLower(name)
	if name == "markdown" {
		name = "md"
	}
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

func relPath(root, path string) string {
	if root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
