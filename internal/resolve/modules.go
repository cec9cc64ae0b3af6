package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/docjs/internal/model"
)

// Class says whether a module specifier names a project file or a package
// provided by a dependency manager.
type Class int

const (
	Internal Class = iota
	External
)

func (c Class) String() string {
	if c == External {
		return "external"
	}
	return "internal"
}

// ModuleResolver classifies module specifiers and maps internal ones to
// canonical file paths.
type ModuleResolver interface {
	Classify(specifier string) Class
	Resolve(fromPath, specifier string) (string, error)
}

// NodeResolver resolves specifiers the way Node.js resolves relative
// requires: exact file, file plus a known extension, then a directory's
// package.json "main" or index file.
type NodeResolver struct {
	Extensions []string
}

// Classify treats relative and absolute specifiers as internal and
// everything else (bare package names, node: builtins, URLs) as external.
func (r NodeResolver) Classify(specifier string) Class {
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") || filepath.IsAbs(specifier) {
		return Internal
	}
	return External
}

// Resolve returns the canonical path of specifier as required from fromPath.
func (r NodeResolver) Resolve(fromPath, specifier string) (string, error) {
	base := specifier
	if !filepath.IsAbs(base) {
		base = filepath.Join(filepath.Dir(fromPath), specifier)
	}
	if p, ok := r.resolveFile(base); ok {
		return Canonical(p)
	}
	if p, ok := r.resolveDir(base); ok {
		return Canonical(p)
	}
	return "", fmt.Errorf("cannot find module %q from %s: %w", specifier, fromPath, model.ErrNotFound)
}

func (r NodeResolver) resolveFile(base string) (string, bool) {
	if isFile(base) {
		return base, true
	}
	for _, ext := range r.Extensions {
		if isFile(base + ext) {
			return base + ext, true
		}
	}
	return "", false
}

func (r NodeResolver) resolveDir(dir string) (string, bool) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false
	}
	if main := packageMain(dir); main != "" {
		target := filepath.Join(dir, main)
		if p, ok := r.resolveFile(target); ok {
			return p, true
		}
		if p, ok := r.resolveIndex(target); ok {
			return p, true
		}
	}
	return r.resolveIndex(dir)
}

func (r NodeResolver) resolveIndex(dir string) (string, bool) {
	for _, ext := range r.Extensions {
		if p := filepath.Join(dir, "index"+ext); isFile(p) {
			return p, true
		}
	}
	return "", false
}

func packageMain(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Main
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Canonical returns the absolute, symlink-free form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
