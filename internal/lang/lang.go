// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars.
package lang

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[strings.ToLower(ext)]
}

// ForPath returns the language for a file path. Files with an unknown
// extension are parsed as JavaScript.
func ForPath(path string) *Language {
	if name := ForExtension(filepath.Ext(path)); name != "" {
		return Languages[name]
	}
	return Languages["javascript"]
}

// DefaultExtensions returns every registered extension, sorted.
func DefaultExtensions() []string {
	var exts []string
	for ext := range getExtensionMap() {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// HasExtension reports whether path ends in one of exts.
func HasExtension(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}
