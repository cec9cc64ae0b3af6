package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an entry path does not exist.
	ErrNotFound = errors.New("no such file or directory")
	// ErrUnreadable indicates an entry path exists but cannot be read.
	ErrUnreadable = errors.New("unreadable")
	// ErrHeadingNotFound indicates a README section heading is missing.
	ErrHeadingNotFound = errors.New("heading not found")
)

// ResolutionError reports a path that could not be resolved or read. It is
// fatal for entries; for dependencies it is recorded and the run continues.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SyntaxError reports a source file that did not parse cleanly. Comments are
// still extracted from the recovered tree.
type SyntaxError struct {
	File string
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error", e.File, e.Line)
}

// TagError is a malformed or unknown tag recorded against an entity.
type TagError struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (e TagError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
