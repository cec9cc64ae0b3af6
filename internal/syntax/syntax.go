// Package syntax provides a generic depth-first traversal over tree-sitter
// syntax trees and a lightweight reference type for nodes that outlive the
// function that found them.
package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// NodeRef is a read-only back-reference into a parsed file's syntax tree.
// It is only valid while the owning tree is open.
type NodeRef struct {
	Node   *sitter.Node
	Source []byte
}

// Valid reports whether r points at a node.
func (r NodeRef) Valid() bool {
	return r.Node != nil && !r.Node.IsNull()
}

// Kind returns the node's grammar type, or "" for an empty reference.
func (r NodeRef) Kind() string {
	if !r.Valid() {
		return ""
	}
	return r.Node.Type()
}

// Text returns the source text spanned by the node.
func (r NodeRef) Text() string {
	if !r.Valid() {
		return ""
	}
	return Text(r.Node, r.Source)
}

// Lines returns the 1-based start and end lines of the node.
func (r NodeRef) Lines() (start, end int) {
	if !r.Valid() {
		return 0, 0
	}
	return Lines(r.Node)
}

// Text returns the source text of a tree-sitter node.
func Text(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// Lines returns the 1-based start and end lines of n.
func Lines(n *sitter.Node) (start, end int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// Visitor handles a single node. Returning true stops the traversal.
type Visitor func(n *sitter.Node) bool

// Table maps node kinds to the visitor invoked for them.
type Table map[string]Visitor

// Walk visits root and every descendant in depth-first pre-order, invoking
// the visitor registered for each node's kind. Nodes without a visitor are
// descended into. It reports whether a visitor stopped the walk.
func Walk(root *sitter.Node, table Table) bool {
	return Each(root, func(n *sitter.Node) bool {
		if v, ok := table[n.Type()]; ok {
			return v(n)
		}
		return false
	})
}

// Each calls fn for root and every descendant in depth-first pre-order until
// fn returns true. It reports whether fn stopped the walk.
func Each(root *sitter.Node, fn func(n *sitter.Node) bool) bool {
	if root == nil || root.IsNull() {
		return false
	}
	if fn(root) {
		return true
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		if Each(root.Child(i), fn) {
			return true
		}
	}
	return false
}
