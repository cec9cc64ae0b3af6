// Package graph aggregates module references into a file dependency graph
// and ranks files by how heavily the rest of the run depends on them.
package graph

import (
	"math"
	"slices"
	"sort"

	"github.com/phobologic/docjs/internal/model"
)

// Dependency is an aggregated edge between two files of a run.
type Dependency struct {
	Source     string
	Target     string
	Specifiers []string
}

// Build aggregates resolved internal edges into one dependency per file
// pair. Self-edges and edges leaving the run's file set are dropped.
func Build(files []model.FileDescriptor, edges []model.DependencyEdge) []Dependency {
	inRun := make(map[string]struct{}, len(files))
	for i := range files {
		inRun[files[i].Path] = struct{}{}
	}

	type edgeKey struct{ src, tgt string }
	specifiers := make(map[edgeKey][]string)

	for i := range edges {
		e := &edges[i]
		if e.External || e.To == "" || e.To == e.From {
			continue
		}
		if _, ok := inRun[e.To]; !ok {
			continue
		}
		key := edgeKey{e.From, e.To}
		if !slices.Contains(specifiers[key], e.Specifier) {
			specifiers[key] = append(specifiers[key], e.Specifier)
		}
	}

	var deps []Dependency
	for key, specs := range specifiers {
		deps = append(deps, Dependency{
			Source:     key.src,
			Target:     key.tgt,
			Specifiers: specs,
		})
	}

	// Sort for deterministic output
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// Externals returns the distinct external module names referenced by edges,
// sorted.
func Externals(edges []model.DependencyEdge) []string {
	seen := make(map[string]struct{})
	for i := range edges {
		if edges[i].External {
			seen[edges[i].Specifier] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Unresolved returns the internal edges whose target could not be found.
func Unresolved(edges []model.DependencyEdge) []model.DependencyEdge {
	var out []model.DependencyEdge
	for _, e := range edges {
		if !e.External && e.To == "" {
			out = append(out, e)
		}
	}
	return out
}

// Rank applies PageRank over deps and returns a score per file path. Files
// with no edges share the rank uniformly.
func Rank(files []model.FileDescriptor, deps []Dependency) map[string]float64 {
	if len(files) == 0 {
		return nil
	}

	nodes := make(map[string]struct{}, len(files))
	for i := range files {
		nodes[files[i].Path] = struct{}{}
	}

	if len(deps) == 0 {
		uniform := 1.0 / float64(len(nodes))
		ranks := make(map[string]float64, len(nodes))
		for node := range nodes {
			ranks[node] = uniform
		}
		return ranks
	}

	// Edge from source to target means source imports target.
	// Each distinct specifier counts as one edge.
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for _, d := range deps {
		for range d.Specifiers {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	return pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	rank := make(map[string]float64, n)
	for node := range nodes {
		rank[node] = 1.0 / float64(n)
	}
	teleport := (1.0 - alpha) / float64(n)

	for range maxIter {
		// Files importing nothing spread their rank evenly.
		var dangling float64
		for node := range nodes {
			if outDegree[node] == 0 {
				dangling += rank[node]
			}
		}

		next := make(map[string]float64, n)
		for node := range nodes {
			next[node] = teleport + alpha*dangling/float64(n)
		}
		for src, targets := range outEdges {
			share := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				next[tgt] += share
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(next[node] - rank[node])
		}
		rank = next
		if diff < tol {
			break
		}
	}

	return rank
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
