// Package dag implements the causal graph CRDT: a directed-acyclic-graph
// whose edges are an observed-remove set and whose strengths are
// max-registers, with deterministic cycle resolution after merge.
package dag

import (
	"sort"
	"time"

	"cortex/internal/core"
	"cortex/internal/crdt"
)

// Edge is a directed edge key in the causal graph.
type Edge struct {
	Source string
	Target string
}

// Graph maintains the DAG invariant across concurrent edits from
// multiple agents, grounded on the weakest-edge-removal resolution
// strategy: edges are add-wins (OR-Set), strengths are monotonic
// max-registers, and any cycle introduced by a merge is resolved by
// repeatedly dropping the weakest edge of a detected cycle until none
// remains.
type Graph struct {
	edges        *crdt.ORSet[Edge]
	strengths    map[Edge]*crdt.MaxRegister[float64]
	seqCounters  map[string]uint64
}

// New constructs an empty causal graph.
func New() *Graph {
	return &Graph{
		edges:       crdt.NewORSet[Edge](),
		strengths:   make(map[Edge]*crdt.MaxRegister[float64]),
		seqCounters: make(map[string]uint64),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AddEdge adds source->target with the given strength. It rejects
// self-loops and any edge that would introduce a cycle, checked via a
// local reachability DFS from target back to source.
func (g *Graph) AddEdge(source, target string, strength float64, agent string, seq uint64) error {
	if source == target {
		return core.NewCyclicDependencyError(source + " -> " + source)
	}
	edge := Edge{Source: source, Target: target}
	if g.wouldCreateCycle(edge) {
		return core.NewCyclicDependencyError(source + " -> " + target)
	}

	g.edges.Add(edge, agent, seq)
	if g.seqCounters[agent] < seq {
		g.seqCounters[agent] = seq
	}

	clamped := clamp01(strength)
	if reg, ok := g.strengths[edge]; ok {
		reg.SetAt(clamped, time.Now())
	} else {
		r := crdt.NewMaxRegister(clamped, time.Now())
		g.strengths[edge] = &r
	}
	return nil
}

// RemoveEdge tombstones every observed tag for source->target. The
// strength register is retained so a later concurrent re-add composes
// with the prior observed max.
func (g *Graph) RemoveEdge(source, target string) {
	g.edges.Remove(Edge{Source: source, Target: target})
}

// UpdateStrength raises the strength of an existing edge (monotonic only).
func (g *Graph) UpdateStrength(source, target string, strength float64) {
	edge := Edge{Source: source, Target: target}
	if reg, ok := g.strengths[edge]; ok {
		reg.SetAt(clamp01(strength), time.Now())
	}
}

// Strength returns the current strength of an edge, if known.
func (g *Graph) Strength(source, target string) (float64, bool) {
	reg, ok := g.strengths[Edge{Source: source, Target: target}]
	if !ok {
		return 0, false
	}
	return reg.Get(), true
}

// Edges returns every currently live edge, in unspecified order.
func (g *Graph) Edges() []Edge {
	return g.edges.Elements()
}

// Merge merges another graph's OR-Set, per-edge strengths, and sequence
// counters into g, then resolves any cycle the merge introduced.
func (g *Graph) Merge(other *Graph) {
	g.edges.Merge(other.edges)

	for edge, otherReg := range other.strengths {
		if reg, ok := g.strengths[edge]; ok {
			reg.Merge(otherReg)
		} else {
			clone := crdt.NewMaxRegister(otherReg.Get(), time.Time{})
			g.strengths[edge] = &clone
		}
	}

	for agent, seq := range other.seqCounters {
		if g.seqCounters[agent] < seq {
			g.seqCounters[agent] = seq
		}
	}

	g.resolveCycles()
}

// wouldCreateCycle runs a DFS from edge.Target; if edge.Source is
// reachable, adding edge.Source -> edge.Target would close a cycle.
func (g *Graph) wouldCreateCycle(edge Edge) bool {
	visited := make(map[string]bool)
	stack := []string{edge.Target}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == edge.Source {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true

		for _, present := range g.edges.Elements() {
			if present.Source == node {
				stack = append(stack, present.Target)
			}
		}
	}
	return false
}

// DetectCycle returns the edges forming a cycle, or nil if the live edge
// set is acyclic.
func (g *Graph) DetectCycle() []Edge {
	present := g.edges.Elements()
	adj := make(map[string][]Edge)
	nodes := make(map[string]bool)
	for _, e := range present {
		adj[e.Source] = append(adj[e.Source], e)
		nodes[e.Source] = true
		nodes[e.Target] = true
	}

	sortedNodes := make([]string, 0, len(nodes))
	for n := range nodes {
		sortedNodes = append(sortedNodes, n)
	}
	sort.Strings(sortedNodes)

	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	var path []Edge

	var dfs func(node string) []Edge
	dfs = func(node string) []Edge {
		visited[node] = true
		inStack[node] = true
		for _, e := range adj[node] {
			if inStack[e.Target] {
				// Found the back edge; slice the path from its first
				// occurrence of e.Target.
				cycleStart := 0
				for i, pe := range path {
					if pe.Source == e.Target {
						cycleStart = i
						break
					}
				}
				cycle := append(append([]Edge{}, path[cycleStart:]...), e)
				return cycle
			}
			if !visited[e.Target] {
				path = append(path, e)
				if cyc := dfs(e.Target); cyc != nil {
					return cyc
				}
				path = path[:len(path)-1]
			}
		}
		inStack[node] = false
		return nil
	}

	for _, n := range sortedNodes {
		if visited[n] {
			continue
		}
		path = nil
		if cyc := dfs(n); cyc != nil {
			return cyc
		}
	}
	return nil
}

// resolveCycles repeatedly detects a cycle and removes its weakest edge
// (ascending strength, then lexicographic (source,target) tie-break)
// until the live edge set is acyclic. This tie-break is total and deterministic, so
// replicas merging the same deltas in any order converge to the same
// acyclic graph.
func (g *Graph) resolveCycles() {
	for {
		cycle := g.DetectCycle()
		if cycle == nil {
			return
		}
		weakest := cycle[0]
		weakestStrength := g.strengthOrZero(weakest)
		for _, e := range cycle[1:] {
			s := g.strengthOrZero(e)
			if s < weakestStrength || (s == weakestStrength && lexLess(e, weakest)) {
				weakest = e
				weakestStrength = s
			}
		}
		g.edges.Remove(weakest)
	}
}

func (g *Graph) strengthOrZero(e Edge) float64 {
	if reg, ok := g.strengths[e]; ok {
		return reg.Get()
	}
	return 0
}

func lexLess(a, b Edge) bool {
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Target < b.Target
}
