// Representation of the target dependency graph the emitter walks.
// The graph is discovered and populated by upstream collaborators (project
// parsing is out of scope here); this file only has enough machinery to
// answer "who depends on whom" and to reject a graph with a cycle.

package core

import "fmt"

// TargetGraph is a directed acyclic graph of targets. An edge "A depends on
// B" means A's begin node must order-depend on B's finish node.
type TargetGraph struct {
	targets map[TargetName]bool
	// deps[a] is the set of targets a depends on.
	deps map[TargetName][]TargetName
	// order is the sequence targets were added in; the emitter walks in
	// this order, though spec.md is explicit that any order is legal since
	// the downstream executor re-sorts.
	order []TargetName
}

// NewTargetGraph returns an empty graph.
func NewTargetGraph() *TargetGraph {
	return &TargetGraph{
		targets: map[TargetName]bool{},
		deps:    map[TargetName][]TargetName{},
	}
}

// AddTarget registers a target with no dependencies. It is a no-op if the
// target is already present.
func (g *TargetGraph) AddTarget(name TargetName) {
	if g.targets[name] {
		return
	}
	g.targets[name] = true
	g.order = append(g.order, name)
}

// AddDependency records that "from" depends on "to". Both must already have
// been added with AddTarget.
func (g *TargetGraph) AddDependency(from, to TargetName) {
	g.deps[from] = append(g.deps[from], to)
}

// Targets returns all targets in the order they were added.
func (g *TargetGraph) Targets() []TargetName {
	return g.order
}

// DependenciesOf returns the direct predecessors (dependencies) of a target,
// i.e. the targets that must finish before this one begins.
func (g *TargetGraph) DependenciesOf(name TargetName) []TargetName {
	return g.deps[name]
}

// CheckAcyclic walks the graph looking for a cycle. It returns an error
// naming the cycle if one is found; a caller is expected to treat this as
// fatal, per spec.md's "cycles are a caller's error".
func (g *TargetGraph) CheckAcyclic() error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	colour := make(map[TargetName]int, len(g.targets))
	var stack []TargetName

	var visit func(n TargetName) error
	visit = func(n TargetName) error {
		colour[n] = grey
		stack = append(stack, n)
		for _, dep := range g.deps[n] {
			switch colour[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case grey:
				return fmt.Errorf("dependency cycle detected: %s", formatCycle(stack, dep))
			}
		}
		stack = stack[:len(stack)-1]
		colour[n] = black
		return nil
	}

	for _, n := range g.order {
		if colour[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatCycle(stack []TargetName, closing TargetName) string {
	i := 0
	for i < len(stack) && stack[i] != closing {
		i++
	}
	cycle := append(append([]TargetName{}, stack[i:]...), closing)
	s := ""
	for i, n := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += string(n)
	}
	return s
}
