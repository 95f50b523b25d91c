// Package core contains the value types shared by the link resolver and the
// build-graph emitter: invocations, the target dependency graph, and the
// interfaces those two components consume from upstream collaborators.
package core

// AuxiliaryFile is a small generated file (a response file, a wrapper
// script) that must be written to disk before its owning Invocation runs.
type AuxiliaryFile struct {
	Path       string
	Contents   []byte
	Executable bool
}

// Invocation describes a single tool execution. It is constructed
// fully-formed by upstream resolvers (the sources-phase resolver, the link
// resolver) and is only ever read afterwards; it has no behaviour of its
// own.
//
// An Invocation with an empty Executable but non-empty Outputs is a
// coordination stub: the emitter skips generating a command for it but
// still wires its outputs into the dependency graph.
type Invocation struct {
	Executable  string
	Arguments   []string
	WorkingDir  string
	Description string

	Inputs  []string
	Outputs []string

	// PhonyInputs are inputs that may not exist on disk; the emitter must
	// emit a phony rule for each one.
	PhonyInputs []string
	// PhonyOutputs are outputs also produced by an earlier invocation in the
	// same build; the emitter substitutes a synthetic path for each so the
	// "one producer per path" rule downstream is satisfied.
	PhonyOutputs []string

	InputDependencies []string
	OrderDependencies []string

	AuxiliaryFiles []AuxiliaryFile
}

// IsCoordinationStub reports whether this invocation carries no command of
// its own and exists purely to wire outputs into the graph.
func (inv *Invocation) IsCoordinationStub() bool {
	return inv.Executable == ""
}
