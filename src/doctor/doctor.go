// Package doctor implements the ambient tool probe (component C10): a
// concurrent, read-only check that every configured linker tool is
// resolvable against every configured SDK search path. It is entirely
// separate from the sequential C3/C4 build-graph core; it exists only to
// give a fast, independent answer to "is my toolchain configured
// correctly" before a real plan is requested.
package doctor

import (
	"golang.org/x/sync/errgroup"

	"github.com/jdm7dv/xcbuild/src/config"
	"github.com/jdm7dv/xcbuild/src/core"
	"github.com/jdm7dv/xcbuild/src/shell"
)

// Result reports whether a single named tool resolved, and where.
type Result struct {
	Identifier string
	Executable string
	Resolved   string
	OK         bool
}

// DefaultSpecs builds the four well-known linker tool specs from cfg's
// [linkers] section, for callers (the CLI's doctor command) that want
// Probe's ordinary behaviour without constructing specs themselves.
func DefaultSpecs(cfg *config.Configuration) []core.ToolSpec {
	return []core.ToolSpec{
		{Identifier: core.ToolLD, Executable: cfg.Linkers.Ld},
		{Identifier: core.ToolLibtool, Executable: cfg.Linkers.Libtool},
		{Identifier: core.ToolLipo, Executable: cfg.Linkers.Lipo},
		{Identifier: core.ToolDsymutil, Executable: cfg.Linkers.Dsymutil},
	}
}

// resolveExecutable performs the per-spec resolution Probe runs
// concurrently. It is a package variable, rather than a direct call to
// shell.Resolve, so tests can substitute an artificially slow resolution
// function and assert Probe's wall-clock time scales with the slowest
// individual resolution rather than their sum (P9).
var resolveExecutable = shell.Resolve

// Probe resolves every given tool spec against cfg's SDK search path
// concurrently, one goroutine per spec (at most cfg.Xcbuild.NumThreads at a
// time when that is positive), and returns one Result per spec in a fixed,
// deterministic order regardless of completion order. Accepting
// specs explicitly (rather than reading cfg.Linkers directly) lets callers
// probe an arbitrary tool-spec list, including artificial specs a test
// wants to resolve against a synthetic search path.
func Probe(cfg *config.Configuration, specs []core.ToolSpec) []Result {
	results := make([]Result, len(specs))

	var g errgroup.Group
	if cfg.Xcbuild.NumThreads > 0 {
		g.SetLimit(cfg.Xcbuild.NumThreads)
	}
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			resolved := resolveExecutable(spec.Executable, cfg.SDK.SearchPath)
			results[i] = Result{
				Identifier: spec.Identifier,
				Executable: spec.Executable,
				Resolved:   resolved,
				OK:         resolved != "",
			}
			return nil
		})
	}
	// Probing a tool never itself fails (an unresolved tool is reported in
	// Result.OK, not returned as an error), so Wait cannot return non-nil
	// here; it only orders completion before Probe returns its results.
	_ = g.Wait()
	return results
}
