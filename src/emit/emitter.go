// Package emit implements the Build-Graph Emitter (component C4 of the
// build-graph core): it consumes the invocations of every target in a
// target dependency graph and produces the root build-graph file plus one
// sub-graph file per target.
package emit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/jdm7dv/xcbuild/src/cli/logging"
	"github.com/jdm7dv/xcbuild/src/core"
	"github.com/jdm7dv/xcbuild/src/ninja"
	"github.com/jdm7dv/xcbuild/src/shell"
)

var log = logging.Log

// invokeRule is the single universal rule every build edge in every graph
// file reuses; per-edge "dir" and "exec" bindings supply the variation.
const invokeRule = "invoke"

// Target is consumed from upstream: it knows how to resolve its own
// environment and, once resolved, to produce its full phase invocation
// list (composing all phase resolvers, including the link resolver).
type Target interface {
	Name() core.TargetName
	ResolveEnvironment() (core.TargetEnvironment, error)
	// Invocations composes this target's phase resolvers. An error here is
	// fatal to the whole build (e.g. a missing link tool spec), unlike a
	// failure in ResolveEnvironment which is per-target and non-fatal.
	Invocations(env core.TargetEnvironment) ([]core.Invocation, error)
	// TempDir returns TARGET_TEMP_DIR for this target once its environment
	// is resolved; the per-target sub-graph is written there.
	TempDir(env core.TargetEnvironment) string
}

// Result is returned by Emit: the root graph path plus any accumulated
// non-fatal diagnostics (SPEC_FULL.md §4.9). A non-nil Diagnostics value
// does not mean the build failed — see Emit's returned error for that.
type Result struct {
	RootGraphPath string
	Diagnostics   error
}

// Emitter holds the state that must persist across the whole walk: the
// global output-directory dedup set and the root Writer. Per spec.md §9,
// this state is scoped to a single Emitter value, not process-global;
// construct a fresh Emitter per build.
type Emitter struct {
	objRoot   string
	dryRun    bool
	buildCtx  core.BuildContext
	formatter core.Formatter
	// fallbackSearchPaths is consulted, per SPEC_FULL.md §4.7, when a
	// target's own TargetEnvironment.SDKSearchPaths() is empty; it is
	// typically config.Configuration.SDK.SearchPath.
	fallbackSearchPaths []string

	root        *ninja.Writer
	seenDirs    map[string]bool
	diagnostics *multierror.Error
}

// New constructs an Emitter for one build invocation. fallbackSearchPaths
// is used to resolve an invocation's executable whenever the owning
// target's environment supplies no SDK search paths of its own.
func New(objRoot string, buildCtx core.BuildContext, formatter core.Formatter, dryRun bool, fallbackSearchPaths []string) *Emitter {
	return &Emitter{
		objRoot:             objRoot,
		dryRun:              dryRun,
		buildCtx:            buildCtx,
		formatter:           formatter,
		fallbackSearchPaths: fallbackSearchPaths,
		root:                ninja.New(),
		seenDirs:            map[string]bool{},
	}
}

// Emit runs the full Phase A/B/C walk described in spec.md §4.4 and writes
// the root graph file plus one per-target sub-graph file. The returned
// error is non-nil only for fatal conditions: a dependency cycle, a graph
// target missing from targets, a filesystem write failure, or a failing
// Invocations call (e.g. missing link tools); per-target and
// per-invocation problems are reported through Result.Diagnostics and the
// log, and do not stop the walk.
func (e *Emitter) Emit(graph *core.TargetGraph, targets map[core.TargetName]Target) (*Result, error) {
	if err := graph.CheckAcyclic(); err != nil {
		return nil, err
	}

	e.writeHeader()

	for _, name := range graph.Targets() {
		target, ok := targets[name]
		if !ok {
			return nil, fmt.Errorf("target %s is in the dependency graph but was not supplied to Emit", name)
		}
		if err := e.walkTarget(graph, target); err != nil {
			return nil, err
		}
	}

	rootPath := filepath.Join(e.objRoot, "build.ninja")
	if err := writeFile(rootPath, e.root.Bytes()); err != nil {
		return nil, fmt.Errorf("writing root graph: %w", err)
	}
	log.Notice("Wrote build graph to %s", rootPath)

	return &Result{RootGraphPath: rootPath, Diagnostics: e.diagnostics.ErrorOrNil()}, nil
}

func (e *Emitter) writeHeader() {
	e.root.Comment(fmt.Sprintf("action: %s", e.buildCtx.Action))
	if e.buildCtx.ProjectOrWorkspace != "" {
		e.root.Comment(fmt.Sprintf("project/workspace: %s", e.buildCtx.ProjectOrWorkspace))
	}
	if e.buildCtx.Scheme != "" {
		e.root.Comment(fmt.Sprintf("scheme: %s", e.buildCtx.Scheme))
	}
	e.root.Comment(fmt.Sprintf("configuration: %s", e.buildCtx.Configuration))
	e.root.Newline()
	e.root.Binding("builddir", e.objRoot)
	e.root.Newline()
	e.root.Rule(invokeRule, []ninja.Binding{{Name: "command", Value: "cd $dir && $exec"}})
	e.root.Newline()
}

// walkTarget implements (B1)-(B8) for a single target.
func (e *Emitter) walkTarget(graph *core.TargetGraph, target Target) error {
	name := target.Name()
	begin := beginNode(name)
	finish := finishNode(name)

	// (B1): a target's begin node order-depends on the finish node of
	// every direct predecessor (spec.md invariant 4), so predFinishes go
	// after the "||" order-only separator, not as plain inputs.
	var predFinishes []string
	for _, dep := range graph.DependenciesOf(name) {
		predFinishes = append(predFinishes, finishNode(dep))
	}
	e.root.PhonyEdge(begin, nil, nil, predFinishes)

	// (B2)
	env, err := target.ResolveEnvironment()
	if err != nil {
		e.addDiagnostic(fmt.Errorf("target %s: resolving environment: %w", name, err))
		log.Errorf("Target %s: failed to resolve environment: %s", name, err)
		return nil // degenerate subgraph; walk continues.
	}

	// (B3)
	invocations, err := target.Invocations(env)
	if err != nil {
		// Missing link tools and similar resolver failures are fatal.
		return fmt.Errorf("target %s: resolving invocations: %w", name, err)
	}

	// (B4)
	e.dedupOutputDirs(invocations, begin)

	// (B5)
	searchPaths := env.SDKSearchPaths()
	if len(searchPaths) == 0 {
		searchPaths = e.fallbackSearchPaths
	}
	sub := ninja.New()
	if !e.dryRun {
		if err := e.writeAuxiliaryFiles(invocations); err != nil {
			return err
		}
	}
	emitted := e.emitInvocations(sub, invocations, begin, name, searchPaths)

	// (B7)
	tempDir := target.TempDir(env)
	subPath := filepath.Join(tempDir, "build.ninja")
	if err := writeFile(subPath, sub.Bytes()); err != nil {
		return fmt.Errorf("writing sub-graph for %s: %w", name, err)
	}
	e.root.Subninja(subPath)

	// (B8)
	e.emitFinishEdge(finish, emitted)

	return nil
}

func beginNode(name core.TargetName) string  { return "begin-target-" + string(name) }
func finishNode(name core.TargetName) string { return "finish-target-" + string(name) }

// dedupOutputDirs implements (B4): each distinct output directory gets
// exactly one mkdir edge in the root graph, across the whole build.
func (e *Emitter) dedupOutputDirs(invocations []core.Invocation, begin string) {
	for _, inv := range invocations {
		for _, out := range inv.Outputs {
			dir := filepath.Dir(out)
			if e.seenDirs[dir] {
				continue
			}
			e.seenDirs[dir] = true
			e.root.BuildEdge(
				[]string{dir},
				invokeRule,
				nil, nil,
				[]string{begin},
				[]ninja.Binding{
					{Name: "dir", Value: inv.WorkingDir},
					{Name: "exec", Value: "/bin/mkdir -p " + shell.Escape(dir)},
				},
			)
		}
	}
}

// emitInvocations implements (B5)'s per-invocation edge emission and
// returns the invocations that actually received a command edge (i.e.
// excludes coordination stubs and invocations with an unresolvable
// executable), for use by (B8).
func (e *Emitter) emitInvocations(sub *ninja.Writer, invocations []core.Invocation, begin string, name core.TargetName, searchPaths []string) []core.Invocation {
	var emitted []core.Invocation
	for i := range invocations {
		inv := &invocations[i]
		if inv.IsCoordinationStub() {
			continue
		}
		resolved := shell.Resolve(inv.Executable, searchPaths)
		if resolved == "" {
			e.addDiagnostic(fmt.Errorf("target %s: could not resolve executable %q", name, inv.Executable))
			log.Errorf("Target %s: could not resolve executable %q; skipping invocation", name, inv.Executable)
			continue
		}

		for _, phonyIn := range inv.PhonyInputs {
			sub.PhonyEdge(phonyIn, nil, nil, nil)
		}

		exec := shell.Join(resolved, inv.Arguments)
		outputs := append(append([]string{}, inv.Outputs...), SyntheticPhonyOutputs(inv.PhonyOutputs)...)

		orderDeps := append([]string{}, inv.OrderDependencies...)
		for _, out := range inv.Outputs {
			orderDeps = append(orderDeps, filepath.Dir(out))
		}
		orderDeps = append(orderDeps, begin)

		description := inv.Description
		if e.formatter != nil {
			description = core.FirstLine(e.formatter.BeginInvocation(inv, resolved))
		}

		sub.BuildEdge(
			outputs,
			invokeRule,
			inv.Inputs,
			inv.InputDependencies,
			orderDeps,
			[]ninja.Binding{
				{Name: "description", Value: description},
				{Name: "dir", Value: inv.WorkingDir},
				{Name: "exec", Value: exec},
			},
		)
		emitted = append(emitted, *inv)
	}
	return emitted
}

// emitFinishEdge implements (B8).
func (e *Emitter) emitFinishEdge(finish string, emitted []core.Invocation) {
	var realOutputs []string
	var syntheticOutputs []string
	for _, inv := range emitted {
		realOutputs = append(realOutputs, inv.Outputs...)
		syntheticOutputs = append(syntheticOutputs, SyntheticPhonyOutputs(inv.PhonyOutputs)...)
	}
	e.root.PhonyEdge(finish, realOutputs, nil, syntheticOutputs)
}

// writeAuxiliaryFiles implements (B6). Dry-run mode skips this entirely,
// which is a known soft-bug preserved verbatim from spec.md §9: the
// downstream executor still needs these files to exist.
func (e *Emitter) writeAuxiliaryFiles(invocations []core.Invocation) error {
	for _, inv := range invocations {
		for _, aux := range inv.AuxiliaryFiles {
			if err := os.MkdirAll(filepath.Dir(aux.Path), 0755); err != nil {
				return fmt.Errorf("creating auxiliary file directory: %w", err)
			}
			mode := os.FileMode(0644)
			if aux.Executable {
				mode = 0755
			}
			if err := os.WriteFile(aux.Path, aux.Contents, mode); err != nil {
				return fmt.Errorf("writing auxiliary file %s: %w", aux.Path, err)
			}
			if aux.Executable {
				if err := ensureExecutable(aux.Path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode()&0111 == 0111 {
		return nil
	}
	return os.Chmod(path, 0755)
}

func writeFile(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0644)
}

func (e *Emitter) addDiagnostic(err error) {
	e.diagnostics = multierror.Append(e.diagnostics, err)
}
