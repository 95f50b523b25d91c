package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdm7dv/xcbuild/src/core"
)

type fakeTarget struct {
	name        core.TargetName
	tempDir     string
	invocations []core.Invocation
	envErr      error
}

func (t *fakeTarget) Name() core.TargetName { return t.name }

func (t *fakeTarget) ResolveEnvironment() (core.TargetEnvironment, error) {
	if t.envErr != nil {
		return nil, t.envErr
	}
	return core.NewEnvironment(nil, nil, nil, nil, nil, t.tempDir), nil
}

func (t *fakeTarget) Invocations(core.TargetEnvironment) ([]core.Invocation, error) {
	return t.invocations, nil
}

func (t *fakeTarget) TempDir(core.TargetEnvironment) string { return t.tempDir }

func buildCtx() core.BuildContext {
	return core.BuildContext{Action: "build", Configuration: "Debug"}
}

// TestEmitTwoTargetDependencyChain covers spec.md scenario 3: B's begin node
// order-depends on A's finish node.
func TestEmitTwoTargetDependencyChain(t *testing.T) {
	obj := t.TempDir()
	graph := core.NewTargetGraph()
	graph.AddTarget("A")
	graph.AddTarget("B")
	graph.AddDependency("B", "A")

	targets := map[core.TargetName]Target{
		"A": &fakeTarget{
			name:    "A",
			tempDir: filepath.Join(obj, "A"),
			invocations: []core.Invocation{
				{Executable: "/bin/true", Outputs: []string{filepath.Join(obj, "A", "out.o")}},
			},
		},
		"B": &fakeTarget{
			name:    "B",
			tempDir: filepath.Join(obj, "B"),
			invocations: []core.Invocation{
				{Executable: "/bin/true", Outputs: []string{filepath.Join(obj, "B", "out.o")}},
			},
		},
	}

	e := New(obj, buildCtx(), nil, false, nil)
	result, err := e.Emit(graph, targets)
	require.NoError(t, err)
	require.Nil(t, result.Diagnostics)

	root, err := os.ReadFile(result.RootGraphPath)
	require.NoError(t, err)
	text := string(root)

	assert.Contains(t, text, "build begin-target-A: phony")
	assert.Contains(t, text, "build finish-target-A: phony "+filepath.Join(obj, "A", "out.o"))
	assert.Contains(t, text, "build begin-target-B: phony || finish-target-A")
	assert.Contains(t, text, "build finish-target-B: phony "+filepath.Join(obj, "B", "out.o"))
}

// TestEmitSharedOutputDirectoryDedup covers spec.md scenario 4 and P2:
// two invocations in the same target whose outputs share a directory get
// exactly one mkdir edge.
func TestEmitSharedOutputDirectoryDedup(t *testing.T) {
	obj := t.TempDir()
	graph := core.NewTargetGraph()
	graph.AddTarget("A")

	dir := filepath.Join(obj, "A", "objects")
	targets := map[core.TargetName]Target{
		"A": &fakeTarget{
			name:    "A",
			tempDir: filepath.Join(obj, "A"),
			invocations: []core.Invocation{
				{Executable: "/bin/true", Outputs: []string{filepath.Join(dir, "one.o")}},
				{Executable: "/bin/true", Outputs: []string{filepath.Join(dir, "two.o")}},
			},
		},
	}

	e := New(obj, buildCtx(), nil, false, nil)
	result, err := e.Emit(graph, targets)
	require.NoError(t, err)

	root, err := os.ReadFile(result.RootGraphPath)
	require.NoError(t, err)
	text := string(root)

	assert.Equal(t, 1, strings.Count(text, "build "+dir+": invoke"))
}

// TestEmitPhonyOutputCollision documents spec.md's acknowledged limitation:
// two invocations declaring the same phony output path collide on the same
// synthetic path (P6), which is intentional, not a bug.
func TestEmitPhonyOutputCollision(t *testing.T) {
	obj := t.TempDir()
	graph := core.NewTargetGraph()
	graph.AddTarget("A")

	shared := filepath.Join(obj, "shared")
	targets := map[core.TargetName]Target{
		"A": &fakeTarget{
			name:    "A",
			tempDir: filepath.Join(obj, "A"),
			invocations: []core.Invocation{
				{Executable: "/bin/true", PhonyOutputs: []string{shared}, Outputs: []string{filepath.Join(obj, "A", "one.o")}},
				{Executable: "/bin/true", PhonyOutputs: []string{shared}, Outputs: []string{filepath.Join(obj, "A", "two.o")}},
			},
		},
	}

	e := New(obj, buildCtx(), nil, false, nil)
	_, err := e.Emit(graph, targets)
	require.NoError(t, err)

	assert.Equal(t, SyntheticPhonyOutput(shared), SyntheticPhonyOutput(shared))
}

// TestEmitCoordinationStubIsNotAFinishInput verifies a stub invocation
// (empty Executable) is left out of FINISH's explicit inputs, while the
// target's finish edge is still emitted.
func TestEmitCoordinationStubIsNotAFinishInput(t *testing.T) {
	obj := t.TempDir()
	graph := core.NewTargetGraph()
	graph.AddTarget("A")

	targets := map[core.TargetName]Target{
		"A": &fakeTarget{
			name:    "A",
			tempDir: filepath.Join(obj, "A"),
			invocations: []core.Invocation{
				{Outputs: []string{filepath.Join(obj, "A", "stub-out")}},
			},
		},
	}

	e := New(obj, buildCtx(), nil, false, nil)
	result, err := e.Emit(graph, targets)
	require.NoError(t, err)

	root, err := os.ReadFile(result.RootGraphPath)
	require.NoError(t, err)
	text := string(root)

	// (B8)/P3: a coordination stub was never "emitted", so its output is
	// not one of FINISH's explicit inputs.
	assert.NotContains(t, text, "build finish-target-A: phony "+filepath.Join(obj, "A", "stub-out"))
	assert.Contains(t, text, "build finish-target-A: phony")
}

// TestEmitUnresolvableExecutableIsNonFatal covers the per-invocation
// diagnostic path: an invocation whose executable cannot be resolved is
// skipped with a collected diagnostic, and the walk continues.
func TestEmitUnresolvableExecutableIsNonFatal(t *testing.T) {
	obj := t.TempDir()
	graph := core.NewTargetGraph()
	graph.AddTarget("A")

	targets := map[core.TargetName]Target{
		"A": &fakeTarget{
			name:    "A",
			tempDir: filepath.Join(obj, "A"),
			invocations: []core.Invocation{
				{Executable: "definitely-does-not-exist-anywhere", Outputs: []string{filepath.Join(obj, "A", "out")}},
			},
		},
	}

	e := New(obj, buildCtx(), nil, false, nil)
	result, err := e.Emit(graph, targets)
	require.NoError(t, err)
	require.Error(t, result.Diagnostics)
	assert.Contains(t, result.Diagnostics.Error(), "definitely-does-not-exist-anywhere")
}

// TestEmitEnvironmentErrorIsNonFatal covers (B2): a target whose
// environment fails to resolve degenerates to an empty sub-graph but does
// not abort the whole Emit.
func TestEmitEnvironmentErrorIsNonFatal(t *testing.T) {
	obj := t.TempDir()
	graph := core.NewTargetGraph()
	graph.AddTarget("A")
	graph.AddTarget("B")
	graph.AddDependency("B", "A")

	targets := map[core.TargetName]Target{
		"A": &fakeTarget{name: "A", tempDir: filepath.Join(obj, "A"), envErr: assertError("boom")},
		"B": &fakeTarget{
			name:    "B",
			tempDir: filepath.Join(obj, "B"),
			invocations: []core.Invocation{
				{Executable: "/bin/true", Outputs: []string{filepath.Join(obj, "B", "out")}},
			},
		},
	}

	e := New(obj, buildCtx(), nil, false, nil)
	result, err := e.Emit(graph, targets)
	require.NoError(t, err)
	require.Error(t, result.Diagnostics)
	assert.Contains(t, result.Diagnostics.Error(), "boom")
}

// TestEmitDeterministic covers P7: two Emit runs over equal inputs, against
// the same object root, produce byte-identical root graphs.
func TestEmitDeterministic(t *testing.T) {
	obj := t.TempDir()
	build := func() []byte {
		graph := core.NewTargetGraph()
		graph.AddTarget("A")
		targets := map[core.TargetName]Target{
			"A": &fakeTarget{
				name:    "A",
				tempDir: filepath.Join(obj, "A"),
				invocations: []core.Invocation{
					{Executable: "/bin/true", Outputs: []string{filepath.Join(obj, "A", "out")}},
				},
			},
		}
		e := New(obj, buildCtx(), nil, false, nil)
		result, err := e.Emit(graph, targets)
		require.NoError(t, err)
		data, err := os.ReadFile(result.RootGraphPath)
		require.NoError(t, err)
		return data
	}

	first := build()
	second := build()
	assert.Equal(t, first, second)
}

type assertError string

func (e assertError) Error() string { return string(e) }
