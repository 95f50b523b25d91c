// Package fixture loads a small JSON description of a target graph and its
// invocations, for driving the emitter from the command line or from
// integration tests without a full Xcode-style project (project/workspace
// parsing is out of scope for this core; see spec.md §1).
package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jdm7dv/xcbuild/src/core"
	"github.com/jdm7dv/xcbuild/src/emit"
)

// Invocation mirrors core.Invocation in a JSON-friendly shape.
type Invocation struct {
	Executable        string             `json:"executable"`
	Arguments         []string           `json:"arguments"`
	WorkingDir        string             `json:"workingDirectory"`
	Description       string             `json:"description"`
	Inputs            []string           `json:"inputs"`
	Outputs           []string           `json:"outputs"`
	PhonyInputs       []string           `json:"phonyInputs"`
	PhonyOutputs      []string           `json:"phonyOutputs"`
	InputDependencies []string           `json:"inputDependencies"`
	OrderDependencies []string           `json:"orderDependencies"`
	AuxiliaryFiles    []core.AuxiliaryFile `json:"auxiliaryFiles"`
}

func (i Invocation) toCore() core.Invocation {
	return core.Invocation{
		Executable:        i.Executable,
		Arguments:         i.Arguments,
		WorkingDir:        i.WorkingDir,
		Description:       i.Description,
		Inputs:            i.Inputs,
		Outputs:           i.Outputs,
		PhonyInputs:       i.PhonyInputs,
		PhonyOutputs:      i.PhonyOutputs,
		InputDependencies: i.InputDependencies,
		OrderDependencies: i.OrderDependencies,
		AuxiliaryFiles:    i.AuxiliaryFiles,
	}
}

// Target describes one target's place in the dependency graph and its
// already-resolved invocation list.
type Target struct {
	Name             string       `json:"name"`
	DependsOn        []string     `json:"dependsOn"`
	TempDir          string       `json:"tempDir"`
	EnvironmentError string       `json:"environmentError"`
	Invocations      []Invocation `json:"invocations"`
}

// Fixture is the top-level JSON document accepted by "xcbuild plan".
type Fixture struct {
	ObjRoot             string   `json:"objRoot"`
	Action              string   `json:"action"`
	Configuration       string   `json:"configuration"`
	Scheme              string   `json:"scheme"`
	ProjectOrWorkspace  string   `json:"projectOrWorkspace"`
	Targets             []Target `json:"targets"`
}

type target struct {
	name        core.TargetName
	tempDir     string
	envErr      string
	invocations []core.Invocation
}

func (t *target) Name() core.TargetName { return t.name }

func (t *target) ResolveEnvironment() (core.TargetEnvironment, error) {
	if t.envErr != "" {
		return nil, fmt.Errorf("%s", t.envErr)
	}
	return core.NewEnvironment(nil, nil, nil, nil, nil, t.tempDir), nil
}

func (t *target) Invocations(core.TargetEnvironment) ([]core.Invocation, error) {
	return t.invocations, nil
}

func (t *target) TempDir(core.TargetEnvironment) string { return t.tempDir }

// Load reads and parses a Fixture file, returning the target graph, the
// emit.Target implementations for it, and the build context to pass to
// emit.New.
func Load(path string) (*core.TargetGraph, map[core.TargetName]emit.Target, core.BuildContext, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, core.BuildContext{}, "", err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, core.BuildContext{}, "", fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	graph := core.NewTargetGraph()
	targets := map[core.TargetName]emit.Target{}
	for _, ft := range f.Targets {
		graph.AddTarget(core.TargetName(ft.Name))
	}
	for _, ft := range f.Targets {
		for _, dep := range ft.DependsOn {
			graph.AddDependency(core.TargetName(ft.Name), core.TargetName(dep))
		}
		invs := make([]core.Invocation, len(ft.Invocations))
		for i, inv := range ft.Invocations {
			invs[i] = inv.toCore()
		}
		targets[core.TargetName(ft.Name)] = &target{
			name:        core.TargetName(ft.Name),
			tempDir:     ft.TempDir,
			envErr:      ft.EnvironmentError,
			invocations: invs,
		}
	}

	buildCtx := core.BuildContext{
		Action:             f.Action,
		Scheme:             f.Scheme,
		Configuration:      f.Configuration,
		ProjectOrWorkspace: f.ProjectOrWorkspace,
	}
	return graph, targets, buildCtx, f.ObjRoot, nil
}
