// Package link implements the Frameworks/Link Phase Resolver (component C3
// of the build-graph core): it materializes linker, archiver,
// universal-binary, and debug-symbol invocations for a target.
package link

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/jdm7dv/xcbuild/src/core"
)

// FrameworksPhase is a target's frameworks-build-phase definition: an
// ordered list of file references, resolved against a scoped environment
// for each (variant, architecture) pair.
type FrameworksPhase struct {
	Files []core.BuildFile
}

// Input bundles everything the resolver needs, per spec.md §4.3 "Input".
type Input struct {
	BuildEnv   core.BuildEnvironment
	TargetEnv  core.TargetEnvironment
	Frameworks FrameworksPhase
	Sources    core.SourcesResolver
	PhaseCtx   core.PhaseContext
}

// plan is the internal per-variant shape described in spec.md §3: a list
// of per-architecture link invocations, an optional lipo merge, and an
// optional dsymutil invocation.
type plan struct {
	archLinks []core.Invocation
	lipo      *core.Invocation
	dsym      *core.Invocation
}

func (p plan) flatten() []core.Invocation {
	out := append([]core.Invocation{}, p.archLinks...)
	if p.lipo != nil {
		out = append(out, *p.lipo)
	}
	if p.dsym != nil {
		out = append(out, *p.dsym)
	}
	return out
}

// toolSpecs is the result of step 1: the four tool specs the resolver
// needs, looked up once against the target's spec domains.
type toolSpecs struct {
	ld       core.ToolSpec
	libtool  core.ToolSpec
	lipo     core.ToolSpec
	dsymutil core.ToolSpec
}

// Resolve implements spec.md §4.3. It fails the whole resolve (returns a
// nil invocation slice and a non-nil error) only when a required tool spec
// is missing; all other errors here would be caller misuse (a nil Input
// field) rather than data-dependent failures.
func Resolve(in Input) ([]core.Invocation, error) {
	specs, err := lookupToolSpecs(in.BuildEnv, in.TargetEnv.SpecDomains())
	if err != nil {
		return nil, err
	}

	machOType := in.TargetEnv.Resolve("MACH_O_TYPE")
	isStaticLib := machOType == "staticlib"

	variants := in.TargetEnv.Variants()
	if len(variants) == 0 {
		variants = []string{"normal"}
	}

	var invocations []core.Invocation
	for _, variant := range variants {
		variantEnv := in.TargetEnv.PushVariant(variant)
		invs, err := resolveVariant(in, variantEnv, variant, specs, isStaticLib, machOType)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, invs...)
	}
	return invocations, nil
}

func lookupToolSpecs(env core.BuildEnvironment, domains []string) (toolSpecs, error) {
	var missing *multierror.Error
	lookup := func(id string) core.ToolSpec {
		spec, ok := env.ToolSpec(id, domains)
		if !ok {
			missing = multierror.Append(missing, fmt.Errorf("missing linker tool spec: %s", id))
		}
		return spec
	}
	specs := toolSpecs{
		ld:       lookup(core.ToolLD),
		libtool:  lookup(core.ToolLibtool),
		lipo:     lookup(core.ToolLipo),
		dsymutil: lookup(core.ToolDsymutil),
	}
	if missing != nil {
		return toolSpecs{}, missing.ErrorOrNil()
	}
	return specs, nil
}

func resolveVariant(in Input, variantEnv core.TargetEnvironment, variant string, specs toolSpecs, isStaticLib bool, machOType string) ([]core.Invocation, error) {
	variantIntermediatesName := variantEnv.Resolve("EXECUTABLE_NAME") + variantEnv.Resolve("EXECUTABLE_VARIANT_SUFFIX")
	variantIntermediatesDirectory := variantEnv.Resolve("OBJECT_FILE_DIR_" + variant)
	variantProductsOutput := variantEnv.Resolve("BUILT_PRODUCTS_DIR") + "/" + variantEnv.Resolve("EXECUTABLE_PATH") + variantEnv.Resolve("EXECUTABLE_VARIANT_SUFFIX")

	architectures := variantEnv.Architectures()
	p := plan{}
	var universalInputs []string

	for _, arch := range architectures {
		archEnv := variantEnv.PushArchitecture(arch)
		frameworkFiles := in.PhaseCtx.ResolveBuildFiles(archEnv, in.Frameworks.Files)
		objectInputs := objectOutputsFor(in.Sources, variant, arch)

		output := variantProductsOutput
		if len(architectures) > 1 {
			output = variantIntermediatesDirectory + "/" + arch + "/" + variantIntermediatesName
		}

		inv := makeLinkInvocation(in, specs, isStaticLib, archEnv, objectInputs, frameworkFiles, output, variant, arch)
		p.archLinks = append(p.archLinks, inv)
		if len(architectures) > 1 {
			universalInputs = append(universalInputs, output)
		}
	}

	if len(architectures) > 1 {
		lipoInv := core.Invocation{
			Executable:  specs.lipo.Executable,
			Arguments:   append(append([]string{}, specs.lipo.ArgumentPrefix...), lipoArgs(universalInputs, variantProductsOutput)...),
			WorkingDir:  in.TargetEnv.WorkingDirectory(),
			Description: fmt.Sprintf("Create universal binary %s", variantProductsOutput),
			Inputs:      universalInputs,
			Outputs:     []string{variantProductsOutput},
		}
		p.lipo = &lipoInv
	}

	if variantEnv.Resolve("DEBUG_INFORMATION_FORMAT") == "dwarf-with-dsym" && machOType != "staticlib" && machOType != "mh_object" {
		dsymOutput := variantEnv.Resolve("DWARF_DSYM_FOLDER_PATH") + "/" + variantEnv.Resolve("DWARF_DSYM_FILE_NAME")
		dsymInv := core.Invocation{
			Executable:  specs.dsymutil.Executable,
			Arguments:   append(append([]string{}, specs.dsymutil.ArgumentPrefix...), variantProductsOutput, "-o", dsymOutput),
			WorkingDir:  in.TargetEnv.WorkingDirectory(),
			Description: fmt.Sprintf("Extract debug symbols for %s", variantProductsOutput),
			Inputs:      []string{variantProductsOutput},
			Outputs:     []string{dsymOutput},
		}
		p.dsym = &dsymInv
	}

	return p.flatten(), nil
}

func makeLinkInvocation(in Input, specs toolSpecs, isStaticLib bool, archEnv core.TargetEnvironment, objectInputs []string, frameworkFiles []core.ResolvedFile, output, variant, arch string) core.Invocation {
	var executable string
	var args []string

	if isStaticLib {
		executable = specs.libtool.Executable
		args = append(args, specs.libtool.ArgumentPrefix...)
		args = append(args, objectInputs...)
	} else {
		executable = in.Sources.LinkerDriver()
		args = append(args, in.Sources.LinkerArgs()...)
		args = append(args, objectInputs...)
		for _, f := range frameworkFiles {
			args = append(args, f.Path)
		}
	}
	args = append(args, "-o", output)

	inputs := append(append([]string{}, objectInputs...), frameworkFilePaths(frameworkFiles)...)

	return core.Invocation{
		Executable:  executable,
		Arguments:   args,
		WorkingDir:  in.TargetEnv.WorkingDirectory(),
		Description: fmt.Sprintf("Link %s (%s/%s)", output, variant, arch),
		Inputs:      inputs,
		Outputs:     []string{output},
	}
}

func frameworkFilePaths(files []core.ResolvedFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func lipoArgs(inputs []string, output string) []string {
	args := append([]string{"-create"}, inputs...)
	return append(args, "-output", output)
}

// objectOutputsFor implements spec.md §3/§9's object-outputs lookup: it
// prefers an explicit ObjectOutputsResolver, falling back to filtering the
// sources resolver's raw invocation outputs for a ".o" extension.
func objectOutputsFor(sources core.SourcesResolver, variant, arch string) []string {
	if explicit, ok := sources.(core.ObjectOutputsResolver); ok {
		if outputs, ok := explicit.ObjectOutputs(variant, arch); ok {
			return outputs
		}
	}
	var objects []string
	for _, inv := range sources.VariantArchitectureInvocations()[core.VariantArch{Variant: variant, Architecture: arch}] {
		for _, out := range inv.Outputs {
			if strings.HasSuffix(out, ".o") {
				objects = append(objects, out)
			}
		}
	}
	return objects
}
