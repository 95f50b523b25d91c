package core

// ToolSpec is an immutable snapshot of a resolved tool: the executable (or
// builtin token) to invoke and any argument prefix the tool's spec
// contributes unconditionally. Per §9 of the design notes, tool specs are
// value snapshots referenced by identifier, not pointer graphs, so that
// copying a BuildEnvironment never aliases mutable state.
type ToolSpec struct {
	Identifier     string
	Executable     string
	ArgumentPrefix []string
}

// Well-known tool-spec identifiers the link resolver looks up.
const (
	ToolLD       = "com.apple.pbx.linkers.ld"
	ToolLibtool  = "com.apple.pbx.linkers.libtool"
	ToolLipo     = "com.apple.xcode.linkers.lipo"
	ToolDsymutil = "com.apple.tools.dsymutil"
)

// BuildEnvironment is the base setting layer consumed from upstream: it
// resolves tool specs by identifier and spec domain.
type BuildEnvironment interface {
	ToolSpec(identifier string, domains []string) (ToolSpec, bool)
}

// MapBuildEnvironment is a minimal BuildEnvironment backed by a flat map; it
// ignores spec domains, which is adequate for a single-SDK build and for
// tests. Upstream collaborators that need domain-sensitive lookup supply
// their own BuildEnvironment implementation.
type MapBuildEnvironment map[string]ToolSpec

// ToolSpec implements BuildEnvironment.
func (m MapBuildEnvironment) ToolSpec(identifier string, _ []string) (ToolSpec, bool) {
	spec, ok := m[identifier]
	return spec, ok
}
