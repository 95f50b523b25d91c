package ninja

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentAndNewline(t *testing.T) {
	w := New()
	w.Comment("hello")
	w.Newline()
	assert.Equal(t, "# hello\n\n", w.String())
}

func TestMultilineComment(t *testing.T) {
	w := New()
	w.Comment("line one\nline two")
	assert.Equal(t, "# line one\n# line two\n", w.String())
}

func TestBinding(t *testing.T) {
	w := New()
	w.Binding("builddir", "/tmp/objroot")
	assert.Equal(t, "builddir = /tmp/objroot\n", w.String())
}

func TestRule(t *testing.T) {
	w := New()
	w.Rule("invoke", []Binding{{Name: "command", Value: "cd $dir && $exec"}})
	assert.Equal(t, "rule invoke\n  command = cd $dir && $exec\n", w.String())
}

func TestBuildEdgeFull(t *testing.T) {
	w := New()
	w.BuildEdge(
		[]string{"out1", "out2"},
		"invoke",
		[]string{"in1", "in2"},
		[]string{"id1", "id2"},
		[]string{"od1", "od2"},
		[]Binding{{Name: "dir", Value: "/tmp"}, {Name: "exec", Value: "true"}},
	)
	want := "build out1 out2: invoke in1 in2 | id1 id2 || od1 od2\n  dir = /tmp\n  exec = true\n"
	assert.Equal(t, want, w.String())
}

func TestBuildEdgeNoDeps(t *testing.T) {
	w := New()
	w.BuildEdge([]string{"out"}, "invoke", []string{"in"}, nil, nil, nil)
	assert.Equal(t, "build out: invoke in\n", w.String())
}

func TestPhonyEdge(t *testing.T) {
	w := New()
	w.PhonyEdge("begin-target-A", nil, nil, []string{"finish-target-B"})
	assert.Equal(t, "build begin-target-A: phony || finish-target-B\n", w.String())
}

func TestSubninja(t *testing.T) {
	w := New()
	w.Subninja("/tmp/a/build.ninja")
	assert.Equal(t, "subninja /tmp/a/build.ninja\n", w.String())
}

func TestDeterministic(t *testing.T) {
	build := func() string {
		w := New()
		w.Comment("root")
		w.Binding("builddir", "/x")
		w.Rule("invoke", []Binding{{Name: "command", Value: "cd $dir && $exec"}})
		w.BuildEdge([]string{"a"}, "invoke", []string{"b"}, nil, []string{"begin-target-T"}, []Binding{{Name: "exec", Value: "true"}})
		return w.String()
	}
	assert.Equal(t, build(), build())
}
