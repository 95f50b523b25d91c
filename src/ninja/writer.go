// Package ninja implements the stateless textual serializer for the
// build-graph format consumed by the downstream Ninja-compatible executor
// (component C2 of the build-graph core).
//
// Writer never touches the filesystem and never interprets the strings it
// is given — paths are opaque literals to it. The same sequence of calls
// always produces byte-identical output.
package ninja

import (
	"bytes"
	"fmt"
	"strings"
)

// Binding is a single "name = value" pair attached to a rule or an edge.
type Binding struct {
	Name  string
	Value string
}

// Writer accumulates build-graph text. The zero value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

// New returns an empty Writer.
func New() *Writer {
	return &Writer{}
}

// Comment emits one "# ..." line per line of text: embedded newlines start
// a new line prefixed with "# ", so the result stays a sequence of comment
// lines.
func (w *Writer) Comment(text string) {
	for _, line := range strings.Split(text, "\n") {
		w.buf.WriteString("# ")
		w.buf.WriteString(line)
		w.buf.WriteByte('\n')
	}
}

// Newline emits a blank separator line.
func (w *Writer) Newline() {
	w.buf.WriteByte('\n')
}

// Binding emits a top-level "name = value" binding.
func (w *Writer) Binding(name, value string) {
	fmt.Fprintf(&w.buf, "%s = %s\n", name, value)
}

// Rule emits "rule NAME" followed by its indented bindings, in the order
// given.
func (w *Writer) Rule(name string, bindings []Binding) {
	fmt.Fprintf(&w.buf, "rule %s\n", name)
	w.writeIndentedBindings(bindings)
}

// BuildEdge emits one build edge:
//
//	build OUT1 OUT2 …: RULE IN1 IN2 | ID1 ID2 || OD1 OD2
//
// followed by the edge's indented bindings. inputDeps introduces the "|"
// implicit-dependency section; orderDeps introduces the "||" order-only
// section. Either or both may be empty, in which case the corresponding
// separator is omitted entirely.
func (w *Writer) BuildEdge(outputs []string, rule string, inputs, inputDeps, orderDeps []string, bindings []Binding) {
	w.buf.WriteString("build ")
	w.buf.WriteString(strings.Join(outputs, " "))
	w.buf.WriteString(": ")
	w.buf.WriteString(rule)
	if len(inputs) > 0 {
		w.buf.WriteByte(' ')
		w.buf.WriteString(strings.Join(inputs, " "))
	}
	if len(inputDeps) > 0 {
		w.buf.WriteString(" | ")
		w.buf.WriteString(strings.Join(inputDeps, " "))
	}
	if len(orderDeps) > 0 {
		w.buf.WriteString(" || ")
		w.buf.WriteString(strings.Join(orderDeps, " "))
	}
	w.buf.WriteByte('\n')
	w.writeIndentedBindings(bindings)
}

// PhonyEdge emits a phony build edge producing output from the given
// inputs (plain, input-dependency, and order-only, any of which may be
// empty), i.e. a BuildEdge against ninja's builtin "phony" rule.
func (w *Writer) PhonyEdge(output string, inputs, inputDeps, orderDeps []string) {
	w.BuildEdge([]string{output}, "phony", inputs, inputDeps, orderDeps, nil)
}

// Subninja emits "subninja PATH".
func (w *Writer) Subninja(path string) {
	fmt.Fprintf(&w.buf, "subninja %s\n", path)
}

func (w *Writer) writeIndentedBindings(bindings []Binding) {
	for _, b := range bindings {
		fmt.Fprintf(&w.buf, "  %s = %s\n", b.Name, b.Value)
	}
}

// Bytes returns the accumulated text.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// String returns the accumulated text.
func (w *Writer) String() string {
	return w.buf.String()
}
