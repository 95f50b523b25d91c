package emit

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var phonySuffix = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestSyntheticPhonyOutputIsPure(t *testing.T) {
	assert.Equal(t, SyntheticPhonyOutput("x"), SyntheticPhonyOutput("x"))
}

func TestSyntheticPhonyOutputShape(t *testing.T) {
	got := SyntheticPhonyOutput("some/output/path")
	assert.True(t, len(got) > len(phonyOutputPrefix))
	assert.Equal(t, phonyOutputPrefix, got[:len(phonyOutputPrefix)])
	assert.True(t, phonySuffix.MatchString(got[len(phonyOutputPrefix):]))
}

func TestSyntheticPhonyOutputCollidesIntentionally(t *testing.T) {
	// Known limitation (spec.md §9): two distinct invocations that both
	// declare the same phony output string collide on the same synthetic
	// path. This test documents, rather than guards against, that.
	assert.Equal(t, SyntheticPhonyOutput("X"), SyntheticPhonyOutput("X"))
}
