package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentResolvesSimpleValue(t *testing.T) {
	env := NewEnvironment(Layer{"FOO": "bar"}, nil, nil, nil, nil, "/tmp")
	assert.Equal(t, "bar", env.Resolve("FOO"))
	assert.Equal(t, "", env.Resolve("MISSING"))
}

func TestEnvironmentInterpolatesNestedReferences(t *testing.T) {
	env := NewEnvironment(Layer{
		"PRODUCT_NAME": "Foo",
		"FULL_NAME":    "${PRODUCT_NAME}.framework",
	}, nil, nil, nil, nil, "/tmp")
	assert.Equal(t, "Foo.framework", env.Resolve("FULL_NAME"))
}

func TestEnvironmentPushVariantIsImmutable(t *testing.T) {
	base := NewEnvironment(nil, []string{"normal"}, nil, nil, nil, "/tmp")
	scoped := base.PushVariant("profile")

	assert.Equal(t, "", base.Resolve("VARIANT"))
	assert.Equal(t, "profile", scoped.Resolve("VARIANT"))
}

func TestEnvironmentPushArchitectureDoesNotLeakAcrossSiblings(t *testing.T) {
	base := NewEnvironment(nil, nil, []string{"arm64", "x86_64"}, nil, nil, "/tmp")
	arm64 := base.PushArchitecture("arm64")
	x86 := base.PushArchitecture("x86_64")

	assert.Equal(t, "arm64", arm64.Resolve("ARCH"))
	assert.Equal(t, "x86_64", x86.Resolve("ARCH"))
	assert.Equal(t, "", base.Resolve("ARCH"))
}

func TestEnvironmentLaterLayerShadowsEarlier(t *testing.T) {
	base := NewEnvironment(Layer{"ARCH": "base-value"}, nil, nil, nil, nil, "/tmp")
	scoped := base.PushArchitecture("arm64")
	assert.Equal(t, "arm64", scoped.Resolve("ARCH"))
}

func TestEnvironmentInterpolationCycleIsBounded(t *testing.T) {
	env := NewEnvironment(Layer{
		"A": "${B}",
		"B": "${A}",
	}, nil, nil, nil, nil, "/tmp")

	// Must terminate rather than loop forever; the exact resulting string
	// is not load-bearing, only that Resolve returns.
	assert.NotPanics(t, func() {
		env.Resolve("A")
	})
}

func TestEnvironmentFixedFactsArePreserved(t *testing.T) {
	env := NewEnvironment(nil,
		[]string{"normal", "profile"},
		[]string{"arm64"},
		[]string{"/usr/bin", "/bin"},
		[]string{"com.apple.pbx.linkers.ld"},
		"/tmp/work",
	)
	assert.Equal(t, []string{"normal", "profile"}, env.Variants())
	assert.Equal(t, []string{"arm64"}, env.Architectures())
	assert.Equal(t, []string{"/usr/bin", "/bin"}, env.SDKSearchPaths())
	assert.Equal(t, []string{"com.apple.pbx.linkers.ld"}, env.SpecDomains())
	assert.Equal(t, "/tmp/work", env.WorkingDirectory())
}
