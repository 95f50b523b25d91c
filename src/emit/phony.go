package emit

import (
	"crypto/md5"
	"encoding/hex"
)

// phonyOutputPrefix is the fixed prefix of every synthetic phony output
// path the emitter manufactures.
const phonyOutputPrefix = ".ninja-phony-output-"

// SyntheticPhonyOutput derives the stable, content-addressed path used in
// place of a declared phony output, so that the downstream executor's
// "exactly one producer per output path" rule is satisfied even when two
// invocations both claim to (re-)produce the same real path.
//
// The function is pure: equal inputs always produce equal outputs. Per
// spec.md §4.4/§9, identical real-output strings collide intentionally —
// this is a known limitation, not a bug, and is exercised by
// TestSyntheticPhonyOutputCollidesIntentionally and TestEmitPhonyOutputCollision.
func SyntheticPhonyOutput(real string) string {
	sum := md5.Sum([]byte(real))
	return phonyOutputPrefix + hex.EncodeToString(sum[:])
}

// SyntheticPhonyOutputs maps SyntheticPhonyOutput over a slice, preserving
// order.
func SyntheticPhonyOutputs(reals []string) []string {
	out := make([]string, len(reals))
	for i, r := range reals {
		out[i] = SyntheticPhonyOutput(r)
	}
	return out
}
