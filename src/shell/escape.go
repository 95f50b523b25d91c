// Package shell implements the quoting discipline for shell command
// strings and the lookup of tool executables against per-SDK search paths
// (component C5 of the build-graph core).
package shell

import "strings"

// safeChars are the characters that never need escaping for a POSIX shell
// when they appear in isolation from any other character.
const safeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@%_-+=:,./"

// Escape quotes s for inclusion in a shell command line. If s consists
// entirely of characters that never need escaping, it is returned
// unchanged; otherwise it is wrapped in single quotes, with every embedded
// single quote replaced by the five-character sequence that closes the
// quoted string, emits an escaped quote, and reopens quoting.
func Escape(s string) string {
	if isSafe(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString(`'"'"'`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func isSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(safeChars, s[i]) < 0 {
			return false
		}
	}
	return true
}

// Join escapes and space-joins a slice of arguments, matching the emitter's
// rule for composing the "exec" binding of an invoke edge: the executable
// and each argument, shell-escaped and space-joined.
func Join(executable string, arguments []string) string {
	parts := make([]string, 0, len(arguments)+1)
	parts = append(parts, Escape(executable))
	for _, a := range arguments {
		parts = append(parts, Escape(a))
	}
	return strings.Join(parts, " ")
}
