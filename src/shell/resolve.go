package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// BuiltinPrefix marks an executable name as a coordination token handled
// entirely by the downstream executor rather than by invoking a real
// program. Resolve treats any name with this prefix as unresolvable.
const BuiltinPrefix = "builtin-"

// Resolve looks up an executable against a list of search-path directories,
// mirroring core.LookPath in the teacher repo but additionally requiring
// the candidate to be an executable regular file.
//
// A name beginning with BuiltinPrefix resolves to "" (the caller treats an
// empty result as "skip this invocation"). An absolute path is returned
// unchanged without existence checking — the resolver does not validate
// file existence, per spec.md §4.3. A relative, non-builtin name is
// searched for in order across searchPaths; the first existing, executable
// hit wins. If none match, Resolve returns "".
func Resolve(executable string, searchPaths []string) string {
	if strings.HasPrefix(executable, BuiltinPrefix) {
		return ""
	}
	if filepath.IsAbs(executable) {
		return executable
	}
	for _, dir := range searchPaths {
		for _, d := range strings.Split(dir, ":") {
			if d == "" {
				continue
			}
			candidate := filepath.Join(d, executable)
			if isExecutableFile(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}
