package execengine

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultPath = "/bin:/usr/bin"

// FindInPath resolves name to an executable path. A name containing a
// slash bypasses search entirely (absolute or relative paths are used
// as-is, matching the original shell). Otherwise each directory in
// $PATH (or defaultPath if unset) is tried in order; FindInPath reports
// ok=false if no directory yields an executable regular file.
func FindInPath(name, pathEnv string) (string, bool) {
	if strings.Contains(name, "/") {
		return name, true
	}

	if pathEnv == "" {
		pathEnv = defaultPath
	}

	for _, dir := range strings.Split(pathEnv, ":") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
