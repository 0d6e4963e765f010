// Package pathutil expands user-supplied paths.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand expands a leading ~ and environment variables in path. The result
// is not made absolute.
func Expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

// Resolve expands path and joins it to base when it is relative.
func Resolve(base, path string) string {
	path = Expand(path)
	if filepath.IsAbs(path) || base == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
