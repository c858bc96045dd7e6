package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Expand expands a leading ~ and environment variables in a path and
// returns it absolute.
func Expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path = os.ExpandEnv(path)
	return filepath.Abs(path)
}

// NormalizeForLookup creates a canonical path suitable for comparisons. It
// makes the path absolute, resolves symlinks when the path exists, and
// lowercases it on case-insensitive systems.
func NormalizeForLookup(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	canonicalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		canonicalPath = absPath
	}

	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return strings.ToLower(canonicalPath), nil
	}
	return canonicalPath, nil
}

// SamePath reports whether two paths refer to the same location.
func SamePath(path1, path2 string) bool {
	norm1, err := NormalizeForLookup(path1)
	if err != nil {
		return false
	}
	norm2, err := NormalizeForLookup(path2)
	if err != nil {
		return false
	}
	return norm1 == norm2
}
