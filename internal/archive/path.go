package archive

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// containedPath resolves an entry name against root and returns the target
// path. It performs no I/O. Names are rejected when they are empty, absolute,
// carry a drive or volume prefix, contain NUL bytes, or have any ".." segment,
// even one that would clean back inside the root. Backslashes count as
// separators so Windows-built archives cannot smuggle traversal past the check.
func containedPath(root, rawName string) (string, error) {
	if rawName == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafeEntry)
	}
	if strings.ContainsRune(rawName, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrUnsafeEntry, rawName)
	}

	name := strings.ReplaceAll(rawName, `\`, "/")
	if strings.HasPrefix(name, "/") || hasDrivePrefix(name) || filepath.IsAbs(rawName) || filepath.VolumeName(rawName) != "" {
		return "", fmt.Errorf("%w: %q is an absolute path", ErrUnsafeEntry, rawName)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q contains a parent-directory segment", ErrUnsafeEntry, rawName)
		}
	}

	cleaned := path.Clean(name)
	if cleaned == "." {
		return filepath.Clean(root), nil
	}

	target := filepath.Join(root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q resolves outside the destination", ErrUnsafeEntry, rawName)
	}
	return target, nil
}

// hasDrivePrefix reports names like "C:evil" or "c:/evil", which Windows
// resolves against a drive rather than the destination.
func hasDrivePrefix(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
