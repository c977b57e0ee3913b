package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// rename is swapped in tests to simulate a failure partway through a move.
var rename = os.Rename

// Normalize flattens root when its only child is a directory: every entry of
// that wrapper is moved up into root and the emptied wrapper is removed. It
// returns the wrapper's name, or "" when root was left alone (no children,
// several children, or a single non-directory child).
//
// On failure the moves already made are reversed so root is back in its
// wrapped shape; if that reversal also fails the returned error says so.
func Normalize(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrIO, root, err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return "", nil
	}

	wrapperName := entries[0].Name()
	wrapper := filepath.Join(root, wrapperName)

	children, err := os.ReadDir(wrapper)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrIO, wrapper, err)
	}

	// A child sharing the wrapper's name would collide with the wrapper
	// itself, so the wrapper is parked under a free name first.
	holding := wrapper
	for _, c := range children {
		if c.Name() == wrapperName {
			holding, err = freeSibling(root, wrapperName)
			if err != nil {
				return "", err
			}
			if err := rename(wrapper, holding); err != nil {
				return "", fmt.Errorf("%w: renaming %s: %w", ErrIO, wrapperName, err)
			}
			break
		}
	}

	var moved []string
	undo := func(cause error) error {
		var rollbackErrs []error
		for i := len(moved) - 1; i >= 0; i-- {
			name := moved[i]
			if err := rename(filepath.Join(root, name), filepath.Join(holding, name)); err != nil {
				rollbackErrs = append(rollbackErrs, err)
			}
		}
		if holding != wrapper {
			if err := rename(holding, wrapper); err != nil {
				rollbackErrs = append(rollbackErrs, err)
			}
		}
		if len(rollbackErrs) > 0 {
			return fmt.Errorf("%w: flattening %s: %w; restoring the wrapped layout also failed, %s is partially flattened: %w",
				ErrIO, wrapperName, cause, root, errors.Join(rollbackErrs...))
		}
		return fmt.Errorf("%w: flattening %s: %w", ErrIO, wrapperName, cause)
	}

	for _, c := range children {
		dst := filepath.Join(root, c.Name())
		if _, err := os.Lstat(dst); err == nil {
			return "", undo(fmt.Errorf("%s already exists", dst))
		}
		if err := rename(filepath.Join(holding, c.Name()), dst); err != nil {
			return "", undo(err)
		}
		moved = append(moved, c.Name())
	}

	if err := os.Remove(holding); err != nil {
		return "", undo(err)
	}
	return wrapperName, nil
}

// freeSibling returns an unused hidden name next to the wrapper.
func freeSibling(root, wrapperName string) (string, error) {
	for i := 0; i < 1000; i++ {
		candidate := filepath.Join(root, fmt.Sprintf(".%s.flatten-%d", wrapperName, i))
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: inspecting %s: %w", ErrIO, candidate, err)
		}
	}
	return "", fmt.Errorf("%w: no free name to park %s", ErrIO, wrapperName)
}
