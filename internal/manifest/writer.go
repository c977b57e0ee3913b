package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalid is returned by Write when the manifest fails validation.
var ErrInvalid = errors.New("invalid manifest")

// Marshal renders the manifest as indented JSON with a trailing newline.
// HTML characters are left unescaped so URLs and descriptions stay readable.
func Marshal(m *Manifest) ([]byte, error) {
	n := m.normalized()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&n); err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Write validates m and writes it to <dir>/manifest.json, replacing any file
// already there. It returns the written path.
func Write(dir string, m *Manifest) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("project directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", dir)
	}

	result, err := ValidateManifest(m)
	if err != nil {
		return "", err
	}
	if !result.Valid {
		msgs := make([]string, len(result.Issues))
		for i, issue := range result.Issues {
			msgs[i] = issue.String()
		}
		return "", fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}

	data, err := Marshal(m)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Read parses the manifest file at path.
func Read(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
