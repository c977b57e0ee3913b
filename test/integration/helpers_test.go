//go:build integration

package integration_test

import (
	"archive/zip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pluginforge/create-plugin/internal/templates"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir   string // CREATE_PLUGIN_HOME, holds config.yaml
	MirrorDir string // files served by the mirror
	WorkDir   string // where projects are created
}

// setupTestEnv creates isolated temp directories and points the config home at
// one of them. The env var is restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:   t.TempDir(),
		MirrorDir: t.TempDir(),
		WorkDir:   t.TempDir(),
	}
	t.Setenv("CREATE_PLUGIN_HOME", env.HomeDir)
	return env
}

// startMirror serves MirrorDir over HTTP and returns its base URL.
func startMirror(t *testing.T, env *testEnv) string {
	t.Helper()
	srv := httptest.NewServer(http.FileServer(http.Dir(env.MirrorDir)))
	t.Cleanup(srv.Close)
	return srv.URL
}

// publishTemplate writes a zip for tpl into the mirror, wrapping files in the
// template's expected top-level folder.
func publishTemplate(t *testing.T, env *testEnv, tpl templates.Template, files map[string]string) {
	t.Helper()
	wrapped := make(map[string]string, len(files))
	for name, content := range files {
		wrapped[tpl.Wrapper+"/"+name] = content
	}
	writeZip(t, filepath.Join(env.MirrorDir, tpl.ArchiveFile), wrapped)
}

// writeZip creates a zip file holding the given entries verbatim.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirEmpty fails the test if the directory has any entries.
func assertDirEmpty(t *testing.T, path string) {
	t.Helper()
	entries, err := os.ReadDir(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	for _, e := range entries {
		t.Errorf("unexpected entry in %s: %s", path, e.Name())
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
