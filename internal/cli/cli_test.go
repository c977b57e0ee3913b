package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pluginforge/create-plugin/internal/fetch"
	"github.com/pluginforge/create-plugin/internal/manifest"
	"github.com/pluginforge/create-plugin/internal/scaffold"
	"github.com/pluginforge/create-plugin/internal/templates"
)

// runCLI executes the command tree in isolation and returns what it printed.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CREATE_PLUGIN_HOME", home)
	return home
}

// templateServer serves a zip wrapped the way the hosting service wraps it.
func templateServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	tpl, _ := templates.Lookup("js")
	for name, content := range map[string]string{
		tpl.Wrapper + "/package.json": `{"name":"starter"}`,
		tpl.Wrapper + "/main.js":      "module.exports = {}\n",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+tpl.ArchiveFile {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	isolateHome(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-01-01"

	out, _, err := runCLI(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1.2.3\n" {
		t.Errorf("short version = %q", out)
	}

	out, _, err = runCLI(t, "", "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"commit": "abc123"`) {
		t.Errorf("json version = %s", out)
	}

	out, _, _ = runCLI(t, "", "version")
	if !strings.Contains(out, "create-plugin version 1.2.3") {
		t.Errorf("version = %q", out)
	}
}

func TestTemplatesCommand(t *testing.T) {
	isolateHome(t)
	t.Setenv("CREATE_PLUGIN_MIRROR", "https://mirror.example.com/templates")

	out, _, err := runCLI(t, "", "templates")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"javascript", "typescript", "https://mirror.example.com/templates/plugin-template-ts-main.zip"} {
		if !strings.Contains(out, want) {
			t.Errorf("templates output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	home := isolateHome(t)

	if _, _, err := runCLI(t, "", "config", "set", "author.name", "Ada"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	out, _, err := runCLI(t, "", "config", "get", "author.name")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Ada\n" {
		t.Errorf("config get = %q", out)
	}

	out, _, err = runCLI(t, "", "config", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "license = MIT") || !strings.Contains(out, "author.name = Ada") {
		t.Errorf("config list = %s", out)
	}

	bad := [][]string{
		{"config", "set", "timeout", "soon"},
		{"config", "set", "max_entries", "12abc"},
		{"config", "set", "min_platform_version", "latest"},
		{"config", "set", "colour", "blue"},
		{"config", "get", "colour"},
	}
	for _, args := range bad {
		if _, _, err := runCLI(t, "", args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	m := &manifest.Manifest{
		ID: "ok", Name: "Ok", Version: "1.0.0", MinPlatformVersion: "1.0.0",
		License: "MIT", Author: manifest.Author{Name: "Ada"},
	}
	if _, err := manifest.Write(dir, m); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "", "validate", dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "Valid:") {
		t.Errorf("output = %q", out)
	}

	bad := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(bad, []byte(`{"id":"ok","version":"1"}`), 0644); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, "", "validate", bad)
	if !errors.Is(err, errInvalidManifest) {
		t.Fatalf("expected errInvalidManifest, got %v", err)
	}
	if !strings.Contains(out, "/version") {
		t.Errorf("issues not listed:\n%s", out)
	}

	if _, _, err := runCLI(t, "", "validate", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCreateNonInteractive(t *testing.T) {
	isolateHome(t)
	srv := templateServer(t)
	dest := filepath.Join(t.TempDir(), "Word Counter")

	out, _, err := runCLI(t, "", "--yes", "--author", "Ada", "--mirror", srv.URL, dest)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("summary missing:\n%s", out)
	}

	m, err := manifest.Read(filepath.Join(dest, manifest.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != "word-counter" || m.Name != "Word Counter" || m.License != "MIT" || m.Version != "0.1.0" {
		t.Errorf("manifest = %+v", m)
	}
	if _, err := os.Stat(filepath.Join(dest, "main.js")); err != nil {
		t.Errorf("template file missing: %v", err)
	}
}

func TestCreateInteractive(t *testing.T) {
	isolateHome(t)
	t.Setenv("CREATE_PLUGIN_AUTHOR_NAME", "Grace")
	srv := templateServer(t)
	t.Setenv("CREATE_PLUGIN_MIRROR", srv.URL)
	dest := filepath.Join(t.TempDir(), "out")

	// Template, id, then defaults for everything else.
	input := "1\nnotes-sync\n" + strings.Repeat("\n", 13)
	out, _, err := runCLI(t, input, dest)
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}

	m, err := manifest.Read(filepath.Join(dest, manifest.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != "notes-sync" || m.Author.Name != "Grace" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestCreateFailures(t *testing.T) {
	t.Run("yes without author", func(t *testing.T) {
		isolateHome(t)
		_, _, err := runCLI(t, "", "--yes", "--id", "x", filepath.Join(t.TempDir(), "x"))
		if err == nil || !strings.Contains(err.Error(), "--author") {
			t.Fatalf("expected author hint, got %v", err)
		}
	})

	t.Run("yes without id", func(t *testing.T) {
		isolateHome(t)
		if _, _, err := runCLI(t, "", "--yes", "--author", "Ada"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		isolateHome(t)
		if _, _, err := runCLI(t, "", "--template", "rust", "--yes", "--id", "x"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unreachable mirror", func(t *testing.T) {
		isolateHome(t)
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		dest := filepath.Join(t.TempDir(), "p")
		_, _, err := runCLI(t, "", "--yes", "--id", "p", "--author", "Ada", "--mirror", url, "--timeout", "2s", dest)
		if !errors.Is(err, fetch.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
		if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
			t.Error("destination must not exist after a failed download")
		}
	})

	t.Run("destination exists", func(t *testing.T) {
		isolateHome(t)
		dest := t.TempDir()
		_, _, err := runCLI(t, "", "--yes", "--id", "p", "--author", "Ada", dest)
		if !errors.Is(err, scaffold.ErrDestinationExists) {
			t.Fatalf("expected ErrDestinationExists, got %v", err)
		}
	})
}
