// Package templates holds the fixed set of starter templates a plugin can be
// scaffolded from. Each entry maps to a literal archive URL and the wrapper
// directory the hosting service puts around the archive contents.
package templates

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a starter template.
type Kind string

const (
	JavaScript Kind = "javascript"
	TypeScript Kind = "typescript"
)

// Template describes one downloadable starter.
type Template struct {
	Kind        Kind
	DisplayName string
	// URL is the canonical archive location.
	URL string
	// ArchiveFile is the file name requested from a mirror.
	ArchiveFile string
	// Wrapper is the top-level directory the archive is expected to carry.
	Wrapper string
	// Files lists the build outputs the manifest declares by default.
	Files []string
}

var table = map[Kind]Template{
	JavaScript: {
		Kind:        JavaScript,
		DisplayName: "JavaScript",
		URL:         "https://github.com/pluginforge/plugin-template-js/archive/refs/heads/main.zip",
		ArchiveFile: "plugin-template-js-main.zip",
		Wrapper:     "plugin-template-js-main",
		Files:       []string{"main.js"},
	},
	TypeScript: {
		Kind:        TypeScript,
		DisplayName: "TypeScript",
		URL:         "https://github.com/pluginforge/plugin-template-ts/archive/refs/heads/main.zip",
		ArchiveFile: "plugin-template-ts-main.zip",
		Wrapper:     "plugin-template-ts-main",
		Files:       []string{"dist/main.js"},
	},
}

var aliases = map[string]Kind{
	"js":         JavaScript,
	"javascript": JavaScript,
	"ts":         TypeScript,
	"typescript": TypeScript,
}

// Lookup resolves a template by kind or alias, case-insensitively.
func Lookup(name string) (Template, error) {
	kind, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q: choose one of %s", name, strings.Join(Names(), ", "))
	}
	return table[kind], nil
}

// All returns every template, JavaScript first.
func All() []Template {
	return []Template{table[JavaScript], table[TypeScript]}
}

// Names returns the accepted template names and aliases, sorted.
func Names() []string {
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// ArchiveURL returns the URL to download from. A non-empty mirror replaces
// the canonical host: <mirror>/<archive file>.
func (t Template) ArchiveURL(mirror string) string {
	if mirror == "" {
		return t.URL
	}
	return strings.TrimRight(mirror, "/") + "/" + t.ArchiveFile
}
