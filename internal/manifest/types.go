package manifest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FileName is the descriptor file written into the project root.
const FileName = "manifest.json"

// Manifest is the plugin descriptor consumed by the host platform.
type Manifest struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Version            string   `json:"version"`
	MinPlatformVersion string   `json:"minPlatformVersion"`
	License            string   `json:"license"`
	Author             Author   `json:"author"`
	Description        string   `json:"description"`
	Repository         string   `json:"repository,omitempty"`
	Price              float64  `json:"price"`
	Keywords           []string `json:"keywords"`
	Files              []string `json:"files"`
}

// Author identifies who publishes the plugin.
type Author struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	URL    string `json:"url,omitempty"`
	Handle string `json:"handle,omitempty"`
}

// normalized returns a copy whose list fields serialize as arrays, never null.
func (m Manifest) normalized() Manifest {
	if m.Keywords == nil {
		m.Keywords = []string{}
	}
	if m.Files == nil {
		m.Files = []string{}
	}
	return m
}

// IDFromName derives a plugin id from a directory or display name: lower-case
// letters, digits and single hyphens.
func IDFromName(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	return b.String()
}

// NameFromID turns "word-counter" into "Word Counter".
func NameFromID(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "-", " "))
}
