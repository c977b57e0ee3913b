// Package prompt collects plugin metadata from an interactive terminal session.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pluginforge/create-plugin/internal/manifest"
	"github.com/pluginforge/create-plugin/internal/templates"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Answers holds everything needed to scaffold a project.
type Answers struct {
	Template templates.Template
	Manifest *manifest.Manifest
}

// Defaults pre-fills the prompts. Empty input keeps the shown default.
type Defaults struct {
	Template templates.Kind
	Manifest manifest.Manifest
}

// Collect asks for the template and every manifest field, one line each.
// A value that fails a field check is reported and asked for again.
func Collect(r io.Reader, w io.Writer, d Defaults) (*Answers, error) {
	s := &session{reader: bufio.NewReader(r), w: w}

	tpl, err := s.selectTemplate(d.Template)
	if err != nil {
		return nil, err
	}

	def := d.Manifest
	if len(def.Files) == 0 {
		def.Files = tpl.Files
	}
	m := &manifest.Manifest{}

	fields := []struct {
		label string
		def   string
		check func(string) error
		set   func(string) error
	}{
		{"Plugin id", def.ID, checkID, func(v string) error { m.ID = v; return nil }},
		{"Display name", def.Name, required, func(v string) error { m.Name = v; return nil }},
		{"Version", orDefault(def.Version, "0.1.0"), checkVersion, func(v string) error { m.Version = v; return nil }},
		{"Minimum platform version", def.MinPlatformVersion, checkPlatformVersion, func(v string) error { m.MinPlatformVersion = v; return nil }},
		{"License", def.License, required, func(v string) error { m.License = v; return nil }},
		{"Author name", def.Author.Name, required, func(v string) error { m.Author.Name = v; return nil }},
		{"Author email", def.Author.Email, nil, func(v string) error { m.Author.Email = v; return nil }},
		{"Author URL", def.Author.URL, nil, func(v string) error { m.Author.URL = v; return nil }},
		{"Author handle", def.Author.Handle, nil, func(v string) error { m.Author.Handle = v; return nil }},
		{"Description", def.Description, nil, func(v string) error { m.Description = v; return nil }},
		{"Repository URL", def.Repository, nil, func(v string) error { m.Repository = v; return nil }},
		{"Price", formatPrice(def.Price), checkPrice, func(v string) error {
			p, err := strconv.ParseFloat(v, 64)
			m.Price = p
			return err
		}},
		{"Keywords (comma separated)", strings.Join(def.Keywords, ", "), nil, func(v string) error { m.Keywords = splitList(v); return nil }},
		{"Files (comma separated)", strings.Join(def.Files, ", "), nil, func(v string) error { m.Files = splitList(v); return nil }},
	}

	for i := range fields {
		f := &fields[i]
		// The display name default depends on the id just entered.
		if f.label == "Display name" && f.def == "" {
			f.def = manifest.NameFromID(m.ID)
		}
		v, err := s.ask(f.label, f.def, f.check)
		if err != nil {
			return nil, err
		}
		if err := f.set(v); err != nil {
			return nil, fmt.Errorf("%s: %w", strings.ToLower(f.label), err)
		}
	}

	return &Answers{Template: tpl, Manifest: m}, nil
}

type session struct {
	reader *bufio.Reader
	w      io.Writer
}

// readLine returns one trimmed line. A final line without a newline is
// accepted; end of input before any text is an error.
func (s *session) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading input: %w", io.ErrUnexpectedEOF)
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *session) ask(label, def string, check func(string) error) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(s.w, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(s.w, "%s: ", label)
		}

		v, err := s.readLine()
		if err != nil {
			return "", err
		}
		if v == "" {
			v = def
		}
		if check == nil {
			return v, nil
		}
		if err := check(v); err != nil {
			fmt.Fprintf(s.w, "  %v\n", err)
			continue
		}
		return v, nil
	}
}

// selectTemplate presents a numbered list and returns the chosen template.
func (s *session) selectTemplate(def templates.Kind) (templates.Template, error) {
	all := templates.All()
	defIdx := 0
	for i, t := range all {
		if t.Kind == def {
			defIdx = i
		}
	}

	for {
		fmt.Fprintf(s.w, "\nSelect template:\n")
		for i, t := range all {
			fmt.Fprintf(s.w, "  %d) %s\n", i+1, t.DisplayName)
		}
		fmt.Fprintf(s.w, "Enter number [1-%d] (%d): ", len(all), defIdx+1)

		line, err := s.readLine()
		if err != nil {
			return templates.Template{}, err
		}
		if line == "" {
			return all[defIdx], nil
		}

		num, err := strconv.Atoi(line)
		if err == nil && num >= 1 && num <= len(all) {
			return all[num-1], nil
		}
		// Names and aliases are accepted as well as numbers.
		if t, err := templates.Lookup(line); err == nil {
			return t, nil
		}
		fmt.Fprintf(s.w, "  invalid selection %q: choose 1-%d\n", line, len(all))
	}
}

func required(v string) error {
	if v == "" {
		return errors.New("a value is required")
	}
	return nil
}

func checkID(v string) error {
	if !idPattern.MatchString(v) {
		return fmt.Errorf("invalid id %q: must match pattern [a-z0-9][a-z0-9-]*", v)
	}
	return nil
}

func checkVersion(v string) error {
	_, err := manifest.ParsePluginVersion(v)
	return err
}

func checkPlatformVersion(v string) error {
	_, err := manifest.ParsePlatformVersion(v)
	return err
}

func checkPrice(v string) error {
	p, err := strconv.ParseFloat(v, 64)
	if err != nil || p < 0 {
		return fmt.Errorf("invalid price %q: must be a number >= 0", v)
	}
	return nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// splitList splits comma separated input, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
