package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pluginforge/create-plugin/internal/archive"
	"github.com/pluginforge/create-plugin/internal/branding"
	"github.com/pluginforge/create-plugin/internal/config"
	"github.com/pluginforge/create-plugin/internal/fetch"
	"github.com/pluginforge/create-plugin/internal/manifest"
	"github.com/pluginforge/create-plugin/internal/prompt"
	"github.com/pluginforge/create-plugin/internal/scaffold"
	"github.com/pluginforge/create-plugin/internal/templates"
)

var (
	createTemplate    string
	createYes         bool
	createID          string
	createName        string
	createAuthor      string
	createDescription string
	createMirror      string
	createTimeout     time.Duration
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&createTemplate, "template", "t", "", "Starter template: javascript (js) or typescript (ts)")
	f.BoolVarP(&createYes, "yes", "y", false, "Skip prompts and use defaults plus flags")
	f.StringVar(&createID, "id", "", "Plugin id (default: derived from the directory name)")
	f.StringVar(&createName, "name", "", "Plugin display name")
	f.StringVar(&createAuthor, "author", "", "Author name (default: config author.name)")
	f.StringVar(&createDescription, "description", "", "Plugin description")
	f.StringVar(&createMirror, "mirror", "", "Base URL serving template archives (default: config mirror)")
	f.DurationVar(&createTimeout, "timeout", 0, "Download timeout (default: config timeout, 30s)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	tplKind := templates.JavaScript
	if createTemplate != "" {
		tpl, err := templates.Lookup(createTemplate)
		if err != nil {
			return err
		}
		tplKind = tpl.Kind
	}

	defaults := prompt.Defaults{
		Template: tplKind,
		Manifest: manifestDefaults(args),
	}

	var answers *prompt.Answers
	if createYes {
		var err error
		if answers, err = answersFromDefaults(defaults); err != nil {
			return err
		}
	} else {
		var err error
		answers, err = prompt.Collect(cmd.InOrStdin(), cmd.OutOrStdout(), defaults)
		if err != nil {
			return fmt.Errorf("collecting plugin details: %w", err)
		}
	}

	dest := filepath.Join(".", answers.Manifest.ID)
	if len(args) == 1 {
		dest = args[0]
	}

	timeout := createTimeout
	if timeout <= 0 {
		timeout = config.Timeout()
	}
	mirror := createMirror
	if mirror == "" {
		mirror = config.Mirror()
	}

	fetchOpts := []fetch.Option{
		fetch.WithTimeout(timeout),
		fetch.WithMaxBytes(config.MaxArchiveBytes()),
		fetch.WithUserAgent(branding.UserAgent() + "/" + buildVersion),
		fetch.WithLogger(logger),
	}
	if !verbose {
		fetchOpts = append(fetchOpts, fetch.WithProgress(cmd.ErrOrStderr()))
	}

	logger.Debug("creating plugin", "template", answers.Template.Kind, "dest", dest, "id", answers.Manifest.ID)

	result, err := scaffold.Run(cmd.Context(), scaffold.Options{
		Template: answers.Template,
		Dest:     dest,
		Manifest: answers.Manifest,
		Mirror:   mirror,
		Fetcher:  fetch.New(fetchOpts...),
		Extract: archive.ExtractOptions{
			MaxEntries:   config.MaxEntries(),
			MaxTotalSize: config.MaxArchiveBytes(),
			Logger:       logger,
		},
		Logger: logger,
	})
	if err != nil {
		return explain(err)
	}

	printResult(cmd.OutOrStdout(), answers, result)
	return nil
}

// manifestDefaults merges configured author and license settings with flags.
func manifestDefaults(args []string) manifest.Manifest {
	m := manifest.Manifest{
		ID:                 createID,
		Name:               createName,
		MinPlatformVersion: config.Get(config.KeyMinPlatformVersion),
		License:            config.Get(config.KeyLicense),
		Description:        createDescription,
		Author: manifest.Author{
			Name:   config.Get(config.KeyAuthorName),
			Email:  config.Get(config.KeyAuthorEmail),
			URL:    config.Get(config.KeyAuthorURL),
			Handle: config.Get(config.KeyAuthorHandle),
		},
	}
	if createAuthor != "" {
		m.Author.Name = createAuthor
	}
	if m.ID == "" && len(args) == 1 {
		m.ID = manifest.IDFromName(filepath.Base(args[0]))
	}
	return m
}

// answersFromDefaults completes the defaults without asking anything.
func answersFromDefaults(d prompt.Defaults) (*prompt.Answers, error) {
	tpl, err := templates.Lookup(string(d.Template))
	if err != nil {
		return nil, err
	}
	m := d.Manifest
	if m.ID == "" {
		return nil, errors.New("--yes needs a plugin id: pass --id or a directory")
	}
	if m.Name == "" {
		m.Name = manifest.NameFromID(m.ID)
	}
	if m.Version == "" {
		m.Version = "0.1.0"
	}
	if m.Author.Name == "" {
		return nil, fmt.Errorf("--yes needs an author: pass --author or run '%s config set %s <name>'",
			branding.CLIName(), config.KeyAuthorName)
	}
	if len(m.Files) == 0 {
		m.Files = append([]string(nil), tpl.Files...)
	}
	return &prompt.Answers{Template: tpl, Manifest: &m}, nil
}

// explain adds a hint for the failure classes a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, fetch.ErrNetwork):
		return fmt.Errorf("%w\nCheck your connection, or set a mirror with '%s config set %s <url>'",
			err, branding.CLIName(), config.KeyMirror)
	case errors.Is(err, scaffold.ErrDestinationExists):
		return fmt.Errorf("%w\nChoose another directory or remove the existing one", err)
	default:
		return err
	}
}

func printResult(w io.Writer, answers *prompt.Answers, result *scaffold.Result) {
	fmt.Fprintf(w, "\n%s %s plugin %s at %s\n",
		SuccessStyle.Render("Created"),
		answers.Template.DisplayName,
		TitleStyle.Render(answers.Manifest.Name),
		CmdStyle.Render(result.OutputDir))
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("  %d files, manifest at %s", len(result.Files), result.ManifestPath)))

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\n"+WarningStyle.Render("Warnings:"))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  1. cd %s\n", CmdStyle.Render(result.OutputDir))
	fmt.Fprintln(w, "  2. Install dependencies with 'npm install'")
	fmt.Fprintf(w, "  3. Check the manifest with '%s validate'\n", branding.CLIName())
}
