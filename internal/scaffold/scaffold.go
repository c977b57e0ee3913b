package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/pluginforge/create-plugin/internal/archive"
	"github.com/pluginforge/create-plugin/internal/manifest"
	"github.com/pluginforge/create-plugin/internal/platform"
	"github.com/pluginforge/create-plugin/internal/templates"
)

// ErrDestinationExists is returned when the project path is already taken.
var ErrDestinationExists = errors.New("destination already exists")

// Fetcher downloads a template archive.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options configures a single scaffold run.
type Options struct {
	Template templates.Template
	// Dest is the project directory to create. It must not exist.
	Dest     string
	Manifest *manifest.Manifest
	// Mirror replaces the template's canonical host when set.
	Mirror  string
	Fetcher Fetcher
	Extract archive.ExtractOptions
	Logger  *log.Logger
}

// Result holds the outcome of a scaffold run.
type Result struct {
	OutputDir    string
	ManifestPath string
	// Wrapper is the top-level folder that was flattened, if any.
	Wrapper  string
	Files    []string
	Warnings []string
}

// Run executes the pipeline: fetch, extract, normalize, write manifest,
// rename into place.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Fetcher == nil {
		return nil, errors.New("scaffold: no fetcher configured")
	}
	if opts.Manifest == nil {
		return nil, errors.New("scaffold: no manifest configured")
	}

	dest, err := filepath.Abs(opts.Dest)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %w", archive.ErrIO, opts.Dest, err)
	}
	if err := checkAbsent(dest); err != nil {
		return nil, err
	}

	// Refuse an invalid manifest before anything is downloaded.
	check, err := manifest.ValidateManifest(opts.Manifest)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, fmt.Errorf("%w: %s", manifest.ErrInvalid, check.Issues[0])
	}

	url := opts.Template.ArchiveURL(opts.Mirror)
	logger.Debug("fetching template", "template", opts.Template.Kind, "url", url)
	data, err := opts.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading %s template: %w", opts.Template.DisplayName, err)
	}
	logger.Debug("template downloaded", "bytes", len(data))

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", archive.ErrIO, parent, err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+".staging-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating staging directory: %w", archive.ErrIO, err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			logger.Warn("could not remove staging directory", "path", staging, "err", rmErr)
		}
	}()

	extracted, err := archive.Extract(data, staging, opts.Extract)
	if err != nil {
		return nil, fmt.Errorf("extracting template: %w", err)
	}
	logger.Debug("archive extracted", "files", len(extracted.Files), "dirs", len(extracted.Dirs), "bytes", extracted.Bytes)

	result := &Result{OutputDir: dest}

	wrapper, err := archive.Normalize(staging)
	if err != nil {
		return nil, fmt.Errorf("flattening template: %w", err)
	}
	result.Wrapper = wrapper
	switch {
	case wrapper == "":
		result.Warnings = append(result.Warnings,
			"archive has no single top-level folder; its contents were used as-is")
	case opts.Template.Wrapper != "" && wrapper != opts.Template.Wrapper:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("archive top-level folder is %q, expected %q", wrapper, opts.Template.Wrapper))
	}
	logger.Debug("layout normalized", "wrapper", wrapper)

	if _, err := os.Lstat(filepath.Join(staging, manifest.FileName)); err == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("template %s was replaced by the generated one", manifest.FileName))
	}
	if _, err := manifest.Write(staging, opts.Manifest); err != nil {
		return nil, err
	}

	if result.Files, err = listFiles(staging); err != nil {
		return nil, err
	}

	// MkdirTemp creates the directory 0700.
	if err := platform.Chmod(staging, 0755); err != nil {
		return nil, fmt.Errorf("%w: setting permissions on %s: %w", archive.ErrIO, staging, err)
	}
	if err := checkAbsent(dest); err != nil {
		return nil, err
	}
	if err := os.Rename(staging, dest); err != nil {
		return nil, fmt.Errorf("%w: moving project into %s: %w", archive.ErrIO, dest, err)
	}
	committed = true
	result.ManifestPath = filepath.Join(dest, manifest.FileName)
	logger.Debug("project created", "path", dest)

	return result, nil
}

func checkAbsent(dest string) error {
	_, err := os.Lstat(dest)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("%w: checking %s: %w", archive.ErrIO, dest, err)
	}
}

// listFiles returns the regular files under root as sorted slash paths.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", archive.ErrIO, root, err)
	}
	sort.Strings(files)
	return files, nil
}
