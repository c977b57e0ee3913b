package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ExtractOptions bounds what an archive may expand to.
type ExtractOptions struct {
	// MaxEntries is the largest number of entries accepted. Zero means unlimited.
	MaxEntries int

	// MaxTotalSize is the largest total uncompressed size accepted. Zero means
	// unlimited. The limit is enforced on bytes actually decompressed, not on
	// the sizes the archive declares.
	MaxTotalSize int64

	// Logger receives per-entry debug output. Nil discards it.
	Logger *log.Logger
}

// DefaultExtractOptions are the limits used when the caller has no opinion.
var DefaultExtractOptions = ExtractOptions{
	MaxEntries:   10000,
	MaxTotalSize: 256 << 20,
}

// ExtractResult lists what was written, as slash-separated paths relative to
// the destination root, in archive order.
type ExtractResult struct {
	Root  string
	Dirs  []string
	Files []string
	Bytes int64
}

type plannedEntry struct {
	file   *zip.File
	target string
	rel    string
	isDir  bool
}

// Extract writes every entry of the zip container in data under root,
// creating root first. All entry names are checked before anything is
// written, so an archive carrying a single unsafe name leaves no trace.
// Entries already written when a later entry fails are left in place.
func Extract(data []byte, root string, opts ExtractOptions) (*ExtractResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
	}

	if opts.MaxEntries > 0 && len(zr.File) > opts.MaxEntries {
		return nil, fmt.Errorf("%w: archive has %d entries, limit is %d", ErrUnsafeEntry, len(zr.File), opts.MaxEntries)
	}

	plan, err := planEntries(zr.File, root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating destination %s: %w", ErrIO, root, err)
	}

	result := &ExtractResult{Root: root}
	for _, e := range plan {
		if err := checkNoSymlinks(root, e.target); err != nil {
			return result, err
		}

		if e.isDir {
			if e.rel == "." {
				continue
			}
			if err := os.MkdirAll(e.target, 0755); err != nil {
				return result, fmt.Errorf("%w: creating directory %s: %w", ErrIO, e.rel, err)
			}
			logger.Debug("created directory", "entry", e.rel)
			result.Dirs = append(result.Dirs, e.rel)
			continue
		}

		// Ancestors are created here rather than relying on the archive
		// listing its directories first.
		if err := os.MkdirAll(filepath.Dir(e.target), 0755); err != nil {
			return result, fmt.Errorf("%w: creating parent directory for %s: %w", ErrIO, e.rel, err)
		}

		remaining := int64(-1)
		if opts.MaxTotalSize > 0 {
			remaining = opts.MaxTotalSize - result.Bytes
		}
		n, err := extractFile(e.file, e.target, remaining)
		result.Bytes += n
		if err != nil {
			return result, fmt.Errorf("extracting %s: %w", e.rel, err)
		}
		logger.Debug("wrote file", "entry", e.rel, "bytes", n)
		result.Files = append(result.Files, e.rel)
	}

	return result, nil
}

// planEntries resolves and classifies every entry without touching the disk.
func planEntries(files []*zip.File, root string) ([]plannedEntry, error) {
	plan := make([]plannedEntry, 0, len(files))
	for _, f := range files {
		target, err := containedPath(root, f.Name)
		if err != nil {
			return nil, err
		}

		mode := f.Mode()
		isDir := mode.IsDir() || strings.HasSuffix(f.Name, "/")
		if !isDir && !mode.IsRegular() {
			return nil, fmt.Errorf("%w: %q has unsupported type %s", ErrUnsafeEntry, f.Name, mode.Type())
		}
		if !isDir && target == filepath.Clean(root) {
			return nil, fmt.Errorf("%w: %q names the destination itself", ErrUnsafeEntry, f.Name)
		}

		rel, _ := filepath.Rel(root, target)
		plan = append(plan, plannedEntry{
			file:   f,
			target: target,
			rel:    filepath.ToSlash(rel),
			isDir:  isDir,
		})
	}
	return plan, nil
}

// checkNoSymlinks refuses to write through a symlink that already exists
// somewhere between root and target, including target itself.
func checkNoSymlinks(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." {
		return nil
	}
	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: inspecting %s: %w", ErrIO, current, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s is a symlink", ErrUnsafeEntry, current)
		}
	}
	return nil
}

// extractFile copies one entry to target. remaining is the decompressed byte
// budget left, or -1 for none. Read failures are reported as malformed input,
// write failures as I/O.
func extractFile(f *zip.File, target string, remaining int64) (written int64, err error) {
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: opening entry: %w", ErrMalformedArchive, err)
	}
	defer rc.Close()

	perm := os.FileMode(0644)
	if f.Mode().Perm()&0111 != 0 {
		perm = 0755
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("%w: creating file: %w", ErrIO, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: closing file: %w", ErrIO, closeErr)
		}
	}()

	var src io.Reader = rc
	if remaining >= 0 {
		src = io.LimitReader(rc, remaining+1)
	}

	w := &trackingWriter{w: out}
	written, err = io.Copy(w, src)
	if w.err != nil {
		return written, fmt.Errorf("%w: writing file: %w", ErrIO, w.err)
	}
	if err != nil {
		return written, fmt.Errorf("%w: reading entry: %w", ErrMalformedArchive, err)
	}
	if remaining >= 0 && written > remaining {
		return written, fmt.Errorf("%w: archive expands beyond the size limit", ErrUnsafeEntry)
	}
	return written, nil
}

// trackingWriter remembers write errors so they can be told apart from
// errors produced while decompressing.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}
