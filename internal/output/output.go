// Package output locates and writes generated files.
package output

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// File is one generated source, addressed relative to the output directory
type File struct {
	Subfolder string
	BaseName  string
	Extension string
	Content   []byte
}

// Path returns the slash-separated path of the file below the output directory
func (f File) Path() string {
	name := f.BaseName
	if f.Extension != "" {
		name += "." + f.Extension
	}
	if f.Subfolder == "" {
		return name
	}
	return path.Join(f.Subfolder, name)
}

// Locator creates or locates the on-disk location for a generated file
type Locator interface {
	Locate(outputDir, subfolder, baseName, extension string) (string, error)
}

// Sink receives a complete set of generated files.
// WriteAll returns the location of every written file, in input order.
type Sink interface {
	WriteAll(ctx context.Context, files []File) ([]string, error)
}

// FilesystemSink writes below a root directory on the local filesystem
type FilesystemSink struct {
	Root string
	// Mode is the file permission mode (default: 0644)
	Mode os.FileMode
}

// NewFilesystemSink creates a FilesystemSink writing to root
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644}
}

// Locate returns outputDir/subfolder/baseName.extension, creating the directory if needed
func (s *FilesystemSink) Locate(outputDir, subfolder, baseName, extension string) (string, error) {
	f := File{Subfolder: subfolder, BaseName: baseName, Extension: extension}
	rel := f.Path()
	if err := ValidatePath(rel); err != nil {
		return "", errors.Wrapf(err, "invalid path %q", rel)
	}

	fullPath := filepath.Join(outputDir, filepath.FromSlash(rel))
	if err := insideRoot(outputDir, fullPath); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}
	return fullPath, nil
}

// WriteAll stages every file in a temp file next to its target and renames
// them into place only once all of them were written
func (s *FilesystemSink) WriteAll(ctx context.Context, files []File) ([]string, error) {
	for _, f := range files {
		if err := ValidatePath(f.Path()); err != nil {
			return nil, errors.Wrapf(err, "invalid path %q", f.Path())
		}
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	type staged struct{ temp, target string }
	var pending []staged
	cleanup := func() {
		for _, p := range pending {
			_ = os.Remove(p.temp)
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}

		target, err := s.Locate(s.Root, f.Subfolder, f.BaseName, f.Extension)
		if err != nil {
			cleanup()
			return nil, err
		}

		temp, err := writeTemp(filepath.Dir(target), f.Content, mode)
		if err != nil {
			cleanup()
			return nil, errors.Wrapf(err, "failed to stage %s", f.Path())
		}
		pending = append(pending, staged{temp: temp, target: target})
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, err
	}

	written := make([]string, 0, len(pending))
	for i, p := range pending {
		if err := os.Rename(p.temp, p.target); err != nil {
			pending = pending[i:]
			cleanup()
			return written, errors.Wrapf(err, "failed to move %s into place", p.target)
		}
		written = append(written, p.target)
	}
	return written, nil
}

func writeTemp(dir string, content []byte, mode os.FileMode) (string, error) {
	tempFile, err := os.CreateTemp(dir, ".dtogen-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	tempPath := tempFile.Name()

	_, writeErr := tempFile.Write(content)
	closeErr := tempFile.Close()
	if writeErr != nil {
		_ = os.Remove(tempPath)
		return "", errors.Wrap(writeErr, "failed to write temp file")
	}
	if closeErr != nil {
		_ = os.Remove(tempPath)
		return "", errors.Wrap(closeErr, "failed to close temp file")
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.Wrap(err, "failed to set file mode")
	}
	return tempPath, nil
}

func insideRoot(root, fullPath string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrap(err, "failed to resolve output directory")
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return errors.Wrap(err, "failed to resolve path")
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return errors.Newf("path escapes output directory: %q", fullPath)
	}
	return nil
}

// MemorySink keeps generated files in memory, keyed by File.Path
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteAll stores copies of all files, or none of them if a path is invalid
func (s *MemorySink) WriteAll(ctx context.Context, files []File) ([]string, error) {
	for _, f := range files {
		if err := ValidatePath(f.Path()); err != nil {
			return nil, errors.Wrapf(err, "invalid path %q", f.Path())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(files))
	for _, f := range files {
		s.files[f.Path()] = append([]byte(nil), f.Content...)
		paths = append(paths, f.Path())
	}
	return paths, nil
}

// Get returns a copy of a stored file, or nil if not found
func (s *MemorySink) Get(p string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[p]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Len returns the number of stored files
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// ValidatePath checks that p is a clean, relative, slash-separated path
func ValidatePath(p string) error {
	if p == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return errors.New("absolute paths not allowed")
	}
	if len(p) >= 2 && p[1] == ':' {
		return errors.New("absolute paths not allowed")
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := path.Clean(p); cleaned != p {
		return errors.Newf("path is not clean (expected %q, got %q)", cleaned, p)
	}
	return nil
}
