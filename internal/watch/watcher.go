// Package watch regenerates code when schema files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// FileWatcher watches directory trees for files matching a set of patterns.
//
// Patterns without a slash match the file name, "**/" patterns match the
// file name at any depth, and other patterns match the path relative to the
// watched root. Exclude entries ending in "/" name directories to skip.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	patterns []string
	exclude  []string
	onChange func(path string, op fsnotify.Op)
	logger   zerolog.Logger
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(patterns []string, exclude []string, onChange func(path string, op fsnotify.Op), logger zerolog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}

	return &FileWatcher{
		watcher:  watcher,
		patterns: patterns,
		exclude:  exclude,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// AddDirectory recursively adds a directory to the watcher. The first
// directory added becomes the root that relative patterns are matched against.
func (fw *FileWatcher) AddDirectory(dir string) error {
	if fw.root == "" {
		fw.root = dir
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && fw.excludedDir(filepath.Base(path)) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch directory %s", path)
		}
		return nil
	})
}

// Start begins watching for file changes and blocks until ctx is done
func (fw *FileWatcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}

			if fw.shouldWatch(event.Name) {
				fw.onChange(event.Name, event.Op)
			}

			// If a new directory is created, add it to the watcher
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !fw.excludedDir(info.Name()) {
					if err := fw.AddDirectory(event.Name); err != nil {
						fw.logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					}
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			if err != nil {
				// Log error but continue watching
				fw.logger.Warn().Err(err).Msg("watcher error")
			}
		}
	}
}

func (fw *FileWatcher) excludedDir(name string) bool {
	for _, pattern := range fw.exclude {
		if !strings.HasSuffix(pattern, "/") {
			continue
		}
		if matched, _ := filepath.Match(strings.TrimSuffix(pattern, "/"), name); matched {
			return true
		}
	}
	return false
}

// shouldWatch checks if a file should trigger a change event based on patterns
func (fw *FileWatcher) shouldWatch(path string) bool {
	base := filepath.Base(path)

	rel := base
	if fw.root != "" {
		if r, err := filepath.Rel(fw.root, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}

	// Check excludes first
	for _, pattern := range fw.exclude {
		if strings.HasSuffix(pattern, "/") {
			segments := strings.Split(rel, "/")
			for _, dir := range segments[:len(segments)-1] {
				if matched, _ := filepath.Match(strings.TrimSuffix(pattern, "/"), dir); matched {
					return false
				}
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}

	for _, pattern := range fw.patterns {
		switch {
		case strings.HasPrefix(pattern, "**/"):
			if matched, _ := filepath.Match(strings.TrimPrefix(pattern, "**/"), base); matched {
				return true
			}
		case strings.Contains(pattern, "/"):
			if matched, _ := filepath.Match(pattern, rel); matched {
				return true
			}
		default:
			if matched, _ := filepath.Match(pattern, base); matched {
				return true
			}
		}
	}

	return false
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
