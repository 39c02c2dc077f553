package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_shouldWatch(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		exclude  []string
		path     string
		want     bool
	}{
		{
			name:     "match schema file",
			patterns: []string{"*.dto.graphql"},
			path:     "/project/schema.dto.graphql",
			want:     true,
		},
		{
			name:     "match nested schema with ** pattern",
			patterns: []string{"**/*.dto.graphql"},
			path:     "/project/api/v1/zoo.dto.graphql",
			want:     true,
		},
		{
			name:     "relative pattern matches below root",
			patterns: []string{"api/*.dto.graphql"},
			path:     "/project/api/zoo.dto.graphql",
			want:     true,
		},
		{
			name:     "relative pattern does not match elsewhere",
			patterns: []string{"api/*.dto.graphql"},
			path:     "/project/other/zoo.dto.graphql",
			want:     false,
		},
		{
			name:     "no match",
			patterns: []string{"*.dto.graphql"},
			path:     "/project/readme.md",
			want:     false,
		},
		{
			name:     "file exclude overrides pattern",
			patterns: []string{"*.dto.graphql"},
			exclude:  []string{"draft.*"},
			path:     "/project/draft.dto.graphql",
			want:     false,
		},
		{
			name:     "directory exclude",
			patterns: []string{"**/*.dto.graphql"},
			exclude:  []string{"build/"},
			path:     "/project/build/copy.dto.graphql",
			want:     false,
		},
		{
			name:     "directory exclude ignores file names",
			patterns: []string{"*"},
			exclude:  []string{"build/"},
			path:     "/project/build",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := &FileWatcher{
				root:     "/project",
				patterns: tt.patterns,
				exclude:  tt.exclude,
			}
			assert.Equal(t, tt.want, fw.shouldWatch(tt.path))
		})
	}
}

func TestFileWatcher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	apiDir := filepath.Join(tmpDir, "api")
	require.NoError(t, os.MkdirAll(apiDir, 0755))
	buildDir := filepath.Join(tmpDir, "build")
	require.NoError(t, os.MkdirAll(buildDir, 0755))

	var seen []string
	var mu sync.Mutex
	onChange := func(path string, op fsnotify.Op) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, filepath.Base(path))
	}

	fw, err := NewFileWatcher(
		[]string{"*.dto.graphql", "**/*.dto.graphql"},
		[]string{".git/", "build/"},
		onChange,
		zerolog.Nop(),
	)
	require.NoError(t, err)
	defer fw.Close()
	require.NoError(t, fw.AddDirectory(tmpDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fw.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "schema.dto.graphql"), []byte("type A { x: Int }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "zoo.dto.graphql"), []byte("type B { x: Int }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.md"), []byte("notes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "copy.dto.graphql"), []byte("type C { x: Int }"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return contains(seen, "schema.dto.graphql") && contains(seen, "zoo.dto.graphql")
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, "notes.md")
	assert.NotContains(t, seen, "copy.dto.graphql")
}

func TestFileWatcher_AddDirectorySkipsExcluded(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".git", "objects"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "api"), 0755))

	fw, err := NewFileWatcher(nil, []string{".git/"}, func(string, fsnotify.Op) {}, zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.AddDirectory(tmpDir))
	watched := fw.watcher.WatchList()
	assert.Contains(t, watched, tmpDir)
	assert.Contains(t, watched, filepath.Join(tmpDir, "api"))
	assert.NotContains(t, watched, filepath.Join(tmpDir, ".git"))
	assert.NotContains(t, watched, filepath.Join(tmpDir, ".git", "objects"))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
