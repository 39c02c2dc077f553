package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/dtogen/internal/build"
	"github.com/okra-platform/dtogen/internal/config"
)

// countingBuilder records builds and detects overlapping calls
type countingBuilder struct {
	builds  atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	fail    atomic.Bool
}

func (b *countingBuilder) Build(ctx context.Context) (*build.Artifacts, error) {
	if b.active.Add(1) > 1 {
		b.overlap.Store(true)
	}
	defer b.active.Add(-1)
	time.Sleep(10 * time.Millisecond)
	b.builds.Add(1)
	if b.fail.Load() {
		return nil, errors.New("broken schema")
	}
	return &build.Artifacts{Files: []string{"a.swift"}}, nil
}

func watchConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestSession_InitialBuildFailure(t *testing.T) {
	// Test: A broken initial build is returned
	b := &countingBuilder{}
	b.fail.Store(true)

	err := NewSession(b, watchConfig(), t.TempDir(), zerolog.Nop()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial build failed")
}

func TestSession_RebuildsOnChange(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	root := t.TempDir()
	schemaPath := filepath.Join(root, "schema.dto.graphql")
	require.NoError(t, os.WriteFile(schemaPath, []byte("type A { x: Int }"), 0644))

	b := &countingBuilder{}
	var mu sync.Mutex
	var results []error
	s := NewSession(b, watchConfig(), root, zerolog.Nop()).
		WithDebounce(50 * time.Millisecond).
		OnBuild(func(_ *build.Artifacts, err error) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, err)
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Test: Initial build runs once
	assert.Eventually(t, func() bool { return b.builds.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	// Test: A burst of writes triggers a rebuild
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(schemaPath, []byte("type A { x: Int, y: Int }"), 0644))
	}
	assert.Eventually(t, func() bool { return b.builds.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	// Test: Build failures are reported and watching continues
	b.fail.Store(true)
	require.NoError(t, os.WriteFile(schemaPath, []byte("type A {"), 0644))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) > 0 && results[len(results)-1] != nil
	}, 2*time.Second, 10*time.Millisecond)

	// Test: Unrelated files do not trigger builds
	count := b.builds.Load()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, count, b.builds.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}
	assert.False(t, b.overlap.Load(), "builds must not overlap")
}
