package watch

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/okra-platform/dtogen/internal/build"
	"github.com/okra-platform/dtogen/internal/config"
)

// DefaultDebounce collapses bursts of editor events into one rebuild
const DefaultDebounce = 150 * time.Millisecond

// Rebuilder runs one generation pass
type Rebuilder interface {
	Build(ctx context.Context) (*build.Artifacts, error)
}

// Session rebuilds whenever a watched file changes. Rebuilds never overlap.
type Session struct {
	builder  Rebuilder
	root     string
	patterns []string
	exclude  []string
	logger   zerolog.Logger
	debounce time.Duration
	onBuild  func(*build.Artifacts, error)

	buildMu sync.Mutex
	changes chan string
}

// NewSession creates a watch session for the project rooted at projectRoot
func NewSession(b Rebuilder, cfg *config.Config, projectRoot string, logger zerolog.Logger) *Session {
	return &Session{
		builder:  b,
		root:     projectRoot,
		patterns: cfg.Watch.Patterns,
		exclude:  cfg.Watch.Exclude,
		logger:   logger.With().Str("component", "watch").Logger(),
		debounce: DefaultDebounce,
		onBuild:  func(*build.Artifacts, error) {},
		changes:  make(chan string, 1),
	}
}

// OnBuild registers a callback invoked after every build attempt
func (s *Session) OnBuild(fn func(*build.Artifacts, error)) *Session {
	s.onBuild = fn
	return s
}

// WithDebounce sets the quiet period between the last change and the rebuild
func (s *Session) WithDebounce(d time.Duration) *Session {
	s.debounce = d
	return s
}

// Run performs an initial build, then watches until ctx is done.
// Only a failing initial build or a broken watcher is returned as an error.
func (s *Session) Run(ctx context.Context) error {
	if _, err := s.rebuild(ctx); err != nil {
		return errors.Wrap(err, "initial build failed")
	}

	fw, err := NewFileWatcher(s.patterns, s.exclude, s.handleFileChange, s.logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.AddDirectory(s.root); err != nil {
		return errors.Wrap(err, "failed to watch project directory")
	}

	s.logger.Info().
		Str("root", s.root).
		Strs("patterns", s.patterns).
		Msg("watching for schema changes")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := fw.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		s.loop(ctx)
		return nil
	})
	return eg.Wait()
}

func (s *Session) handleFileChange(path string, op fsnotify.Op) {
	s.logger.Debug().Str("path", path).Str("op", op.String()).Msg("file changed")

	// A pending notification already covers this change
	select {
	case s.changes <- path:
	default:
	}
}

func (s *Session) loop(ctx context.Context) {
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.changes:
			timer = time.After(s.debounce)
		case <-timer:
			timer = nil
			// Failures are reported through onBuild; keep watching
			_, _ = s.rebuild(ctx)
		}
	}
}

func (s *Session) rebuild(ctx context.Context) (*build.Artifacts, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	artifacts, err := s.builder.Build(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("build failed")
	} else {
		s.logger.Info().
			Int("files", len(artifacts.Files)).
			Dur("duration", time.Since(start)).
			Msg("regenerated")
	}
	s.onBuild(artifacts, err)
	return artifacts, err
}
