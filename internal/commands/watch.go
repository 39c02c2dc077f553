package commands

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/dtogen/internal/build"
	"github.com/okra-platform/dtogen/internal/config"
	"github.com/okra-platform/dtogen/internal/watch"
)

// Runner is a long-running watch session
type Runner interface {
	Run(ctx context.Context) error
}

type SessionFactory func(cfg *config.Config, projectRoot string, logger zerolog.Logger, onBuild func(*build.Artifacts, error)) Runner

// WatchDependencies holds all external dependencies for the watch command
type WatchDependencies struct {
	ConfigLoader   ConfigLoader
	SessionFactory SessionFactory
	SignalNotifier SignalNotifier
	Output         Output
	Logger         zerolog.Logger
}

type WatchCommand struct {
	deps *WatchDependencies
}

func NewWatchCommand(logger zerolog.Logger) *WatchCommand {
	return NewWatchCommandWithDeps(&WatchDependencies{
		ConfigLoader:   &defaultConfigLoader{},
		SessionFactory: defaultSessionFactory,
		SignalNotifier: &defaultSignalNotifier{},
		Output:         defaultOutput(),
		Logger:         logger,
	})
}

func NewWatchCommandWithDeps(deps *WatchDependencies) *WatchCommand {
	return &WatchCommand{deps: deps}
}

func defaultSessionFactory(cfg *config.Config, projectRoot string, logger zerolog.Logger, onBuild func(*build.Artifacts, error)) Runner {
	builder := build.NewBuilder(cfg, projectRoot, logger)
	return watch.NewSession(builder, cfg, projectRoot, logger).OnBuild(onBuild)
}

func (wc *WatchCommand) Execute(ctx context.Context) error {
	cfg, projectRoot, err := wc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := wc.deps.Output
	session := wc.deps.SessionFactory(cfg, projectRoot, wc.deps.Logger, func(a *build.Artifacts, err error) {
		if err != nil {
			out.Printf("❌ Build failed: %v\n", err)
			return
		}
		out.Printf("✅ Generated %d files for %d DTOs\n", len(a.Files), a.BuildInfo.DTOCount)
	})

	ctx, stop := withInterrupt(ctx, wc.deps.SignalNotifier, out)
	defer stop()

	out.Printf("👀 Watching %s for changes. Press Ctrl+C to stop.\n", projectRoot)

	err = session.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
