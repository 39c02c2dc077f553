package commands

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/dtogen/internal/build"
	"github.com/okra-platform/dtogen/internal/config"
)

// ErrStale is returned by generate --check when the output is out of date
var ErrStale = errors.New("generated code is out of date")

type GenerateOptions struct {
	// Check only verifies the output matches the schema
	Check bool
}

// Builder abstracts the build pipeline
type Builder interface {
	Build(ctx context.Context) (*build.Artifacts, error)
	UpToDate() (bool, error)
}

type BuilderFactory func(cfg *config.Config, projectRoot string, logger zerolog.Logger) Builder

// GenerateDependencies holds all external dependencies for the generate command
type GenerateDependencies struct {
	ConfigLoader   ConfigLoader
	BuilderFactory BuilderFactory
	Output         Output
	Logger         zerolog.Logger
}

type GenerateCommand struct {
	deps *GenerateDependencies
}

func NewGenerateCommand(logger zerolog.Logger) *GenerateCommand {
	return NewGenerateCommandWithDeps(&GenerateDependencies{
		ConfigLoader:   &defaultConfigLoader{},
		BuilderFactory: defaultBuilderFactory,
		Output:         defaultOutput(),
		Logger:         logger,
	})
}

func NewGenerateCommandWithDeps(deps *GenerateDependencies) *GenerateCommand {
	return &GenerateCommand{deps: deps}
}

func defaultBuilderFactory(cfg *config.Config, projectRoot string, logger zerolog.Logger) Builder {
	return build.NewBuilder(cfg, projectRoot, logger)
}

func (gc *GenerateCommand) Execute(ctx context.Context, opts GenerateOptions) error {
	cfg, projectRoot, err := gc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	builder := gc.deps.BuilderFactory(cfg, projectRoot, gc.deps.Logger)

	if opts.Check {
		ok, err := builder.UpToDate()
		if err != nil {
			return err
		}
		if !ok {
			return errors.WithHint(ErrStale, "run 'dtogen generate' to regenerate")
		}
		gc.deps.Output.Println("Generated code is up to date.")
		return nil
	}

	artifacts, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	gc.deps.Output.Printf("Generated %d files for %d DTOs:\n", len(artifacts.Files), artifacts.BuildInfo.DTOCount)
	for _, f := range artifacts.Files {
		rel, err := filepath.Rel(projectRoot, f)
		if err != nil {
			rel = f
		}
		gc.deps.Output.Printf("  %s\n", rel)
	}
	return nil
}
