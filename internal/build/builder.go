// Package build runs the generation pipeline: schema, shapes, generator, sink.
package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/dtogen/internal/codegen"
	"github.com/okra-platform/dtogen/internal/config"
	"github.com/okra-platform/dtogen/internal/dto"
	"github.com/okra-platform/dtogen/internal/output"
	"github.com/okra-platform/dtogen/internal/schema"
)

// Artifacts describes the outcome of a successful build
type Artifacts struct {
	// OutputDir is the resolved output directory
	OutputDir string

	// Files lists the written locations, in path order
	Files []string

	// Schema and Shapes are the parsed inputs
	Schema *schema.Schema
	Shapes []dto.Shape

	BuildInfo BuildInfo
}

// BuildInfo contains metadata about the build
type BuildInfo struct {
	// Timestamp when the build started
	Timestamp time.Time `json:"-"`

	// Module and Version from the schema's @dtogen line
	Module  string `json:"module,omitempty"`
	Version string `json:"version,omitempty"`

	Language    string              `json:"language"`
	SupportObjC bool                `json:"supportObjC"`
	Format      config.FormatConfig `json:"format"`

	// SchemaChecksum is the hex SHA-256 of the schema file
	SchemaChecksum string `json:"schemaChecksum"`
	DTOCount       int    `json:"dtoCount"`
}

// Builder generates marshalling code for one project
type Builder struct {
	config      *config.Config
	projectRoot string
	logger      zerolog.Logger

	registry *codegen.Registry
	sink     output.Sink
}

// NewBuilder creates a builder writing through a filesystem sink rooted at the configured output
func NewBuilder(cfg *config.Config, projectRoot string, logger zerolog.Logger) *Builder {
	return &Builder{
		config:      cfg,
		projectRoot: projectRoot,
		logger:      logger.With().Str("component", "builder").Logger(),
		registry:    codegen.DefaultRegistry,
	}
}

// WithRegistry replaces the generator registry
func (b *Builder) WithRegistry(r *codegen.Registry) *Builder {
	b.registry = r
	return b
}

// WithSink replaces the output sink; stale file pruning only applies to the default sink
func (b *Builder) WithSink(s output.Sink) *Builder {
	b.sink = s
	return b
}

// SchemaPath returns the resolved schema location
func (b *Builder) SchemaPath() string {
	return config.Resolve(b.projectRoot, b.config.Schema)
}

// OutputDir returns the resolved output directory
func (b *Builder) OutputDir() string {
	return config.Resolve(b.projectRoot, b.config.Output)
}

// Load reads and resolves the schema without generating anything
func (b *Builder) Load() (*schema.Schema, *dto.Catalog, string, error) {
	schemaPath := b.SchemaPath()

	content, err := os.ReadFile(schemaPath)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Newf("schema file not found: %s", schemaPath)
			return nil, nil, "", errors.WithHint(err, "set \"schema\" in dtogen.json or run 'dtogen init'")
		}
		return nil, nil, "", errors.Wrapf(err, "failed to read schema file %s", schemaPath)
	}
	if len(content) == 0 {
		return nil, nil, "", errors.Newf("schema file is empty: %s", schemaPath)
	}

	b.logger.Debug().
		Str("path", schemaPath).
		Int("size", len(content)).
		Msg("read schema file")

	parsed, err := schema.ParseSchema(string(content))
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "failed to parse schema")
	}

	catalog, err := parsed.Catalog()
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "invalid schema")
	}
	if len(catalog.Names()) == 0 {
		err := errors.New("no dtos defined in schema")
		return nil, nil, "", errors.WithHint(err, "declare at least one type or abstract dto")
	}

	sum := sha256.Sum256(content)
	return parsed, catalog, hex.EncodeToString(sum[:]), nil
}

// Build runs the whole pipeline. Nothing is written unless every file
// rendered successfully.
func (b *Builder) Build(ctx context.Context) (*Artifacts, error) {
	start := time.Now()

	parsed, catalog, checksum, err := b.Load()
	if err != nil {
		return nil, err
	}
	shapes := catalog.Shapes()

	b.logger.Debug().
		Int("dtos", len(shapes)).
		Msg("resolved dto shapes")

	gen, err := b.registry.Get(b.config.Language, b.config)
	if err != nil {
		return nil, err
	}

	files, err := gen.Generate(ctx, shapes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate code")
	}

	info := BuildInfo{
		Timestamp:      start,
		Module:         parsed.Meta.Module,
		Version:        parsed.Meta.Version,
		Language:       gen.Language(),
		SupportObjC:    b.config.SupportObjC,
		Format:         b.config.Format,
		SchemaChecksum: checksum,
		DTOCount:       len(shapes),
	}

	manifestFile, err := NewManifest(info, files).File()
	if err != nil {
		return nil, err
	}

	outputDir := b.OutputDir()
	sink := b.sink
	var previous *Manifest
	if sink == nil {
		sink = output.NewFilesystemSink(outputDir)
		// A missing or unreadable manifest only disables pruning
		previous, _ = ReadManifest(outputDir)
	}

	written, err := sink.WriteAll(ctx, append(files, manifestFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to write generated files")
	}
	if len(written) != len(files)+1 {
		return nil, errors.Newf("sink reported %d written files, expected %d", len(written), len(files)+1)
	}

	if previous != nil {
		removed := previous.Prune(outputDir, files)
		if len(removed) > 0 {
			b.logger.Debug().Strs("files", removed).Msg("removed stale files")
		}
	}

	b.logger.Debug().
		Int("files", len(files)).
		Dur("duration", time.Since(start)).
		Str("output", outputDir).
		Msg("generation complete")

	return &Artifacts{
		OutputDir: outputDir,
		Files:     written[:len(files)],
		Schema:    parsed,
		Shapes:    shapes,
		BuildInfo: info,
	}, nil
}

// UpToDate reports whether the output directory was generated from the
// current schema with the current settings
func (b *Builder) UpToDate() (bool, error) {
	_, _, checksum, err := b.Load()
	if err != nil {
		return false, err
	}

	m, err := ReadManifest(b.OutputDir())
	if err != nil {
		return false, nil
	}
	return m.BuildInfo.SchemaChecksum == checksum &&
		m.BuildInfo.Language == b.config.Language &&
		m.BuildInfo.SupportObjC == b.config.SupportObjC &&
		m.BuildInfo.Format == b.config.Format, nil
}
