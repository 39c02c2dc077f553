package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/dtogen/internal/config"
	"github.com/okra-platform/dtogen/internal/dto"
	"github.com/okra-platform/dtogen/internal/output"
)

// Test plan for Builder:
// 1. NewBuilder resolves paths against the project root
// 2. Build writes the helper, one file per dto and a manifest
// 3. Missing, empty, invalid and dto-less schemas fail before writing
// 4. Unknown languages are rejected
// 5. Stale files are pruned and UpToDate tracks the inputs

const zooSchema = `@dtogen(module: "Zoo", version: "1")

abstract Animal @discriminator(field: "type") {
  name: String!
}

type Cat implements Animal @discriminator(value: "cat") {
  name: String!
  lives: Int!
}

type Keeper {
  name: String!
  animals: [Animal!]!
  photo: Bytes
}
`

func newProject(t *testing.T, schemaContent string) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{Name: "zoo"}
	cfg.ApplyDefaults()
	require.NoError(t, os.WriteFile(filepath.Join(root, "schema.dto.graphql"), []byte(schemaContent), 0644))
	return cfg, root
}

func quietLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.ErrorLevel)
}

func TestNewBuilder(t *testing.T) {
	// Test: Paths are resolved against the project root
	cfg := &config.Config{Schema: "./api/zoo.dto.graphql", Output: "/abs/out"}
	b := NewBuilder(cfg, "/project", quietLogger())

	assert.Equal(t, filepath.Join("/project", "api", "zoo.dto.graphql"), b.SchemaPath())
	assert.Equal(t, "/abs/out", b.OutputDir())
}

func TestBuilder_Build(t *testing.T) {
	// Test: Full pipeline to disk
	cfg, root := newProject(t, zooSchema)
	b := NewBuilder(cfg, root, quietLogger())

	artifacts, err := b.Build(context.Background())
	require.NoError(t, err)

	out := filepath.Join(root, "Generated")
	assert.Equal(t, out, artifacts.OutputDir)
	assert.Equal(t, []string{
		filepath.Join(out, "helper", "MarshallingHelper.swift"),
		filepath.Join(out, "marshalling", "Animal+Marshalling.swift"),
		filepath.Join(out, "marshalling", "Cat+Marshalling.swift"),
		filepath.Join(out, "marshalling", "Keeper+Marshalling.swift"),
	}, artifacts.Files)
	for _, f := range artifacts.Files {
		assert.FileExists(t, f)
	}

	info := artifacts.BuildInfo
	assert.Equal(t, "Zoo", info.Module)
	assert.Equal(t, "1", info.Version)
	assert.Equal(t, "swift", info.Language)
	assert.Equal(t, 3, info.DTOCount)
	assert.Len(t, info.SchemaChecksum, 64)
	assert.False(t, info.Timestamp.IsZero())
	assert.Len(t, artifacts.Shapes, 3)

	// Test: Manifest lists the generated files
	m, err := ReadManifest(out)
	require.NoError(t, err)
	assert.Equal(t, info.SchemaChecksum, m.BuildInfo.SchemaChecksum)
	assert.Equal(t, []string{
		"helper/MarshallingHelper.swift",
		"marshalling/Animal+Marshalling.swift",
		"marshalling/Cat+Marshalling.swift",
		"marshalling/Keeper+Marshalling.swift",
	}, m.Files)

	// Test: Rebuilding produces identical sources
	first, err := os.ReadFile(artifacts.Files[3])
	require.NoError(t, err)
	_, err = b.Build(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(artifacts.Files[3])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuilder_BuildWithSink(t *testing.T) {
	// Test: A custom sink receives all files including the manifest
	cfg, root := newProject(t, zooSchema)
	sink := output.NewMemorySink()

	artifacts, err := NewBuilder(cfg, root, quietLogger()).WithSink(sink).Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, artifacts.Files, 4)
	assert.Equal(t, 5, sink.Len())
	assert.Contains(t, string(sink.Get("marshalling/Cat+Marshalling.swift")), "extension Cat: Unmarshalling {")
	assert.NotNil(t, sink.Get(ManifestName))

	_, err = os.Stat(filepath.Join(root, "Generated"))
	assert.True(t, os.IsNotExist(err))
}

// shortSink drops the last path it reports
type shortSink struct {
	*output.MemorySink
}

func (s *shortSink) WriteAll(ctx context.Context, files []output.File) ([]string, error) {
	written, err := s.MemorySink.WriteAll(ctx, files)
	if err != nil || len(written) == 0 {
		return written, err
	}
	return written[:len(written)-1], nil
}

func TestBuilder_BuildWithShortSink(t *testing.T) {
	// Test: A sink that under-reports its writes is an error, not a panic
	cfg, root := newProject(t, zooSchema)

	var err error
	assert.NotPanics(t, func() {
		_, err = NewBuilder(cfg, root, quietLogger()).WithSink(&shortSink{MemorySink: output.NewMemorySink()}).Build(context.Background())
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink reported 4 written files, expected 5")
}

func TestBuilder_BuildErrors(t *testing.T) {
	tests := []struct {
		name        string
		schema      *string
		language    string
		errContains string
		contract    bool
	}{
		{name: "missing schema", errContains: "schema file not found"},
		{name: "empty schema", schema: ptr(""), errContains: "schema file is empty"},
		{name: "syntax error", schema: ptr("type Cat {"), errContains: "failed to parse schema"},
		{name: "no dtos", schema: ptr("enum Diet { MEAT }"), errContains: "no dtos defined"},
		{
			name: "duplicate discriminator",
			schema: ptr(`abstract A @discriminator(field: "t") { x: Int }
type B implements A @discriminator(value: "b") { x: Int }
type C implements A @discriminator(value: "b") { x: Int }`),
			errContains: "registered twice",
			contract:    true,
		},
		{name: "unknown language", schema: ptr(zooSchema), language: "kotlin", errContains: "unsupported language: kotlin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cfg := &config.Config{Language: tt.language}
			cfg.ApplyDefaults()
			if tt.schema != nil {
				require.NoError(t, os.WriteFile(filepath.Join(root, "schema.dto.graphql"), []byte(*tt.schema), 0644))
			}

			_, err := NewBuilder(cfg, root, quietLogger()).Build(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			if tt.contract {
				assert.True(t, errors.Is(err, dto.ErrContract))
			}

			_, statErr := os.Stat(filepath.Join(root, "Generated"))
			assert.True(t, os.IsNotExist(statErr), "nothing may be written on failure")
		})
	}
}

func TestBuilder_PrunesStaleFiles(t *testing.T) {
	// Test: Dropping a dto from the schema removes its file on the next build
	cfg, root := newProject(t, zooSchema)
	b := NewBuilder(cfg, root, quietLogger())

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	keeper := filepath.Join(root, "Generated", "marshalling", "Keeper+Marshalling.swift")
	require.FileExists(t, keeper)

	without := `abstract Animal @discriminator(field: "type") { name: String! }
type Cat implements Animal @discriminator(value: "cat") { name: String! }
`
	require.NoError(t, os.WriteFile(b.SchemaPath(), []byte(without), 0644))
	_, err = b.Build(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, keeper)
	assert.FileExists(t, filepath.Join(root, "Generated", "marshalling", "Cat+Marshalling.swift"))
}

func TestBuilder_UpToDate(t *testing.T) {
	cfg, root := newProject(t, zooSchema)
	b := NewBuilder(cfg, root, quietLogger())

	// Test: Nothing generated yet
	ok, err := b.UpToDate()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = b.Build(context.Background())
	require.NoError(t, err)
	ok, err = b.UpToDate()
	require.NoError(t, err)
	assert.True(t, ok)

	// Test: Changing a setting invalidates the output
	cfg.SupportObjC = true
	ok, err = b.UpToDate()
	require.NoError(t, err)
	assert.False(t, ok)
	cfg.SupportObjC = false

	// Test: Changing the schema invalidates the output
	require.NoError(t, os.WriteFile(b.SchemaPath(), []byte(zooSchema+"\ntype Bowl { size: Int }\n"), 0644))
	ok, err = b.UpToDate()
	require.NoError(t, err)
	assert.False(t, ok)
}

func ptr(s string) *string {
	return &s
}
