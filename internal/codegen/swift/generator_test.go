package swift

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/dtogen/internal/config"
	"github.com/okra-platform/dtogen/internal/dto"
)

func zoo(t *testing.T) []dto.Shape {
	t.Helper()
	poly, err := dto.NewPolymorphism("Animal", "type", []dto.Subtype{
		{Value: "cat", Name: "Cat"},
		{Value: "dog", Name: "Dog"},
	})
	require.NoError(t, err)

	name := dto.Field{Name: "name", Type: dto.Named("String", dto.CategoryString)}
	return []dto.Shape{
		{Name: "Animal", Polymorphism: poly},
		{Name: "Cat", Fields: []dto.Field{name}, Tag: &dto.Tag{Base: "Animal", Field: "type", Value: "cat"}},
		{Name: "Dog", Fields: []dto.Field{name}, Tag: &dto.Tag{Base: "Animal", Field: "type", Value: "dog"}},
		{Name: "Keeper", Fields: []dto.Field{
			name,
			{Name: "animals", Type: dto.ArrayOf(dto.Named("Animal", dto.CategoryAbstract))},
		}},
	}
}

func TestGenerator_Generate(t *testing.T) {
	// Test: One helper file plus one file per DTO, sorted by path
	g := NewGenerator(Options{})
	files, err := g.Generate(context.Background(), zoo(t))
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path())
	}
	assert.Equal(t, []string{
		"helper/MarshallingHelper.swift",
		"marshalling/Animal+Marshalling.swift",
		"marshalling/Cat+Marshalling.swift",
		"marshalling/Dog+Marshalling.swift",
		"marshalling/Keeper+Marshalling.swift",
	}, paths)

	helper := string(files[0].Content)
	assert.True(t, strings.HasPrefix(helper, "// Code generated by dtogen. DO NOT EDIT.\n//\n// MarshallingHelper.swift\n\nimport Foundation\n"))

	animal := string(files[1].Content)
	assert.Contains(t, animal, "extension Animal {\n\tstatic func create(_ json: AnyObject?) -> Animal? {")

	cat := string(files[2].Content)
	assert.Contains(t, cat, "extension Cat: Unmarshalling {")
	assert.Contains(t, cat, "extension Cat: Marshalling {")
	assert.Contains(t, cat, `wire["type"] = "cat"`)

	keeper := string(files[4].Content)
	assert.Contains(t, keeper, "Animal.arrayFromJson(json[\"animals\"])")
}

func TestGenerator_Deterministic(t *testing.T) {
	// Test: Concurrent rendering still yields byte-identical output
	g := NewGenerator(Options{})
	first, err := g.Generate(context.Background(), zoo(t))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := g.Generate(context.Background(), zoo(t))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerator_Options(t *testing.T) {
	// Test: Indent and header come from the options
	g := NewGenerator(Options{Indent: "  ", Header: []string{}, SupportObjC: true})
	files, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, files, 1)

	helper := string(files[0].Content)
	assert.True(t, strings.HasPrefix(helper, "import Foundation\n"))
	assert.Contains(t, helper, "protocol Marshalling {\n  func toJson() -> AnyObject\n}")
	assert.Contains(t, helper, "func arrayFromJson<T: Unmarshalling>(json: AnyObject?) -> [T]?")
}

func TestGenerator_ContractViolation(t *testing.T) {
	// Test: A broken reference fails before anything is rendered
	shapes := []dto.Shape{{
		Name:   "Keeper",
		Fields: []dto.Field{{Name: "pet", Type: dto.Named("Animal", dto.CategoryAbstract)}},
	}}

	files, err := NewGenerator(Options{}).Generate(context.Background(), shapes)
	require.Error(t, err)
	assert.Nil(t, files)
	assert.True(t, errors.Is(err, dto.ErrContract))
}

func TestGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(Options{}).Generate(ctx, zoo(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeneratorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		format  config.FormatConfig
		indent  string
		wantErr bool
	}{
		{name: "tab", format: config.FormatConfig{Indent: "tab"}, indent: "\t"},
		{name: "spaces", format: config.FormatConfig{Indent: "space", IndentSize: 2}, indent: "  "},
		{name: "zero width", format: config.FormatConfig{Indent: "space"}, wantErr: true},
		{name: "unknown", format: config.FormatConfig{Indent: "emoji"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGeneratorFromConfig(&config.Config{Format: tt.format, SupportObjC: true})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.indent, g.opts.Indent)
			assert.True(t, g.opts.SupportObjC)
			assert.Equal(t, "swift", g.Language())
			assert.Equal(t, ".swift", g.FileExtension())
		})
	}
}
