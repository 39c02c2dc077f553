package codegen

import (
	"context"

	"github.com/okra-platform/dtogen/internal/dto"
	"github.com/okra-platform/dtogen/internal/output"
)

// Generator is the interface that all language-specific code generators must implement
type Generator interface {
	// Generate renders the marshalling code for shapes and returns the files to write
	Generate(ctx context.Context, shapes []dto.Shape) ([]output.File, error)

	// Language returns the name of the target language (e.g., "swift")
	Language() string

	// FileExtension returns the file extension for generated files (e.g., ".swift")
	FileExtension() string
}
