// Package swift generates Swift marshalling code for DTO shapes.
package swift

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/okra-platform/dtogen/internal/codegen/swift/construct"
	"github.com/okra-platform/dtogen/internal/codegen/swift/marshalling"
	"github.com/okra-platform/dtogen/internal/codegen/writer"
	"github.com/okra-platform/dtogen/internal/config"
	"github.com/okra-platform/dtogen/internal/dto"
	"github.com/okra-platform/dtogen/internal/output"
)

// DTOSubfolder holds the per-DTO marshalling files
const DTOSubfolder = "marshalling"

// Options controls the Swift generator
type Options struct {
	SupportObjC bool
	// Indent is the indentation unit; empty means a tab
	Indent string
	// Header lines are written as comments at the top of every file
	Header []string
}

// Generator renders the helper file and one marshalling file per DTO
type Generator struct {
	opts Options
}

// NewGenerator creates a new Swift code generator
func NewGenerator(opts Options) *Generator {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	if opts.Header == nil {
		opts.Header = construct.DefaultStyle().Header
	}
	return &Generator{opts: opts}
}

// NewGeneratorFromConfig creates a generator using the project's format settings
func NewGeneratorFromConfig(cfg *config.Config) (*Generator, error) {
	indent, err := writer.IndentUnit(cfg.Format.Indent, cfg.Format.IndentSize)
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid format config"), `use "tab" or "space" with a positive indentSize`)
	}
	return NewGenerator(Options{SupportObjC: cfg.SupportObjC, Indent: indent}), nil
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "swift"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".swift"
}

// Generate renders every file concurrently. The shapes are cross-checked
// first, so a contract violation stops generation before any text exists.
// The result is sorted by path.
func (g *Generator) Generate(ctx context.Context, shapes []dto.Shape) ([]output.File, error) {
	catalog, err := dto.NewCatalog(shapes)
	if err != nil {
		return nil, err
	}
	shapes = catalog.Shapes()

	files := make([]output.File, len(shapes)+1)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		f, err := marshalling.SupportFile(marshalling.Options{SupportObjC: g.opts.SupportObjC})
		if err != nil {
			return errors.Wrap(err, "support file")
		}
		out, err := g.render(ctx, marshalling.HelperSubfolder, f)
		if err != nil {
			return err
		}
		files[0] = out
		return nil
	})

	for i, shape := range shapes {
		eg.Go(func() error {
			f, err := g.dtoFile(shape)
			if err != nil {
				return err
			}
			out, err := g.render(ctx, DTOSubfolder, f)
			if err != nil {
				return err
			}
			files[i+1] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path() < files[j].Path()
	})
	return files, nil
}

func (g *Generator) dtoFile(shape dto.Shape) (*construct.File, error) {
	extensions, err := marshalling.DTOExtensions(shape, marshalling.Options{SupportObjC: g.opts.SupportObjC})
	if err != nil {
		return nil, err
	}
	return construct.NewFile(construct.FileSpec{
		Name:       FileName(shape.Name),
		Imports:    []string{"Foundation"},
		Extensions: extensions,
	})
}

func (g *Generator) render(ctx context.Context, subfolder string, f *construct.File) (output.File, error) {
	if err := ctx.Err(); err != nil {
		return output.File{}, err
	}
	content, err := construct.Render(f, construct.Style{Indent: g.opts.Indent, Header: g.opts.Header})
	if err != nil {
		return output.File{}, errors.Wrapf(err, "render %s", f.Name())
	}
	return output.File{
		Subfolder: subfolder,
		BaseName:  f.Name(),
		Extension: strings.TrimPrefix(g.FileExtension(), "."),
		Content:   content,
	}, nil
}

// FileName returns the base name of the marshalling file for a DTO
func FileName(dtoName string) string {
	return dtoName + "+Marshalling"
}
