package codegen

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/config"
)

// Factory builds a generator from the project configuration
type Factory func(cfg *config.Config) (Generator, error)

// Registry manages available code generators
type Registry struct {
	generators map[string]Factory
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Factory),
	}
}

// Register adds a new generator factory to the registry
func (r *Registry) Register(language string, factory Factory) {
	r.generators[language] = factory
}

// Get returns a generator for the specified language
func (r *Registry) Get(language string, cfg *config.Config) (Generator, error) {
	factory, exists := r.generators[language]
	if !exists {
		err := errors.Newf("unsupported language: %s", language)
		return nil, errors.WithHintf(err, "supported languages: %v", r.Languages())
	}

	gen, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "%s generator", language)
	}
	return gen, nil
}

// Languages returns the sorted list of supported languages
func (r *Registry) Languages() []string {
	languages := make([]string, 0, len(r.generators))
	for lang := range r.generators {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}
