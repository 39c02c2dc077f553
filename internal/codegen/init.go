package codegen

import (
	"github.com/okra-platform/dtogen/internal/codegen/swift"
	"github.com/okra-platform/dtogen/internal/config"
)

// DefaultRegistry is the global registry instance with pre-registered generators
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register("swift", func(cfg *config.Config) (Generator, error) {
		return swift.NewGeneratorFromConfig(cfg)
	})
}
