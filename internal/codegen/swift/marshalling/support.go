package marshalling

import (
	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/codegen/swift/construct"
)

// SupportFile builds the shared MarshallingHelper file: the two protocols, the
// parameter adapter, from-wire and to-wire extensions for every native, the
// array helpers for Foundation classes and the generic array helper.
func SupportFile(opts Options) (*construct.File, error) {
	protocols, err := Protocols()
	if err != nil {
		return nil, errors.Wrap(err, "support protocols")
	}

	adapter, err := ParameterExtension()
	if err != nil {
		return nil, errors.Wrap(err, "parameter adapter")
	}
	extensions := []*construct.Extension{adapter}

	for _, n := range Natives() {
		ext, err := UnmarshallingExtension(n)
		if err != nil {
			return nil, err
		}
		extensions = append(extensions, ext)
	}
	for _, n := range Natives() {
		ext, err := MarshallingExtension(n)
		if err != nil {
			return nil, err
		}
		extensions = append(extensions, ext)
	}
	for _, n := range Natives() {
		if !n.IsClass() {
			continue
		}
		ext, err := ArrayExtension(n, opts)
		if err != nil {
			return nil, err
		}
		extensions = append(extensions, ext)
	}

	helper, err := GenericArrayHelper(opts)
	if err != nil {
		return nil, errors.Wrap(err, "generic array helper")
	}

	return construct.NewFile(construct.FileSpec{
		Name:       HelperFileName,
		Imports:    []string{"Foundation"},
		Protocols:  protocols,
		Extensions: extensions,
		Methods:    []*construct.Method{helper},
	})
}
