package construct

import (
	"github.com/cockroachdb/errors"
)

// FileSpec lists the top-level constructs of one source file in emission order
type FileSpec struct {
	// Name is the base name of the file without extension
	Name       string
	Imports    []string
	Protocols  []*Protocol
	Extensions []*Extension
	Methods    []*Method
}

// File is a validated source file ready for emission
type File struct {
	spec FileSpec
}

// NewFile validates spec and takes ownership of its constructs
func NewFile(spec FileSpec) (*File, error) {
	if spec.Name == "" {
		return nil, errors.Wrap(ErrContract, "file has no name")
	}

	seen := make(map[string]bool, len(spec.Imports))
	for _, imp := range spec.Imports {
		if imp == "" || seen[imp] {
			return nil, errors.Wrapf(ErrContract, "file %s: invalid or duplicate import %q", spec.Name, imp)
		}
		seen[imp] = true
	}

	protocols := make(map[*Protocol]bool, len(spec.Protocols))
	for _, p := range spec.Protocols {
		if p == nil {
			return nil, errors.Wrapf(ErrContract, "file %s: nil protocol", spec.Name)
		}
		if p.attached || protocols[p] {
			return nil, errors.Wrapf(ErrContract, "file %s: protocol %s already belongs to a file; use Clone", spec.Name, p.name)
		}
		protocols[p] = true
	}
	extensions := make(map[*Extension]bool, len(spec.Extensions))
	for _, e := range spec.Extensions {
		if e == nil {
			return nil, errors.Wrapf(ErrContract, "file %s: nil extension", spec.Name)
		}
		if e.attached || extensions[e] {
			return nil, errors.Wrapf(ErrContract, "file %s: extension %s already belongs to a file; use Clone", spec.Name, e.typeName)
		}
		extensions[e] = true
	}
	for _, m := range spec.Methods {
		if m == nil {
			return nil, errors.Wrapf(ErrContract, "file %s: nil method", spec.Name)
		}
		if m.IsRequirement() {
			return nil, errors.Wrapf(ErrContract, "file %s: top-level method %s has no body", spec.Name, m.Name())
		}
		if m.IsStatic() {
			return nil, errors.Wrapf(ErrContract, "file %s: top-level method %s cannot be static", spec.Name, m.Name())
		}
	}
	if err := attachAll(spec.Methods); err != nil {
		return nil, errors.Wrapf(err, "file %s", spec.Name)
	}

	for _, p := range spec.Protocols {
		p.attached = true
	}
	for _, e := range spec.Extensions {
		e.attached = true
	}

	spec.Imports = append([]string(nil), spec.Imports...)
	spec.Protocols = append([]*Protocol(nil), spec.Protocols...)
	spec.Extensions = append([]*Extension(nil), spec.Extensions...)
	spec.Methods = append([]*Method(nil), spec.Methods...)
	return &File{spec: spec}, nil
}

// Name returns the file's base name
func (f *File) Name() string {
	return f.spec.Name
}

// Imports returns the imported modules
func (f *File) Imports() []string {
	return append([]string(nil), f.spec.Imports...)
}

// Protocols returns the file's protocols
func (f *File) Protocols() []*Protocol {
	return append([]*Protocol(nil), f.spec.Protocols...)
}

// Extensions returns the file's extensions
func (f *File) Extensions() []*Extension {
	return append([]*Extension(nil), f.spec.Extensions...)
}

// Methods returns the file's top-level methods
func (f *File) Methods() []*Method {
	return append([]*Method(nil), f.spec.Methods...)
}
