package construct

import (
	"github.com/cockroachdb/errors"
)

// Protocol is a protocol declaration holding requirement methods
type Protocol struct {
	name         string
	doc          string
	requirements []*Method
	attached     bool
}

// NewProtocol builds a protocol; every method must be a requirement
func NewProtocol(name, doc string, requirements ...*Method) (*Protocol, error) {
	if name == "" {
		return nil, errors.Wrap(ErrContract, "protocol has no name")
	}
	for _, m := range requirements {
		if m == nil {
			return nil, errors.Wrapf(ErrContract, "protocol %s: nil requirement", name)
		}
		if !m.IsRequirement() {
			return nil, errors.Wrapf(ErrContract, "protocol %s: method %s has a body", name, m.Name())
		}
	}
	if err := attachAll(requirements); err != nil {
		return nil, errors.Wrapf(err, "protocol %s", name)
	}
	return &Protocol{name: name, doc: doc, requirements: append([]*Method(nil), requirements...)}, nil
}

// Name returns the protocol name
func (p *Protocol) Name() string {
	return p.name
}

// Requirements returns the requirement methods in declaration order
func (p *Protocol) Requirements() []*Method {
	return append([]*Method(nil), p.requirements...)
}

// Clone returns a detached deep copy
func (p *Protocol) Clone() *Protocol {
	reqs := make([]*Method, len(p.requirements))
	for i, m := range p.requirements {
		reqs[i] = m.Clone().markAttached()
	}
	return &Protocol{name: p.name, doc: p.doc, requirements: reqs}
}

// Extension augments an existing type, optionally declaring new conformances
type Extension struct {
	typeName     string
	conformances []string
	methods      []*Method
	attached     bool
}

// NewExtension builds `extension typeName[: conformances] { methods }`
func NewExtension(typeName string, conformances []string, methods ...*Method) (*Extension, error) {
	if typeName == "" {
		return nil, errors.Wrap(ErrContract, "extension has no type")
	}

	seen := make(map[string]bool, len(conformances))
	for _, c := range conformances {
		if c == "" {
			return nil, errors.Wrapf(ErrContract, "extension %s: empty conformance", typeName)
		}
		if seen[c] {
			return nil, errors.Wrapf(ErrContract, "extension %s: duplicate conformance %s", typeName, c)
		}
		seen[c] = true
	}

	for _, m := range methods {
		if m == nil {
			return nil, errors.Wrapf(ErrContract, "extension %s: nil method", typeName)
		}
		if m.IsRequirement() {
			return nil, errors.Wrapf(ErrContract, "extension %s: method %s has no body", typeName, m.Name())
		}
	}
	if err := attachAll(methods); err != nil {
		return nil, errors.Wrapf(err, "extension %s", typeName)
	}

	return &Extension{
		typeName:     typeName,
		conformances: append([]string(nil), conformances...),
		methods:      append([]*Method(nil), methods...),
	}, nil
}

// TypeName returns the extended type
func (e *Extension) TypeName() string {
	return e.typeName
}

// Conformances returns the protocols the extension adds
func (e *Extension) Conformances() []string {
	return append([]string(nil), e.conformances...)
}

// Methods returns the extension's methods in declaration order
func (e *Extension) Methods() []*Method {
	return append([]*Method(nil), e.methods...)
}

// Clone returns a detached deep copy
func (e *Extension) Clone() *Extension {
	methods := make([]*Method, len(e.methods))
	for i, m := range e.methods {
		methods[i] = m.Clone().markAttached()
	}
	return &Extension{
		typeName:     e.typeName,
		conformances: append([]string(nil), e.conformances...),
		methods:      methods,
	}
}

func attachAll(methods []*Method) error {
	for i, m := range methods {
		if err := m.attach(); err != nil {
			for _, prev := range methods[:i] {
				prev.attached = false
			}
			return err
		}
	}
	return nil
}
