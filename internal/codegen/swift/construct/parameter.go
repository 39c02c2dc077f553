// Package construct models the Swift declarations dtogen emits: methods,
// parameters, protocols, extensions and files. Nodes are validated when they
// are built and are immutable afterwards; Render turns a File into source text.
package construct

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrContract marks a construct that violates a structural rule
var ErrContract = errors.New("construct contract violation")

// Param is anything that can appear in a method's parameter list
type Param interface {
	// ParamName is the internal name of the parameter
	ParamName() string
	// Signature renders the parameter as it appears in a declaration
	Signature() string
}

// Parameter is a plain value parameter
type Parameter struct {
	Name string
	Type string
	// Variadic renders the type as Type...
	Variadic bool
	// Unlabeled suppresses the external label with `_`
	Unlabeled bool
	// Default is an optional default value expression
	Default string
}

// ParamName returns the internal parameter name
func (p Parameter) ParamName() string {
	return p.Name
}

// Signature renders `[_ ]name: Type[...][ = default]`
func (p Parameter) Signature() string {
	var sb strings.Builder
	if p.Unlabeled {
		sb.WriteString("_ ")
	}
	sb.WriteString(p.Name)
	sb.WriteString(": ")
	sb.WriteString(p.Type)
	if p.Variadic {
		sb.WriteString("...")
	}
	if p.Default != "" {
		sb.WriteString(" = ")
		sb.WriteString(p.Default)
	}
	return sb.String()
}

// Argument renders value as it is passed to this parameter at a call site
func (p Parameter) Argument(value string) string {
	if p.Unlabeled {
		return value
	}
	return p.Name + ": " + value
}

func validateParam(p Param) error {
	switch v := p.(type) {
	case Parameter:
		if v.Name == "" {
			return errors.Wrap(ErrContract, "parameter has no name")
		}
		if v.Type == "" {
			return errors.Wrapf(ErrContract, "parameter %s has no type", v.Name)
		}
	case *Method:
		if v == nil {
			return errors.Wrap(ErrContract, "nil function parameter")
		}
		if v.spec.Initializer {
			return errors.Wrapf(ErrContract, "initializer cannot be used as a function parameter")
		}
	case nil:
		return errors.Wrap(ErrContract, "nil parameter")
	}
	return nil
}
