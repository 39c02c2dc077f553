package construct

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultReturnType is rendered for named methods that declare no return type
const DefaultReturnType = "Void"

// MethodSpec describes a method or initializer before validation
type MethodSpec struct {
	Name        string
	Doc         string
	// Generics are generic parameter clauses, e.g. "T: Unmarshalling"
	Generics    []string
	Static      bool
	Initializer bool
	Convenience bool
	Failable    bool
	Returns     string
	Params      []Param
	Body        []Line
	// Requirement marks a protocol requirement, which carries no body
	Requirement bool
}

// Method is a validated method or initializer declaration
type Method struct {
	spec     MethodSpec
	attached bool
}

// NewMethod validates spec and returns the immutable method it describes
func NewMethod(spec MethodSpec) (*Method, error) {
	label := spec.Name
	if spec.Initializer {
		label = "init"
	}

	if !spec.Initializer && spec.Name == "" {
		return nil, errors.Wrap(ErrContract, "method has no name")
	}
	if spec.Initializer {
		if spec.Static {
			return nil, errors.Wrap(ErrContract, "initializer cannot be static")
		}
		if spec.Returns != "" {
			return nil, errors.Wrapf(ErrContract, "initializer declares return type %s", spec.Returns)
		}
	} else if spec.Convenience || spec.Failable {
		return nil, errors.Wrapf(ErrContract, "method %s: convenience and failable apply to initializers only", label)
	}

	if spec.Requirement && len(spec.Body) > 0 {
		return nil, errors.Wrapf(ErrContract, "method %s: protocol requirement has a body", label)
	}
	if !spec.Requirement && len(spec.Body) == 0 {
		return nil, errors.Wrapf(ErrContract, "method %s: implementation has no body", label)
	}
	for i, line := range spec.Body {
		if line.Depth < 0 {
			return nil, errors.Wrapf(ErrContract, "method %s: body line %d has negative depth", label, i)
		}
	}

	seen := make(map[string]bool, len(spec.Params))
	for _, p := range spec.Params {
		if err := validateParam(p); err != nil {
			return nil, errors.Wrapf(err, "method %s", label)
		}
		if seen[p.ParamName()] {
			return nil, errors.Wrapf(ErrContract, "method %s: duplicate parameter %s", label, p.ParamName())
		}
		seen[p.ParamName()] = true
	}

	params := make([]Param, 0, len(spec.Params))
	for _, p := range spec.Params {
		if fn, ok := p.(*Method); ok {
			if err := fn.attach(); err != nil {
				return nil, errors.Wrapf(err, "method %s", label)
			}
		}
		params = append(params, p)
	}
	spec.Params = params
	spec.Body = append([]Line(nil), spec.Body...)
	spec.Generics = append([]string(nil), spec.Generics...)

	return &Method{spec: spec}, nil
}

// MustMethod is NewMethod for fixed declarations; it panics on a contract violation
func MustMethod(spec MethodSpec) *Method {
	m, err := NewMethod(spec)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the method name, or "init" for initializers
func (m *Method) Name() string {
	if m.spec.Initializer {
		return "init"
	}
	return m.spec.Name
}

// IsRequirement reports whether the method is a protocol requirement
func (m *Method) IsRequirement() bool {
	return m.spec.Requirement
}

// IsStatic reports whether the method is a type member
func (m *Method) IsStatic() bool {
	return m.spec.Static
}

// Params returns the parameter list
func (m *Method) Params() []Param {
	out := make([]Param, len(m.spec.Params))
	copy(out, m.spec.Params)
	return out
}

// Body returns the body lines
func (m *Method) Body() []Line {
	out := make([]Line, len(m.spec.Body))
	copy(out, m.spec.Body)
	return out
}

// ReturnType returns the declared return type, defaulting to Void for named methods
func (m *Method) ReturnType() string {
	if m.spec.Initializer {
		return ""
	}
	if m.spec.Returns == "" {
		return DefaultReturnType
	}
	return m.spec.Returns
}

// Header renders the declaration line without the opening brace
func (m *Method) Header() string {
	var sb strings.Builder
	if m.spec.Initializer {
		if m.spec.Convenience {
			sb.WriteString("convenience ")
		}
		sb.WriteString("init")
		if m.spec.Failable {
			sb.WriteString("?")
		}
		sb.WriteString("(" + m.signatureList() + ")")
		return sb.String()
	}

	if m.spec.Static {
		sb.WriteString("static ")
	}
	sb.WriteString("func ")
	sb.WriteString(m.spec.Name)
	if len(m.spec.Generics) > 0 {
		sb.WriteString("<" + strings.Join(m.spec.Generics, ", ") + ">")
	}
	sb.WriteString("(" + m.signatureList() + ")")
	sb.WriteString(" -> ")
	sb.WriteString(m.ReturnType())
	return sb.String()
}

// ParamName makes a method usable as a function-typed parameter
func (m *Method) ParamName() string {
	return m.spec.Name
}

// Signature renders the method as a function-typed parameter: `name: (T1, T2) -> R`
func (m *Method) Signature() string {
	types := make([]string, 0, len(m.spec.Params))
	for _, p := range m.spec.Params {
		types = append(types, paramType(p))
	}
	return m.spec.Name + ": (" + strings.Join(types, ", ") + ") -> " + m.ReturnType()
}

// Call renders a call to the method with one argument per parameter
func (m *Method) Call(receiver string, args ...string) (string, error) {
	if len(args) != len(m.spec.Params) {
		return "", errors.Wrapf(ErrContract, "call to %s: want %d arguments, got %d", m.Name(), len(m.spec.Params), len(args))
	}
	parts := make([]string, len(args))
	for i, p := range m.spec.Params {
		switch v := p.(type) {
		case Parameter:
			parts[i] = v.Argument(args[i])
		default:
			parts[i] = p.ParamName() + ": " + args[i]
		}
	}

	callee := m.spec.Name
	if m.spec.Initializer {
		callee = ""
	}
	if receiver != "" && callee != "" {
		callee = receiver + "." + callee
	} else if receiver != "" {
		callee = receiver
	}
	return callee + "(" + strings.Join(parts, ", ") + ")", nil
}

// Clone returns a detached copy that can be attached to another parent
func (m *Method) Clone() *Method {
	spec := m.spec
	spec.Params = make([]Param, 0, len(m.spec.Params))
	for _, p := range m.spec.Params {
		if fn, ok := p.(*Method); ok {
			spec.Params = append(spec.Params, fn.Clone().markAttached())
			continue
		}
		spec.Params = append(spec.Params, p)
	}
	spec.Body = append([]Line(nil), m.spec.Body...)
	return &Method{spec: spec}
}

func (m *Method) signatureList() string {
	sigs := make([]string, 0, len(m.spec.Params))
	for _, p := range m.spec.Params {
		sigs = append(sigs, p.Signature())
	}
	return strings.Join(sigs, ", ")
}

func (m *Method) attach() error {
	if m.attached {
		return errors.Wrapf(ErrContract, "method %s is already attached to a parent; use Clone", m.Name())
	}
	m.attached = true
	return nil
}

func (m *Method) markAttached() *Method {
	m.attached = true
	return m
}

func paramType(p Param) string {
	switch v := p.(type) {
	case Parameter:
		if v.Variadic {
			return v.Type + "..."
		}
		return v.Type
	case *Method:
		types := make([]string, 0, len(v.spec.Params))
		for _, inner := range v.spec.Params {
			types = append(types, paramType(inner))
		}
		return "(" + strings.Join(types, ", ") + ") -> " + v.ReturnType()
	default:
		return ""
	}
}
