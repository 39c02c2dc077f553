package marshalling

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/codegen/swift/construct"
	"github.com/okra-platform/dtogen/internal/dto"
)

// reserved local names used by the generated bodies
var reserved = map[string]bool{jsonName: true, "wire": true, "key": true, "value": true, "item": true, "decoded": true, "self": true}

// swiftKeywords cannot be used as bare identifiers for locals or labels
var swiftKeywords = map[string]bool{
	"associatedtype": true, "class": true, "deinit": true, "enum": true, "extension": true,
	"fileprivate": true, "func": true, "import": true, "init": true, "inout": true,
	"internal": true, "let": true, "open": true, "operator": true, "private": true,
	"protocol": true, "public": true, "rethrows": true, "static": true, "struct": true,
	"subscript": true, "typealias": true, "var": true, "break": true, "case": true,
	"continue": true, "default": true, "defer": true, "do": true, "else": true,
	"fallthrough": true, "for": true, "guard": true, "if": true, "in": true,
	"repeat": true, "return": true, "switch": true, "where": true, "while": true,
	"as": true, "Any": true, "catch": true, "false": true, "is": true, "nil": true,
	"super": true, "Self": true, "throw": true, "throws": true, "true": true, "try": true,
}

// checkFieldNames rejects field names that would not compile as the
// locals and labels of the generated bodies
func checkFieldNames(shape dto.Shape) error {
	names := make(map[string]bool, len(shape.Fields))
	for _, f := range shape.Fields {
		names[f.Name] = true
	}

	for _, f := range shape.Fields {
		var reason string
		switch {
		case reserved[f.Name]:
			reason = "field name is reserved by the generated code"
		case swiftKeywords[f.Name]:
			reason = "field name is a Swift keyword"
		case f.Type.Container == dto.ContainerDictionary && names[f.Name+"Json"]:
			reason = "dictionary field collides with field " + f.Name + "Json"
		default:
			continue
		}
		err := &dto.ContractError{DTO: shape.Name, Field: f.Name, Reason: reason}
		return errors.WithHint(errors.WithStack(err), "rename the field in the schema")
	}
	return nil
}

// DTOExtensions returns the marshalling extensions for one DTO.
//
// A concrete DTO gets an Unmarshalling extension with a convenience
// `init?(json:)` that ends in the DTO's memberwise initializer, and a
// Marshalling extension with `toJson()`. An abstract DTO gets its factories.
func DTOExtensions(shape dto.Shape, opts Options) ([]*construct.Extension, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.IsAbstract() {
		ext, err := FactoryExtension(shape)
		if err != nil {
			return nil, err
		}
		return []*construct.Extension{ext}, nil
	}

	if err := checkFieldNames(shape); err != nil {
		return nil, err
	}

	ctor, err := fromWireInit(true, decodeBody(shape, opts)...)
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s: init", shape.Name)
	}
	unmarshalling, err := construct.NewExtension(shape.Name, []string{UnmarshallingProtocol}, ctor)
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s", shape.Name)
	}

	toWire, err := toWireMethod(encodeBody(shape)...)
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s: toJson", shape.Name)
	}
	marshalling, err := construct.NewExtension(shape.Name, []string{MarshallingProtocol}, toWire)
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s", shape.Name)
	}

	return []*construct.Extension{unmarshalling, marshalling}, nil
}

// SwiftType returns the Swift spelling of t, including optionality
func SwiftType(t dto.TypeRef) string {
	var s string
	switch t.Container {
	case dto.ContainerArray:
		s = "[" + SwiftType(elemRef(t)) + "]"
	case dto.ContainerDictionary:
		s = "[String: " + SwiftType(elemRef(t)) + "]"
	default:
		if n, ok := NativeFor(t.Category); ok {
			s = n.SwiftName()
		} else {
			s = t.Name
		}
	}
	if t.Optional {
		s += "?"
	}
	return s
}

// elemRef returns the element of a container, stripped of optionality since
// filter-mapped collections never hold absent elements
func elemRef(t dto.TypeRef) dto.TypeRef {
	e := *t.Elem
	e.Optional = false
	return e
}

// decodeExpr is an expression of optional type decoding one wire value as t
func decodeExpr(t dto.TypeRef, wire string) string {
	if t.Category == dto.CategoryAbstract {
		return t.Name + "." + factoryName + "(" + wire + ")"
	}
	return initCall(SwiftType(dto.Named(t.Name, t.Category)), wire)
}

// arrayExpr is an expression of optional array type decoding wire as [elem]
func arrayExpr(elem dto.TypeRef, wire string, opts Options) string {
	switch {
	case elem.Category == dto.CategoryAbstract:
		return elem.Name + "." + arrayName + "(" + factoryOptions.helperParam().Argument(wire) + ")"
	case elem.Category.IsNative():
		n, _ := NativeFor(elem.Category)
		if n.IsClass() {
			return n.SwiftName() + "." + arrayName + "(" + opts.helperParam().Argument(wire) + ")"
		}
	}
	return arrayName + "(" + opts.helperParam().Argument(wire) + ")"
}

func decodeBody(shape dto.Shape, opts Options) []construct.Line {
	code := construct.NewCode().Guard("let %s = %s as? %s", jsonName, jsonName, wireObjectType)

	args := make([]string, 0, len(shape.Fields))
	for _, f := range shape.Fields {
		wire := jsonName + "[" + swiftString(f.Name) + "]"
		required := !f.Type.Optional

		switch f.Type.Container {
		case dto.ContainerArray:
			elem := elemRef(f.Type)
			arrayType := "[" + SwiftType(elem) + "]"
			if required {
				code.Guard("let %s: %s = %s", f.Name, arrayType, arrayExpr(elem, wire, opts))
			} else {
				code.Add("let %s: %s? = %s", f.Name, arrayType, arrayExpr(elem, wire, opts))
			}
		case dto.ContainerDictionary:
			decodeDictionary(code, f, wire)
		default:
			if required {
				code.Guard("let %s = %s", f.Name, decodeExpr(f.Type, wire))
			} else {
				code.Add("let %s = %s", f.Name, decodeExpr(f.Type, wire))
			}
		}
		args = append(args, f.Name+": "+f.Name)
	}

	code.Add("self.init(%s)", strings.Join(args, ", "))
	return code.Lines()
}

// decodeDictionary filter-maps a string-keyed wire object into a typed dictionary
func decodeDictionary(code *construct.Code, f dto.Field, wire string) {
	elem := elemRef(f.Type)
	dictType := "[String: " + SwiftType(elem) + "]"
	raw := f.Name + "Json"

	fill := func(target string) {
		code.Open("for (key, value) in %s {", raw).
			Open("if let item = %s {", decodeExpr(elem, "value")).
			Add("%s[key] = item", target).
			Close("}").
			Close("}")
	}

	if !f.Type.Optional {
		code.Guard("let %s = %s as? %s", raw, wire, wireObjectType).
			Add("var %s = %s()", f.Name, dictType)
		fill(f.Name)
		return
	}

	code.Add("var %s: %s? = nil", f.Name, dictType).
		Open("if let %s = %s as? %s {", raw, wire, wireObjectType).
		Add("var decoded = %s()", dictType)
	fill("decoded")
	code.Add("%s = decoded", f.Name).
		Close("}")
}

// encodeExpr is an expression producing the wire value of v, typed by t
func encodeExpr(t dto.TypeRef, v string) string {
	if t.Category == dto.CategoryAbstract {
		return "(" + v + " as? " + MarshallingProtocol + ")?." + toWireName + "()"
	}
	return v + "." + toWireName + "()"
}

func encodeBody(shape dto.Shape) []construct.Line {
	code := construct.NewCode().Add("var wire = %s()", wireObjectType)
	if shape.Tag != nil {
		code.Add("wire[%s] = %s", swiftString(shape.Tag.Field), swiftString(shape.Tag.Value))
	}

	for _, f := range shape.Fields {
		key := "wire[" + swiftString(f.Name) + "]"
		if f.Type.Optional {
			code.Open("if let %s = %s {", f.Name, f.Name)
		}

		switch f.Type.Container {
		case dto.ContainerArray:
			elem := elemRef(f.Type)
			if elem.Category == dto.CategoryAbstract {
				code.Add("%s = %s.flatMap { %s }", key, f.Name, encodeExpr(elem, "$0"))
			} else {
				code.Add("%s = %s.map { %s }", key, f.Name, encodeExpr(elem, "$0"))
			}
		case dto.ContainerDictionary:
			elem := elemRef(f.Type)
			raw := f.Name + "Json"
			code.Add("var %s = %s()", raw, wireObjectType).
				Open("for (key, value) in %s {", f.Name).
				Add("%s[key] = %s", raw, encodeExpr(elem, "value")).
				Close("}").
				Add("%s = %s", key, raw)
		default:
			code.Add("%s = %s", key, encodeExpr(f.Type, f.Name))
		}

		if f.Type.Optional {
			code.Close("}")
		}
	}

	code.Add("return wire")
	return code.Lines()
}
