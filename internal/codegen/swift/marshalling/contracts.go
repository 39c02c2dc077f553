// Package marshalling synthesizes the Swift code that converts DTOs and
// native values to and from JSON-shaped wire values.
package marshalling

import (
	"github.com/okra-platform/dtogen/internal/codegen/swift/construct"
)

const (
	MarshallingProtocol   = "Marshalling"
	UnmarshallingProtocol = "Unmarshalling"

	// HelperFileName is the base name of the support file
	HelperFileName = "MarshallingHelper"
	// HelperSubfolder is where the support file is written
	HelperSubfolder = "helper"

	wireType       = "AnyObject"
	optionalWire   = "AnyObject?"
	wireObjectType = "[String: AnyObject]"
	wireArrayType  = "[AnyObject]"

	toWireName    = "toJson"
	arrayName     = "arrayFromJson"
	factoryName   = "create"
	parameterName = "parameter"
	jsonName      = "json"
)

// Options are the generation switches threaded through every rule
type Options struct {
	// SupportObjC keeps the external `json` label on helper parameters so
	// the generated methods expose Objective-C friendly selectors
	SupportObjC bool
}

// helperParam is the json parameter of static and free helper functions
func (o Options) helperParam() construct.Parameter {
	return construct.Parameter{Name: jsonName, Type: optionalWire, Unlabeled: !o.SupportObjC}
}

// initParam is the json parameter of every from-wire initializer; initializers
// always keep their label so `T(json:)` call sites stay valid
func initParam() construct.Parameter {
	return construct.Parameter{Name: jsonName, Type: optionalWire}
}

// toWireMethod returns `func toJson() -> AnyObject` with body, or the bare requirement
func toWireMethod(body ...construct.Line) (*construct.Method, error) {
	return construct.NewMethod(construct.MethodSpec{
		Name:        toWireName,
		Returns:     wireType,
		Body:        body,
		Requirement: len(body) == 0,
	})
}

// fromWireInit returns `[convenience ]init?(json: AnyObject?)` with body, or the bare requirement
func fromWireInit(convenience bool, body ...construct.Line) (*construct.Method, error) {
	return construct.NewMethod(construct.MethodSpec{
		Initializer: true,
		Convenience: convenience,
		Failable:    true,
		Params:      []construct.Param{initParam()},
		Body:        body,
		Requirement: len(body) == 0,
	})
}

// Protocols returns the Marshalling and Unmarshalling capability contracts
func Protocols() ([]*construct.Protocol, error) {
	toWire, err := toWireMethod()
	if err != nil {
		return nil, err
	}
	marshalling, err := construct.NewProtocol(MarshallingProtocol, "Types that can produce a JSON wire value.", toWire)
	if err != nil {
		return nil, err
	}

	fromWire, err := fromWireInit(false)
	if err != nil {
		return nil, err
	}
	unmarshalling, err := construct.NewProtocol(UnmarshallingProtocol, "Types that can be built from a JSON wire value.", fromWire)
	if err != nil {
		return nil, err
	}

	return []*construct.Protocol{marshalling, unmarshalling}, nil
}

// ParameterExtension returns the Marshalling adapter that re-reads the wire value as a parameter map
func ParameterExtension() (*construct.Extension, error) {
	m, err := construct.NewMethod(construct.MethodSpec{
		Name:    parameterName,
		Returns: wireObjectType + "?",
		Body:    construct.Statements("return self." + toWireName + "() as? " + wireObjectType),
	})
	if err != nil {
		return nil, err
	}
	return construct.NewExtension(MarshallingProtocol, nil, m)
}
