package marshalling

import (
	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/codegen/swift/construct"
)

// UnmarshallingExtension returns the from-wire extension for n.
//
// Value types conform to Unmarshalling directly. Foundation classes get a
// convenience initializer without declaring conformance, since a non-final
// class cannot satisfy an initializer requirement from an extension.
func UnmarshallingExtension(n Native) (*construct.Extension, error) {
	code := construct.NewCode()

	switch {
	case n.IsValue():
		code.Guard("let json = json as? %s", n.SwiftName()).
			Add("self.init(json)")
	case n == NativeBlob:
		code.Guard("let json = json as? String").
			Open("if let data = NSData(base64EncodedString: json, options: .IgnoreUnknownCharacters) {").
			Add("self.init(data: data)").
			Reopen("} else {").
			Add("return nil").
			Close("}")
	case n == NativeTimestamp:
		code.Guard("let json = json as? NSTimeInterval").
			Add("self.init(timeIntervalSince1970: json / 1000)")
	default:
		return nil, errors.Newf("no from-wire rule for %s", n)
	}

	ctor, err := fromWireInit(n.IsClass(), code.Lines()...)
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshalling %s", n)
	}

	var conformances []string
	if !n.IsClass() {
		conformances = []string{UnmarshallingProtocol}
	}
	return construct.NewExtension(n.SwiftName(), conformances, ctor)
}

// MarshallingExtension returns the to-wire extension for n.
// Timestamps become whole milliseconds since the epoch, truncated toward zero.
func MarshallingExtension(n Native) (*construct.Extension, error) {
	var stmt string
	switch {
	case n.IsValue():
		stmt = "return self"
	case n == NativeBlob:
		stmt = "return self.base64EncodedStringWithOptions(.Encoding64CharacterLineLength)"
	case n == NativeTimestamp:
		stmt = "return Int(self.timeIntervalSince1970 * 1000)"
	default:
		return nil, errors.Newf("no to-wire rule for %s", n)
	}

	m, err := toWireMethod(construct.Statements(stmt)...)
	if err != nil {
		return nil, errors.Wrapf(err, "marshalling %s", n)
	}
	return construct.NewExtension(n.SwiftName(), []string{MarshallingProtocol}, m)
}

// ArrayExtension returns `static func arrayFromJson` for a Foundation class native.
// Elements that fail to convert are dropped.
func ArrayExtension(n Native, opts Options) (*construct.Extension, error) {
	if !n.IsClass() {
		return nil, errors.Newf("%s uses the generic array helper", n)
	}

	m, err := staticArrayHelper(n.SwiftName(), opts.helperParam(), initCall(n.SwiftName(), "$0"))
	if err != nil {
		return nil, errors.Wrapf(err, "array helper %s", n)
	}
	return construct.NewExtension(n.SwiftName(), nil, m)
}

// GenericArrayHelper returns the free `arrayFromJson<T: Unmarshalling>` function
func GenericArrayHelper(opts Options) (*construct.Method, error) {
	return construct.NewMethod(construct.MethodSpec{
		Name:     arrayName,
		Generics: []string{"T: " + UnmarshallingProtocol},
		Returns:  "[T]?",
		Params:   []construct.Param{opts.helperParam()},
		Body:     filterMapBody(initCall("T", "$0")),
	})
}

func staticArrayHelper(elemType string, param construct.Parameter, elemCall string) (*construct.Method, error) {
	return construct.NewMethod(construct.MethodSpec{
		Name:    arrayName,
		Static:  true,
		Returns: "[" + elemType + "]?",
		Params:  []construct.Param{param},
		Body:    filterMapBody(elemCall),
	})
}

// initCall renders a from-wire initializer call, labelled like initParam
func initCall(typeName, arg string) string {
	return typeName + "(" + initParam().Argument(arg) + ")"
}

func filterMapBody(elemCall string) []construct.Line {
	return construct.NewCode().
		Guard("let json = json as? %s", wireArrayType).
		Add("return json.flatMap { %s }", elemCall).
		Lines()
}
