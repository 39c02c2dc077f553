package marshalling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/codegen/swift/construct"
	"github.com/okra-platform/dtogen/internal/dto"
)

// factoryOptions are fixed: factories are always called positionally
var factoryOptions = Options{SupportObjC: false}

// Factories returns the static `create` and `arrayFromJson` methods of an abstract DTO.
//
// create reads the discriminator field and delegates the whole map to the
// matching subtype's initializer, testing cases in declared order. Unknown or
// missing discriminators produce nil. arrayFromJson filter-maps through create.
func Factories(shape dto.Shape) ([]*construct.Method, error) {
	if !shape.IsAbstract() {
		return nil, &dto.ContractError{DTO: shape.Name, Reason: "factories require an abstract dto"}
	}
	poly := shape.Polymorphism

	code := construct.NewCode().
		Guard("let json = json as? %s", wireObjectType).
		Guard("let type = %s", initCall("String", "json["+swiftString(poly.Field())+"]")).
		Open("switch type {")
	for _, sub := range poly.Subtypes() {
		code.Case("case "+swiftString(sub.Value)+":", "return "+initCall(sub.Name, "json"))
	}
	code.Case("default:", "return nil").
		Close("}")

	create, err := construct.NewMethod(construct.MethodSpec{
		Name:    factoryName,
		Static:  true,
		Returns: shape.Name + "?",
		Params:  []construct.Param{factoryOptions.helperParam()},
		Body:    code.Lines(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s: create", shape.Name)
	}

	elem, err := create.Call("", "$0")
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s", shape.Name)
	}
	array, err := staticArrayHelper(shape.Name, factoryOptions.helperParam(), elem)
	if err != nil {
		return nil, errors.Wrapf(err, "dto %s: arrayFromJson", shape.Name)
	}

	return []*construct.Method{create, array}, nil
}

// FactoryExtension hosts the factories in `extension <Base> { ... }`
func FactoryExtension(shape dto.Shape) (*construct.Extension, error) {
	methods, err := Factories(shape)
	if err != nil {
		return nil, err
	}
	return construct.NewExtension(shape.Name, nil, methods...)
}

// swiftString quotes s as a Swift string literal. Non-printable runes use
// the \u{...} form since Swift has no \x, \a, \v or \f escapes.
func swiftString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if strconv.IsPrint(r) {
				b.WriteRune(r)
			} else {
				fmt.Fprintf(&b, `\u{%X}`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
