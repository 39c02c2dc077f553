package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

const metadataType = "_Schema"

// ParseSchema parses a DTO schema (after preprocessing) into our Schema model
func ParseSchema(input string) (*Schema, error) {
	preprocessed := PreprocessGraphQL(input)

	doc, report := astparser.ParseGraphqlDocumentString(preprocessed)
	if report.HasErrors() {
		return nil, errors.Newf("failed to parse GraphQL: %v", report)
	}

	schema := &Schema{
		Types:     []ObjectType{},
		Abstracts: []AbstractType{},
		Enums:     []EnumType{},
		Meta:      Metadata{},
	}

	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		switch node.Kind {
		case ast.NodeKindObjectTypeDefinition:
			if err := parseObjectType(&doc, node.Ref, schema); err != nil {
				return nil, err
			}
		case ast.NodeKindInterfaceTypeDefinition:
			if err := parseAbstractType(&doc, node.Ref, schema); err != nil {
				return nil, err
			}
		case ast.NodeKindEnumTypeDefinition:
			parseEnumType(&doc, node.Ref, schema)
		}
	}

	return schema, nil
}

func parseObjectType(doc *ast.Document, ref int, schema *Schema) error {
	typeDef := doc.ObjectTypeDefinitions[ref]
	typeName := doc.Input.ByteSliceString(typeDef.Name)

	if typeName == metadataType {
		parseMetadata(doc, typeDef, schema)
		return nil
	}

	fields, err := parseFields(doc, typeName, typeDef.FieldsDefinition.Refs)
	if err != nil {
		return err
	}

	objType := ObjectType{
		Name:       typeName,
		Doc:        getDescription(doc, typeDef.Description),
		Fields:     fields,
		Implements: []string{},
		Directives: parseDirectives(doc, typeDef.Directives),
	}
	for _, typeRef := range typeDef.ImplementsInterfaces.Refs {
		objType.Implements = append(objType.Implements, doc.Input.ByteSliceString(doc.Types[typeRef].Name))
	}

	schema.Types = append(schema.Types, objType)
	schema.order = append(schema.order, typeName)
	return nil
}

func parseAbstractType(doc *ast.Document, ref int, schema *Schema) error {
	typeDef := doc.InterfaceTypeDefinitions[ref]
	typeName := doc.Input.ByteSliceString(typeDef.Name)

	fields, err := parseFields(doc, typeName, typeDef.FieldsDefinition.Refs)
	if err != nil {
		return err
	}

	schema.Abstracts = append(schema.Abstracts, AbstractType{
		Name:       typeName,
		Doc:        getDescription(doc, typeDef.Description),
		Fields:     fields,
		Directives: parseDirectives(doc, typeDef.Directives),
	})
	schema.order = append(schema.order, typeName)
	return nil
}

func parseEnumType(doc *ast.Document, ref int, schema *Schema) {
	enumDef := doc.EnumTypeDefinitions[ref]

	enumType := EnumType{
		Name:   doc.Input.ByteSliceString(enumDef.Name),
		Doc:    getDescription(doc, enumDef.Description),
		Values: []EnumValue{},
	}

	for _, valueRef := range enumDef.EnumValuesDefinition.Refs {
		valueDef := doc.EnumValueDefinitions[valueRef]
		enumType.Values = append(enumType.Values, EnumValue{
			Name: doc.Input.ByteSliceString(valueDef.EnumValue),
			Doc:  getDescription(doc, valueDef.Description),
		})
	}

	schema.Enums = append(schema.Enums, enumType)
}

func parseMetadata(doc *ast.Document, typeDef ast.ObjectTypeDefinition, schema *Schema) {
	for _, fieldRef := range typeDef.FieldsDefinition.Refs {
		fieldDef := doc.FieldDefinitions[fieldRef]

		for _, directiveRef := range fieldDef.Directives.Refs {
			directive := doc.Directives[directiveRef]
			if doc.Input.ByteSliceString(directive.Name) != "dtogen" {
				continue
			}
			args := parseDirectiveArgs(doc, directive)
			schema.Meta.Module = args["module"]
			schema.Meta.Version = args["version"]
			return
		}
	}
}

func parseFields(doc *ast.Document, owner string, refs []int) ([]Field, error) {
	fields := make([]Field, 0, len(refs))
	for _, fieldRef := range refs {
		field, err := parseField(doc, fieldRef)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", owner)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func parseField(doc *ast.Document, fieldRef int) (Field, error) {
	fieldDef := doc.FieldDefinitions[fieldRef]

	field := Field{
		Name:       doc.Input.ByteSliceString(fieldDef.Name),
		Doc:        getDescription(doc, fieldDef.Description),
		Directives: parseDirectives(doc, fieldDef.Directives),
	}
	if len(fieldDef.ArgumentsDefinition.Refs) > 0 {
		return Field{}, errors.Newf("field %s: dto fields cannot take arguments", field.Name)
	}

	typeStr, required, elemRequired := parseType(doc, fieldDef.Type)
	field.Type = typeStr
	field.Required = required
	field.ElemRequired = elemRequired

	return field, nil
}

// parseType returns the type string, whether it is non-null and, for lists,
// whether the elements are non-null
func parseType(doc *ast.Document, typeRef int) (string, bool, bool) {
	required := false
	currentRef := typeRef

	if doc.Types[currentRef].TypeKind == ast.TypeKindNonNull {
		required = true
		currentRef = doc.Types[currentRef].OfType
	}

	if doc.Types[currentRef].TypeKind == ast.TypeKindList {
		innerRef := doc.Types[currentRef].OfType
		innerType, innerRequired, _ := parseType(doc, innerRef)
		return "[" + innerType + "]", required, innerRequired
	}

	if doc.Types[currentRef].TypeKind == ast.TypeKindNamed {
		typeName := doc.Input.ByteSliceString(doc.Types[currentRef].Name)
		return typeName, required, false
	}

	return "Unknown", required, false
}

func parseDirectives(doc *ast.Document, directives ast.DirectiveList) []Directive {
	result := []Directive{}

	for _, directiveRef := range directives.Refs {
		directive := doc.Directives[directiveRef]

		result = append(result, Directive{
			Name: doc.Input.ByteSliceString(directive.Name),
			Args: parseDirectiveArgs(doc, directive),
		})
	}

	return result
}

func parseDirectiveArgs(doc *ast.Document, directive ast.Directive) map[string]string {
	args := make(map[string]string)

	for _, argRef := range directive.Arguments.Refs {
		arg := doc.Arguments[argRef]
		argName := doc.Input.ByteSliceString(arg.Name)

		value := doc.ArgumentValue(argRef)
		args[argName] = parseValue(doc, value)
	}

	return args
}

func parseValue(doc *ast.Document, value ast.Value) string {
	switch value.Kind {
	case ast.ValueKindString:
		return doc.StringValueContentString(value.Ref)

	case ast.ValueKindEnum:
		if value.Ref >= 0 && value.Ref < len(doc.EnumValues) {
			return doc.Input.ByteSliceString(doc.EnumValues[value.Ref].Name)
		}

	case ast.ValueKindBoolean:
		// Ref is 0 for false and 1 for true
		if value.Ref >= 0 && value.Ref < len(doc.BooleanValues) {
			if doc.BooleanValues[value.Ref] {
				return "true"
			}
			return "false"
		}

	case ast.ValueKindInteger:
		return fmt.Sprintf("%d", doc.IntValueAsInt(value.Ref))

	case ast.ValueKindFloat:
		return fmt.Sprintf("%f", doc.FloatValueAsFloat32(value.Ref))
	}

	return ""
}

func getDescription(doc *ast.Document, desc ast.Description) string {
	if !desc.IsDefined {
		return ""
	}

	return strings.TrimSpace(doc.Input.ByteSliceString(desc.Content))
}
