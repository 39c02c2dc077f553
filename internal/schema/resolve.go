package schema

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/dto"
)

const (
	discriminatorDirective = "discriminator"
	mapPrefix              = "Map_"
)

// scalarCategories maps built-in scalar names onto dto categories
var scalarCategories = map[string]dto.Category{
	"Boolean":   dto.CategoryBool,
	"Bool":      dto.CategoryBool,
	"String":    dto.CategoryString,
	"ID":        dto.CategoryString,
	"Int":       dto.CategoryInt,
	"Long":      dto.CategoryInt,
	"Float":     dto.CategoryFloat,
	"Double":    dto.CategoryDouble,
	"Bytes":     dto.CategoryBlob,
	"Data":      dto.CategoryBlob,
	"Blob":      dto.CategoryBlob,
	"Time":      dto.CategoryTimestamp,
	"Date":      dto.CategoryTimestamp,
	"DateTime":  dto.CategoryTimestamp,
	"Timestamp": dto.CategoryTimestamp,
}

// Shapes resolves the schema into DTO shapes in declaration order
func (s *Schema) Shapes() ([]dto.Shape, error) {
	catalog, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return catalog.Shapes(), nil
}

// Catalog resolves the schema and cross-checks every reference
func (s *Schema) Catalog() (*dto.Catalog, error) {
	r := &resolver{
		schema:    s,
		enums:     make(map[string]bool, len(s.Enums)),
		objects:   make(map[string]*ObjectType, len(s.Types)),
		abstracts: make(map[string]*AbstractType, len(s.Abstracts)),
	}
	for _, e := range s.Enums {
		r.enums[e.Name] = true
	}
	for i := range s.Types {
		r.objects[s.Types[i].Name] = &s.Types[i]
	}
	for i := range s.Abstracts {
		r.abstracts[s.Abstracts[i].Name] = &s.Abstracts[i]
	}

	subtypes, tags, err := r.registerSubtypes()
	if err != nil {
		return nil, err
	}

	shapes := make([]dto.Shape, 0, len(s.Types)+len(s.Abstracts))
	for _, name := range r.declarationOrder() {
		if a, ok := r.abstracts[name]; ok {
			shape, err := r.abstractShape(a, subtypes[name])
			if err != nil {
				return nil, err
			}
			shapes = append(shapes, shape)
			continue
		}

		obj := r.objects[name]
		fields, err := r.resolveFields(obj.Name, obj.Fields)
		if err != nil {
			return nil, err
		}
		shape := dto.Shape{Name: obj.Name, Doc: obj.Doc, Fields: fields}
		if tag, ok := tags[obj.Name]; ok {
			shape.Tag = tag
			shape.Fields = withoutField(shape.Fields, tag.Field)
		}
		shapes = append(shapes, shape)
	}

	return dto.NewCatalog(shapes)
}

type resolver struct {
	schema    *Schema
	enums     map[string]bool
	objects   map[string]*ObjectType
	abstracts map[string]*AbstractType
}

func (r *resolver) declarationOrder() []string {
	if len(r.schema.order) > 0 {
		return r.schema.order
	}
	order := make([]string, 0, len(r.schema.Abstracts)+len(r.schema.Types))
	for _, a := range r.schema.Abstracts {
		order = append(order, a.Name)
	}
	for _, t := range r.schema.Types {
		order = append(order, t.Name)
	}
	return order
}

// registerSubtypes collects, per abstract DTO, its subtypes in declaration order
func (r *resolver) registerSubtypes() (map[string][]dto.Subtype, map[string]*dto.Tag, error) {
	subtypes := make(map[string][]dto.Subtype)
	tags := make(map[string]*dto.Tag)

	for _, obj := range r.schema.Types {
		var base *AbstractType
		for _, iface := range obj.Implements {
			a, ok := r.abstracts[iface]
			if !ok {
				return nil, nil, contractError(obj.Name, "", "implements unknown abstract dto %s", iface)
			}
			if base != nil {
				return nil, nil, contractError(obj.Name, "", "implements both %s and %s", base.Name, a.Name)
			}
			base = a
		}
		if base == nil {
			if _, ok := findDirective(obj.Directives, discriminatorDirective); ok {
				return nil, nil, contractError(obj.Name, "", "@discriminator(value:) on a type that implements no abstract dto")
			}
			continue
		}

		field, err := discriminatorField(base)
		if err != nil {
			return nil, nil, err
		}

		value := obj.Name
		if d, ok := findDirective(obj.Directives, discriminatorDirective); ok && d.Args["value"] != "" {
			value = d.Args["value"]
		}

		subtypes[base.Name] = append(subtypes[base.Name], dto.Subtype{Value: value, Name: obj.Name})
		tags[obj.Name] = &dto.Tag{Base: base.Name, Field: field, Value: value}
	}

	return subtypes, tags, nil
}

func (r *resolver) abstractShape(a *AbstractType, subtypes []dto.Subtype) (dto.Shape, error) {
	field, err := discriminatorField(a)
	if err != nil {
		return dto.Shape{}, err
	}

	poly, err := dto.NewPolymorphism(a.Name, field, subtypes)
	if err != nil {
		return dto.Shape{}, err
	}

	fields, err := r.resolveFields(a.Name, a.Fields)
	if err != nil {
		return dto.Shape{}, err
	}

	return dto.Shape{
		Name:         a.Name,
		Doc:          a.Doc,
		Fields:       withoutField(fields, field),
		Polymorphism: poly,
	}, nil
}

func discriminatorField(a *AbstractType) (string, error) {
	d, ok := findDirective(a.Directives, discriminatorDirective)
	if !ok || d.Args["field"] == "" {
		err := contractError(a.Name, "", "abstract dto has no discriminator field")
		return "", errors.WithHint(err, `declare it with @discriminator(field: "type")`)
	}
	return d.Args["field"], nil
}

func (r *resolver) resolveFields(owner string, fields []Field) ([]dto.Field, error) {
	out := make([]dto.Field, 0, len(fields))
	for _, f := range fields {
		ref, err := r.resolveType(owner, f)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.Field{Name: f.Name, Type: ref, Doc: f.Doc})
	}
	return out, nil
}

func (r *resolver) resolveType(owner string, f Field) (dto.TypeRef, error) {
	var ref dto.TypeRef

	if strings.HasPrefix(f.Type, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(f.Type, "["), "]")
		if strings.HasPrefix(inner, "[") || strings.HasPrefix(inner, mapPrefix) {
			err := contractError(owner, f.Name, "nested collections are not supported")
			return ref, errors.WithHint(err, "wrap the inner collection in its own dto")
		}
		elem, err := r.resolveNamed(owner, f.Name, inner)
		if err != nil {
			return ref, err
		}
		ref = dto.ArrayOf(elem)
	} else if strings.HasPrefix(f.Type, mapPrefix) {
		elem, err := r.resolveNamed(owner, f.Name, strings.TrimPrefix(f.Type, mapPrefix))
		if err != nil {
			return ref, err
		}
		ref = dto.DictionaryOf(elem)
	} else {
		named, err := r.resolveNamed(owner, f.Name, f.Type)
		if err != nil {
			return ref, err
		}
		ref = named
	}

	if !f.Required {
		ref = ref.AsOptional()
	}
	return ref, nil
}

func (r *resolver) resolveNamed(owner, field, name string) (dto.TypeRef, error) {
	if c, ok := scalarCategories[name]; ok {
		return dto.Named(name, c), nil
	}
	if r.enums[name] {
		return dto.Named(name, dto.CategoryString), nil
	}
	if _, ok := r.objects[name]; ok {
		return dto.Named(name, dto.CategoryObject), nil
	}
	if _, ok := r.abstracts[name]; ok {
		return dto.Named(name, dto.CategoryAbstract), nil
	}
	if strings.HasPrefix(name, mapPrefix) || strings.HasPrefix(name, "[") {
		return dto.TypeRef{}, contractError(owner, field, "nested collections are not supported")
	}
	return dto.TypeRef{}, contractError(owner, field, "unknown type %s", name)
}

func withoutField(fields []dto.Field, name string) []dto.Field {
	out := make([]dto.Field, 0, len(fields))
	for _, f := range fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

func contractError(dtoName, field, format string, args ...interface{}) error {
	return errors.WithStack(&dto.ContractError{DTO: dtoName, Field: field, Reason: fmt.Sprintf(format, args...)})
}
