package dto

import (
	"github.com/cockroachdb/errors"
)

// NewPolymorphism builds dispatch metadata for the abstract DTO named base.
// Subtypes keep their declared order; a discriminator value may be registered once.
func NewPolymorphism(base, field string, subtypes []Subtype) (*Polymorphism, error) {
	if field == "" {
		return nil, contractError(base, "", "abstract dto needs a discriminator field")
	}

	seen := make(map[string]string, len(subtypes))
	for _, s := range subtypes {
		if s.Value == "" {
			return nil, contractError(base, field, "subtype %s has an empty discriminator value", s.Name)
		}
		if s.Name == "" {
			return nil, contractError(base, field, "discriminator %q has no subtype", s.Value)
		}
		if prev, ok := seen[s.Value]; ok {
			err := contractError(base, field, "discriminator %q registered twice (%s, %s)", s.Value, prev, s.Name)
			return nil, errors.WithHint(err, "every subtype of an abstract dto needs its own @discriminator(value:)")
		}
		seen[s.Value] = s.Name
	}

	out := make([]Subtype, len(subtypes))
	copy(out, subtypes)
	return &Polymorphism{field: field, subtypes: out}, nil
}

// Validate checks the shape's own invariants
func (s Shape) Validate() error {
	if s.Name == "" {
		return contractError("<unnamed>", "", "dto has no name")
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return contractError(s.Name, "", "field has no name")
		}
		if seen[f.Name] {
			return contractError(s.Name, f.Name, "duplicate field")
		}
		seen[f.Name] = true

		if err := validateTypeRef(s.Name, f.Name, f.Type, 0); err != nil {
			return err
		}
	}

	if s.Tag != nil {
		if s.Tag.Field == "" || s.Tag.Value == "" {
			return contractError(s.Name, "", "subtype of %s has no discriminator", s.Tag.Base)
		}
		if _, ok := seen[s.Tag.Field]; ok {
			return contractError(s.Name, s.Tag.Field, "discriminator field of %s is declared as a regular field", s.Tag.Base)
		}
	}

	return nil
}

func validateTypeRef(dto, field string, t TypeRef, depth int) error {
	switch t.Container {
	case ContainerNone:
		if t.Name == "" {
			return contractError(dto, field, "type has no name")
		}
		if t.Category < CategoryBool || t.Category > CategoryAbstract {
			return contractError(dto, field, "type %s has no category", t.Name)
		}
		return nil
	case ContainerArray, ContainerDictionary:
		if t.Elem == nil {
			return contractError(dto, field, "container has no element type")
		}
		if depth > 0 {
			err := contractError(dto, field, "nested collections are not supported")
			return errors.WithHint(err, "wrap the inner collection in its own dto")
		}
		return validateTypeRef(dto, field, *t.Elem, depth+1)
	default:
		return contractError(dto, field, "unknown container kind %d", t.Container)
	}
}
