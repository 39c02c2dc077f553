package wire

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/dto"
)

// Record is a decoded DTO instance. Fields holds the present fields only:
// natives as their Go types, []byte for blobs, time.Time for timestamps,
// *Record for nested DTOs, []any for arrays and map[string]any for dictionaries.
type Record struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields"`
}

// Dispatch reads the discriminator of an abstract DTO payload and returns
// the registered subtype together with the payload object
func Dispatch(p *dto.Polymorphism, v any) (string, map[string]any, bool) {
	obj, ok := Object(v)
	if !ok {
		return "", nil, false
	}
	disc, ok := String(obj[p.Field()])
	if !ok {
		return "", nil, false
	}
	name, ok := p.Lookup(disc)
	if !ok {
		return "", nil, false
	}
	return name, obj, true
}

// Decoder walks a DTO catalog the same way the generated initializers do
type Decoder struct {
	catalog *dto.Catalog
}

// NewDecoder creates a decoder for the DTOs of catalog
func NewDecoder(catalog *dto.Catalog) *Decoder {
	return &Decoder{catalog: catalog}
}

// Decode unmarshals value as the DTO named typeName. The bool result is
// false when the generated code would produce nil. Only an unknown
// typeName is an error.
func (d *Decoder) Decode(typeName string, value any) (*Record, bool, error) {
	shape, ok := d.catalog.Lookup(typeName)
	if !ok {
		err := errors.Newf("unknown dto %s", typeName)
		return nil, false, errors.WithHintf(err, "known dtos: %v", d.catalog.Names())
	}
	r, ok := d.decodeShape(shape, value)
	return r, ok, nil
}

// DecodeArray unmarshals value as an array of typeName, dropping malformed elements
func (d *Decoder) DecodeArray(typeName string, value any) ([]*Record, bool, error) {
	shape, ok := d.catalog.Lookup(typeName)
	if !ok {
		return nil, false, errors.Newf("unknown dto %s", typeName)
	}
	out, ok := Array(value, func(item any) (*Record, bool) {
		return d.decodeShape(shape, item)
	})
	return out, ok, nil
}

func (d *Decoder) decodeShape(shape dto.Shape, v any) (*Record, bool) {
	if shape.IsAbstract() {
		name, obj, ok := Dispatch(shape.Polymorphism, v)
		if !ok {
			return nil, false
		}
		sub, ok := d.catalog.Lookup(name)
		if !ok {
			return nil, false
		}
		return d.decodeShape(sub, obj)
	}

	obj, ok := Object(v)
	if !ok {
		return nil, false
	}

	r := &Record{Type: shape.Name, Fields: make(map[string]any, len(shape.Fields))}
	for _, f := range shape.Fields {
		val, ok := d.decodeValue(f.Type, obj[f.Name])
		if !ok {
			if f.Type.Optional {
				continue
			}
			return nil, false
		}
		r.Fields[f.Name] = val
	}
	return r, true
}

func (d *Decoder) decodeValue(t dto.TypeRef, v any) (any, bool) {
	elem := func(item any) (any, bool) {
		return d.decodeLeaf(*t.Elem, item)
	}

	switch t.Container {
	case dto.ContainerArray:
		out, ok := Array(v, elem)
		return out, ok
	case dto.ContainerDictionary:
		out, ok := Dictionary(v, elem)
		return out, ok
	default:
		return d.decodeLeaf(t, v)
	}
}

func (d *Decoder) decodeLeaf(t dto.TypeRef, v any) (any, bool) {
	switch t.Category {
	case dto.CategoryBool:
		b, ok := Bool(v)
		return b, ok
	case dto.CategoryString:
		s, ok := String(v)
		return s, ok
	case dto.CategoryInt:
		i, ok := Int(v)
		return i, ok
	case dto.CategoryFloat:
		f, ok := Float(v)
		return f, ok
	case dto.CategoryDouble:
		f, ok := Double(v)
		return f, ok
	case dto.CategoryBlob:
		b, ok := BlobFromWire(v)
		return b, ok
	case dto.CategoryTimestamp:
		ts, ok := TimeFromWire(v)
		return ts, ok
	case dto.CategoryObject, dto.CategoryAbstract:
		shape, ok := d.catalog.Lookup(t.Name)
		if !ok {
			return nil, false
		}
		r, ok := d.decodeShape(shape, v)
		return r, ok
	}
	return nil, false
}

// Encode marshals a record the way the generated toJson does: subtypes
// write their discriminator, optional fields appear only when present
func (d *Decoder) Encode(r *Record) (map[string]any, error) {
	if r == nil {
		return nil, errors.New("encode: nil record")
	}
	shape, ok := d.catalog.Lookup(r.Type)
	if !ok {
		return nil, errors.Newf("encode: unknown dto %s", r.Type)
	}
	if shape.IsAbstract() {
		return nil, errors.Newf("encode: %s is abstract", r.Type)
	}

	out := make(map[string]any, len(shape.Fields)+1)
	if shape.Tag != nil {
		out[shape.Tag.Field] = shape.Tag.Value
	}
	for _, f := range shape.Fields {
		v, ok := r.Fields[f.Name]
		if !ok {
			if f.Type.Optional {
				continue
			}
			return nil, errors.Newf("encode %s: required field %s is missing", r.Type, f.Name)
		}
		enc, err := d.encodeValue(f.Type, v)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s.%s", r.Type, f.Name)
		}
		out[f.Name] = enc
	}
	return out, nil
}

func (d *Decoder) encodeValue(t dto.TypeRef, v any) (any, error) {
	switch t.Container {
	case dto.ContainerArray:
		items, ok := v.([]any)
		if !ok {
			return nil, errors.Newf("expected []any, got %T", v)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			enc, err := d.encodeLeaf(*t.Elem, item)
			if err != nil {
				return nil, err
			}
			out = append(out, enc)
		}
		return out, nil
	case dto.ContainerDictionary:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Newf("expected map[string]any, got %T", v)
		}
		out := make(map[string]any, len(m))
		for key, value := range m {
			enc, err := d.encodeLeaf(*t.Elem, value)
			if err != nil {
				return nil, err
			}
			out[key] = enc
		}
		return out, nil
	default:
		return d.encodeLeaf(t, v)
	}
}

func (d *Decoder) encodeLeaf(t dto.TypeRef, v any) (any, error) {
	switch t.Category {
	case dto.CategoryBlob:
		b, ok := v.([]byte)
		if !ok {
			return nil, errors.Newf("expected []byte, got %T", v)
		}
		return BlobToWire(b), nil
	case dto.CategoryTimestamp:
		ts, ok := v.(time.Time)
		if !ok {
			return nil, errors.Newf("expected time.Time, got %T", v)
		}
		return TimeToWire(ts), nil
	case dto.CategoryObject, dto.CategoryAbstract:
		r, ok := v.(*Record)
		if !ok {
			return nil, errors.Newf("expected *Record, got %T", v)
		}
		return d.Encode(r)
	default:
		return v, nil
	}
}
