package dto

import "strings"

// Category is the closed set of shapes a DTO field type can take
type Category int

const (
	CategoryBool Category = iota + 1
	CategoryString
	CategoryInt
	CategoryFloat
	CategoryDouble
	CategoryBlob
	CategoryTimestamp
	CategoryObject
	CategoryAbstract
)

var categoryNames = map[Category]string{
	CategoryBool:      "bool",
	CategoryString:    "string",
	CategoryInt:       "int",
	CategoryFloat:     "float",
	CategoryDouble:    "double",
	CategoryBlob:      "blob",
	CategoryTimestamp: "timestamp",
	CategoryObject:    "object",
	CategoryAbstract:  "abstract",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// IsNative reports whether the category maps onto a native type of the target language
func (c Category) IsNative() bool {
	return c >= CategoryBool && c <= CategoryTimestamp
}

// IsValue reports whether values of the category pass through the wire unchanged
func (c Category) IsValue() bool {
	return c >= CategoryBool && c <= CategoryDouble
}

// Container describes how a TypeRef wraps its element
type Container int

const (
	ContainerNone Container = iota
	ContainerArray
	ContainerDictionary
)

// TypeRef is a named type plus its modifiers
type TypeRef struct {
	// Name is the schema name of the type (scalar or DTO name). Empty for containers.
	Name      string
	Category  Category
	Optional  bool
	Container Container
	Elem      *TypeRef
}

// Named returns a non-optional reference to a scalar or DTO type
func Named(name string, category Category) TypeRef {
	return TypeRef{Name: name, Category: category}
}

// ArrayOf returns an array reference wrapping elem
func ArrayOf(elem TypeRef) TypeRef {
	return TypeRef{Container: ContainerArray, Elem: &elem}
}

// DictionaryOf returns a string-keyed dictionary reference wrapping elem
func DictionaryOf(elem TypeRef) TypeRef {
	return TypeRef{Container: ContainerDictionary, Elem: &elem}
}

// AsOptional returns a copy of t marked optional
func (t TypeRef) AsOptional() TypeRef {
	t.Optional = true
	return t
}

// Leaf returns the innermost element type
func (t TypeRef) Leaf() TypeRef {
	for t.Container != ContainerNone && t.Elem != nil {
		t = *t.Elem
	}
	return t
}

// String renders the reference in schema notation, e.g. [Animal]! or Map_Int
func (t TypeRef) String() string {
	var sb strings.Builder
	switch t.Container {
	case ContainerArray:
		sb.WriteString("[" + t.Elem.String() + "]")
	case ContainerDictionary:
		sb.WriteString("{String: " + t.Elem.String() + "}")
	default:
		sb.WriteString(t.Name)
	}
	if !t.Optional {
		sb.WriteString("!")
	}
	return sb.String()
}

// Field is a single named, typed member of a DTO
type Field struct {
	Name string
	Type TypeRef
	Doc  string
}

// Subtype registers a concrete DTO under a discriminator value
type Subtype struct {
	Value string
	Name  string
}

// Polymorphism is the dispatch metadata of an abstract DTO
type Polymorphism struct {
	field    string
	subtypes []Subtype
}

// Field returns the name of the discriminator field
func (p *Polymorphism) Field() string {
	return p.field
}

// Subtypes returns the registered subtypes in declaration order
func (p *Polymorphism) Subtypes() []Subtype {
	out := make([]Subtype, len(p.subtypes))
	copy(out, p.subtypes)
	return out
}

// Lookup returns the subtype registered under value
func (p *Polymorphism) Lookup(value string) (string, bool) {
	for _, s := range p.subtypes {
		if s.Value == value {
			return s.Name, true
		}
	}
	return "", false
}

// Tag marks a concrete DTO as a registered subtype of an abstract DTO
type Tag struct {
	Base  string
	Field string
	Value string
}

// Shape is the resolved metadata of one DTO
type Shape struct {
	Name         string
	Doc          string
	Fields       []Field
	Polymorphism *Polymorphism
	Tag          *Tag
}

// IsAbstract reports whether the DTO dispatches on a discriminator
func (s Shape) IsAbstract() bool {
	return s.Polymorphism != nil
}

// Field returns the field named name
func (s Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Source yields resolved DTO shapes
type Source interface {
	Shapes() ([]Shape, error)
}
