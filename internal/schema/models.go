package schema

// Schema is the root of a parsed .dto.graphql file
type Schema struct {
	Types     []ObjectType   `json:"types"`
	Abstracts []AbstractType `json:"abstracts"`
	Enums     []EnumType     `json:"enums"`
	Meta      Metadata       `json:"meta"`

	// order lists DTO names (types and abstracts) as they were declared
	order []string
}

// Metadata represents global metadata for the IDL file
type Metadata struct {
	Module  string `json:"module"`
	Version string `json:"version"`
}

// ObjectType represents a concrete DTO declared with "type"
type ObjectType struct {
	Name       string      `json:"name"`
	Doc        string      `json:"doc"`
	Fields     []Field     `json:"fields"`
	Implements []string    `json:"implements"`
	Directives []Directive `json:"directives"`
}

// AbstractType represents a polymorphic DTO declared with "abstract" or "interface"
type AbstractType struct {
	Name       string      `json:"name"`
	Doc        string      `json:"doc"`
	Fields     []Field     `json:"fields"`
	Directives []Directive `json:"directives"`
}

// Field represents a field inside a type or abstract type
type Field struct {
	Name string `json:"name"`
	// Type is the named type, or "[Elem]" for lists
	Type string `json:"type"`
	// Required is set for non-null fields
	Required bool `json:"required"`
	// ElemRequired is set for lists whose elements are non-null
	ElemRequired bool        `json:"elemRequired,omitempty"`
	Directives   []Directive `json:"directives"`
	Doc          string      `json:"doc"`
}

// EnumType represents an enum definition
type EnumType struct {
	Name   string      `json:"name"`
	Doc    string      `json:"doc"`
	Values []EnumValue `json:"values"`
}

// EnumValue represents a single value inside an enum
type EnumValue struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`
}

// Directive represents an attached directive (e.g. @discriminator)
type Directive struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
	Doc  string            `json:"doc"`
}

// findDirective looks up a directive by name
func findDirective(directives []Directive, name string) (Directive, bool) {
	for _, d := range directives {
		if d.Name == name {
			return d, true
		}
	}
	return Directive{}, false
}
