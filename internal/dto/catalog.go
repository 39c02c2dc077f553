package dto

import (
	"sort"
)

// Catalog is a validated, cross-referenced set of DTO shapes
type Catalog struct {
	order  []string
	shapes map[string]Shape
}

// NewCatalog validates every shape and checks that all references between them resolve
func NewCatalog(shapes []Shape) (*Catalog, error) {
	c := &Catalog{
		order:  make([]string, 0, len(shapes)),
		shapes: make(map[string]Shape, len(shapes)),
	}

	for _, s := range shapes {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.shapes[s.Name]; exists {
			return nil, contractError(s.Name, "", "dto declared twice")
		}
		c.order = append(c.order, s.Name)
		c.shapes[s.Name] = s
	}

	for _, name := range c.order {
		s := c.shapes[name]
		for _, f := range s.Fields {
			leaf := f.Type.Leaf()
			if leaf.Category.IsNative() {
				continue
			}
			target, ok := c.shapes[leaf.Name]
			if !ok {
				return nil, contractError(s.Name, f.Name, "unknown dto %s", leaf.Name)
			}
			if target.IsAbstract() != (leaf.Category == CategoryAbstract) {
				return nil, contractError(s.Name, f.Name, "dto %s referenced as %s", leaf.Name, leaf.Category)
			}
		}

		if s.Polymorphism != nil {
			for _, sub := range s.Polymorphism.subtypes {
				target, ok := c.shapes[sub.Name]
				if !ok {
					return nil, contractError(s.Name, s.Polymorphism.field, "subtype %s is not declared", sub.Name)
				}
				if target.IsAbstract() {
					return nil, contractError(s.Name, s.Polymorphism.field, "subtype %s is itself abstract", sub.Name)
				}
			}
		}
	}

	return c, nil
}

// Lookup returns the shape named name
func (c *Catalog) Lookup(name string) (Shape, bool) {
	s, ok := c.shapes[name]
	return s, ok
}

// Shapes returns all shapes in declaration order
func (c *Catalog) Shapes() []Shape {
	out := make([]Shape, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.shapes[name])
	}
	return out
}

// Names returns the sorted DTO names
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.Strings(names)
	return names
}
