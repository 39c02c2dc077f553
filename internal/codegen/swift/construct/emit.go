package construct

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/codegen/writer"
)

// Style controls the cosmetic layout of rendered files
type Style struct {
	// Indent is the string repeated once per nesting level
	Indent string
	// Header lines are written as line comments at the top of every file
	Header []string
}

// DefaultStyle indents with tabs and writes the generated-code marker
func DefaultStyle() Style {
	return Style{
		Indent: "\t",
		Header: []string{"Code generated by dtogen. DO NOT EDIT."},
	}
}

// Render serializes f. Nothing is returned unless the whole file renders.
func Render(f *File, style Style) ([]byte, error) {
	if f == nil {
		return nil, errors.Wrap(ErrContract, "render: nil file")
	}
	if style.Indent == "" {
		return nil, errors.New("render: empty indent string")
	}
	if strings.Trim(style.Indent, " \t") != "" {
		return nil, errors.Newf("render: indent %q must be whitespace", style.Indent)
	}

	w := writer.NewWriter(style.Indent)

	for _, line := range style.Header {
		w.WriteComment(line)
	}
	if len(style.Header) > 0 {
		w.WriteComment("")
		w.WriteComment(f.spec.Name + ".swift")
		w.BlankLine()
	}

	for _, imp := range f.spec.Imports {
		w.WriteLinef("import %s", imp)
	}
	if len(f.spec.Imports) > 0 {
		w.BlankLine()
	}

	first := true
	separate := func() {
		if !first {
			w.BlankLine()
		}
		first = false
	}

	for _, p := range f.spec.Protocols {
		separate()
		renderProtocol(w, p)
	}
	for _, e := range f.spec.Extensions {
		separate()
		renderExtension(w, e)
	}
	for _, m := range f.spec.Methods {
		separate()
		renderMethod(w, m)
	}

	if w.IndentLevel() != 0 {
		return nil, errors.AssertionFailedf("render %s: unbalanced indentation %d", f.spec.Name, w.IndentLevel())
	}
	return w.Bytes(), nil
}

// RenderMethod serializes a single method at depth zero
func RenderMethod(m *Method, indent string) string {
	w := writer.NewWriter(indent)
	renderMethod(w, m)
	return w.String()
}

func renderProtocol(w *writer.Writer, p *Protocol) {
	w.WriteDocComment(p.doc)
	w.WriteBlock("protocol "+p.name+" {", "}", func() {
		for _, m := range p.requirements {
			renderMethod(w, m)
		}
	})
}

func renderExtension(w *writer.Writer, e *Extension) {
	opener := "extension " + e.typeName
	if len(e.conformances) > 0 {
		opener += ": " + strings.Join(e.conformances, ", ")
	}
	w.WriteBlock(opener+" {", "}", func() {
		for i, m := range e.methods {
			if i > 0 {
				w.BlankLine()
			}
			renderMethod(w, m)
		}
	})
}

func renderMethod(w *writer.Writer, m *Method) {
	w.WriteDocComment(m.spec.Doc)
	if m.spec.Requirement {
		w.WriteLine(m.Header())
		return
	}
	w.WriteBlock(m.Header()+" {", "}", func() {
		for _, line := range m.spec.Body {
			w.WriteLineAt(line.Depth, line.Text)
		}
	})
}
