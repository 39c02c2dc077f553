package writer

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Writer accumulates generated source with depth-based indentation
type Writer struct {
	sb           strings.Builder
	indentLevel  int
	indentString string
	linePrefix   string
	needsIndent  bool
}

// NewWriter creates a new code writer with specified indentation string
func NewWriter(indentString string) *Writer {
	return &Writer{
		indentString: indentString,
		needsIndent:  true,
	}
}

// IndentUnit returns the indentation for a style name ("tab" or "space") and width
func IndentUnit(style string, size int) (string, error) {
	switch style {
	case "", "tab":
		return "\t", nil
	case "space", "spaces":
		if size <= 0 {
			return "", errors.Newf("indent size must be positive, got %d", size)
		}
		return strings.Repeat(" ", size), nil
	default:
		return "", errors.Newf("unknown indent style: %s", style)
	}
}

// Indent increases the indentation level
func (w *Writer) Indent() {
	w.indentLevel++
	w.updatePrefix()
}

// Dedent decreases the indentation level
func (w *Writer) Dedent() {
	if w.indentLevel > 0 {
		w.indentLevel--
		w.updatePrefix()
	}
}

// SetLevel moves the writer to an absolute indentation level
func (w *Writer) SetLevel(level int) {
	if level < 0 {
		level = 0
	}
	w.indentLevel = level
	w.updatePrefix()
}

// Write writes a string without adding a newline
func (w *Writer) Write(s string) {
	if w.needsIndent && s != "" {
		w.sb.WriteString(w.linePrefix)
		w.needsIndent = false
	}
	w.sb.WriteString(s)
}

// Writef writes a formatted string without adding a newline
func (w *Writer) Writef(format string, args ...interface{}) {
	w.Write(fmt.Sprintf(format, args...))
}

// WriteLine writes a string and adds a newline
func (w *Writer) WriteLine(s string) {
	w.Write(s)
	w.Newline()
}

// WriteLinef writes a formatted string and adds a newline
func (w *Writer) WriteLinef(format string, args ...interface{}) {
	w.Writef(format, args...)
	w.Newline()
}

// WriteLineAt writes s on its own line, depth levels below the current level
func (w *Writer) WriteLineAt(depth int, s string) {
	base := w.indentLevel
	w.SetLevel(base + depth)
	w.WriteLine(s)
	w.SetLevel(base)
}

// Newline adds a newline character
func (w *Writer) Newline() {
	w.sb.WriteString("\n")
	w.needsIndent = true
}

// BlankLine adds an empty line
func (w *Writer) BlankLine() {
	if w.sb.Len() > 0 && !strings.HasSuffix(w.sb.String(), "\n\n") {
		w.Newline()
	}
}

// IndentLevel returns the current indentation level
func (w *Writer) IndentLevel() int {
	return w.indentLevel
}

// String returns the generated code as a string
func (w *Writer) String() string {
	return w.sb.String()
}

// Bytes returns the generated code as a byte slice
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}

// updatePrefix updates the line prefix based on current indentation
func (w *Writer) updatePrefix() {
	w.linePrefix = strings.Repeat(w.indentString, w.indentLevel)
}

// WriteBlock writes content inside a block with proper indentation
// Example: WriteBlock("extension Bool {", "}", func() { w.WriteLine("...") })
func (w *Writer) WriteBlock(opener, closer string, content func()) {
	w.WriteLine(opener)
	w.Indent()
	content()
	w.Dedent()
	w.WriteLine(closer)
}

// WriteComment writes a single-line comment
func (w *Writer) WriteComment(comment string) {
	if comment == "" {
		w.WriteLine("//")
		return
	}
	w.WriteLinef("// %s", comment)
}

// WriteDocComment writes a documentation comment block using /// markers
func (w *Writer) WriteDocComment(doc string) {
	if doc == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	for _, line := range lines {
		w.WriteLinef("/// %s", strings.TrimSpace(line))
	}
}
