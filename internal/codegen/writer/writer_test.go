package writer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_BasicWriting(t *testing.T) {
	// Test: Basic write operations
	w := NewWriter("\t")

	w.Write("hello")
	w.Write(" world")

	assert.Equal(t, "hello world", w.String())
}

func TestWriter_Indentation(t *testing.T) {
	// Test: Proper indentation handling
	w := NewWriter("\t")

	w.WriteLine("extension Bool {")
	w.Indent()
	w.WriteLine("func toJson() -> AnyObject {")
	w.Indent()
	w.WriteLine("return self")
	w.Dedent()
	w.WriteLine("}")
	w.Dedent()
	w.WriteLine("}")

	expected := "extension Bool {\n\tfunc toJson() -> AnyObject {\n\t\treturn self\n\t}\n}\n"
	assert.Equal(t, expected, w.String())
}

func TestWriter_WriteLineAt(t *testing.T) {
	// Test: WriteLineAt indents relative to the current level and restores it
	w := NewWriter("  ")

	w.Indent()
	w.WriteLineAt(0, "switch type {")
	w.WriteLineAt(0, `case "cat":`)
	w.WriteLineAt(1, "return Cat(json: json)")
	w.WriteLineAt(0, "}")

	assert.Equal(t, 1, w.IndentLevel())
	expected := "  switch type {\n  case \"cat\":\n    return Cat(json: json)\n  }\n"
	assert.Equal(t, expected, w.String())
}

func TestWriter_SetLevelBounds(t *testing.T) {
	// Test: SetLevel clamps at zero and Dedent never goes negative
	w := NewWriter("\t")

	w.SetLevel(-3)
	assert.Equal(t, 0, w.IndentLevel())
	w.Dedent()
	assert.Equal(t, 0, w.IndentLevel())

	w.SetLevel(2)
	w.WriteLine("x")
	assert.Equal(t, "\t\tx\n", w.String())
}

func TestWriter_BlankLine(t *testing.T) {
	// Test: BlankLine prevents multiple blank lines
	w := NewWriter("\t")

	w.WriteLine("line1")
	w.BlankLine()
	w.WriteLine("line2")
	w.BlankLine()
	w.BlankLine()
	w.WriteLine("line3")

	lines := strings.Split(w.String(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "line1", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "line2", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "line3", lines[4])
}

func TestWriter_BlankLineAtStart(t *testing.T) {
	// Test: BlankLine on an empty writer writes nothing
	w := NewWriter("\t")
	w.BlankLine()
	assert.Equal(t, "", w.String())
}

func TestWriter_WriteBlock(t *testing.T) {
	// Test: WriteBlock helper function
	w := NewWriter("\t")

	w.WriteBlock("protocol Marshalling {", "}", func() {
		w.WriteLine("func toJson() -> AnyObject")
	})

	expected := "protocol Marshalling {\n\tfunc toJson() -> AnyObject\n}\n"
	assert.Equal(t, expected, w.String())
}

func TestWriter_Comments(t *testing.T) {
	// Test: Line and doc comments
	w := NewWriter("\t")

	w.WriteComment("Code generated by dtogen. DO NOT EDIT.")
	w.WriteComment("")
	w.WriteDocComment("An animal\n  with a name")
	w.WriteDocComment("")

	expected := "// Code generated by dtogen. DO NOT EDIT.\n//\n/// An animal\n/// with a name\n"
	assert.Equal(t, expected, w.String())
}

func TestIndentUnit(t *testing.T) {
	tests := []struct {
		name    string
		style   string
		size    int
		want    string
		wantErr bool
	}{
		{name: "default", style: "", want: "\t"},
		{name: "tab", style: "tab", size: 8, want: "\t"},
		{name: "spaces", style: "space", size: 4, want: "    "},
		{name: "zero spaces", style: "space", size: 0, wantErr: true},
		{name: "unknown", style: "mixed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IndentUnit(tt.style, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
