package construct

import "fmt"

// Line is one body statement with its nesting depth relative to the enclosing method body
type Line struct {
	Depth int
	Text  string
}

// Code assembles body lines while tracking brace depth
type Code struct {
	depth int
	lines []Line
}

// NewCode returns an empty body builder
func NewCode() *Code {
	return &Code{}
}

// Add appends a formatted statement at the current depth
func (c *Code) Add(format string, args ...interface{}) *Code {
	c.lines = append(c.lines, Line{Depth: c.depth, Text: fmt.Sprintf(format, args...)})
	return c
}

// Open appends a statement that opens a block and nests following statements
func (c *Code) Open(format string, args ...interface{}) *Code {
	c.Add(format, args...)
	c.depth++
	return c
}

// Close leaves the current block and appends its closing statement
func (c *Code) Close(text string) *Code {
	if c.depth > 0 {
		c.depth--
	}
	c.lines = append(c.lines, Line{Depth: c.depth, Text: text})
	return c
}

// Reopen closes the current block and opens a sibling, as in `} else {`
func (c *Code) Reopen(format string, args ...interface{}) *Code {
	if c.depth > 0 {
		c.depth--
	}
	return c.Open(format, args...)
}

// Guard appends a guard statement whose else branch returns nil
func (c *Code) Guard(format string, args ...interface{}) *Code {
	return c.Open("guard %s else {", fmt.Sprintf(format, args...)).
		Add("return nil").
		Close("}")
}

// Case appends a switch case label followed by its nested statements
func (c *Code) Case(label string, body ...string) *Code {
	c.Add("%s", label)
	c.depth++
	for _, stmt := range body {
		c.Add("%s", stmt)
	}
	c.depth--
	return c
}

// Depth returns the current nesting depth
func (c *Code) Depth() int {
	return c.depth
}

// Lines returns a copy of the assembled lines
func (c *Code) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Statements wraps flat statements as depth-zero lines
func Statements(stmts ...string) []Line {
	out := make([]Line, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, Line{Text: s})
	}
	return out
}
