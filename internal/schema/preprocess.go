package schema

import (
	"regexp"
)

// dtogenDirectiveRegex matches @dtogen(...) at the start of a line.
// Nested parentheses one level deep are allowed inside the arguments.
var dtogenDirectiveRegex = regexp.MustCompile(`(?m)^@dtogen\s*\(((?:[^()]*|\([^)]*\))*)\)`)

// abstractStartRegex matches abstract DTO declarations at the start of a line.
var abstractStartRegex = regexp.MustCompile(`(?m)^abstract\s+(\w+)`)

// PreprocessGraphQL rewrites `@dtogen(...)` and `abstract` declarations into valid GraphQL.
func PreprocessGraphQL(input string) string {
	// 1. Rewrite @dtogen(...) to a _Schema type; the field needs a type to be valid GraphQL
	input = dtogenDirectiveRegex.ReplaceAllStringFunc(input, func(match string) string {
		args := dtogenDirectiveRegex.FindStringSubmatch(match)[1]
		return `type _Schema {
  _: String @dtogen(` + args + `)
}`
	})

	// 2. Rewrite abstract X to interface X
	input = abstractStartRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := abstractStartRegex.FindStringSubmatch(match)[1]
		return `interface ` + name
	})

	return input
}
