package marshalling

import "github.com/okra-platform/dtogen/internal/dto"

// Native is the closed set of Swift types that get built-in marshalling support
type Native int

const (
	NativeBool Native = iota
	NativeString
	NativeInt
	NativeFloat
	NativeDouble
	NativeBlob
	NativeTimestamp
)

type nativeInfo struct {
	swift    string
	category dto.Category
}

var nativeTable = [...]nativeInfo{
	NativeBool:      {swift: "Bool", category: dto.CategoryBool},
	NativeString:    {swift: "String", category: dto.CategoryString},
	NativeInt:       {swift: "Int", category: dto.CategoryInt},
	NativeFloat:     {swift: "Float", category: dto.CategoryFloat},
	NativeDouble:    {swift: "Double", category: dto.CategoryDouble},
	NativeBlob:      {swift: "NSData", category: dto.CategoryBlob},
	NativeTimestamp: {swift: "NSDate", category: dto.CategoryTimestamp},
}

// Natives returns every native in emission order
func Natives() []Native {
	return []Native{NativeBool, NativeString, NativeInt, NativeFloat, NativeDouble, NativeBlob, NativeTimestamp}
}

// SwiftName returns the Swift type name
func (n Native) SwiftName() string {
	return nativeTable[n].swift
}

// Category returns the DTO category the native serves
func (n Native) Category() dto.Category {
	return nativeTable[n].category
}

// IsValue reports whether the native crosses the wire unchanged
func (n Native) IsValue() bool {
	return n.Category().IsValue()
}

// IsClass reports whether the native is a Foundation class, which needs a
// convenience initializer and its own array helper
func (n Native) IsClass() bool {
	return n == NativeBlob || n == NativeTimestamp
}

func (n Native) String() string {
	return n.SwiftName()
}

// NativeFor returns the native serving category c
func NativeFor(c dto.Category) (Native, bool) {
	for _, n := range Natives() {
		if n.Category() == c {
			return n, true
		}
	}
	return 0, false
}
