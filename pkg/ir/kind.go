// Package ir defines the internal representation of a GPU schema module:
// scalar kinds, types, struct/enum definitions, and the module that ties
// them together by name.
package ir

import "fmt"

// ScalarKind is one of the built-in GPU scalar types.
type ScalarKind int

const (
	F32 ScalarKind = iota
	I32
	U32
	I16
	U16
	I8
	U8
)

// String returns the kind's schema-source spelling.
func (k ScalarKind) String() string {
	switch k {
	case F32:
		return "f32"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case I16:
		return "i16"
	case U16:
		return "u16"
	case I8:
		return "i8"
	case U8:
		return "u8"
	default:
		return fmt.Sprintf("ScalarKind(%d)", int(k))
	}
}

// Size returns the kind's size in bytes.
func (k ScalarKind) Size() int {
	switch k {
	case F32, I32, U32:
		return 4
	case I16, U16:
		return 2
	case I8, U8:
		return 1
	default:
		panic(fmt.Sprintf("ir: unknown scalar kind %d", int(k)))
	}
}

// IsWord reports whether the kind natively occupies a full 32-bit word.
func (k ScalarKind) IsWord() bool {
	return k == F32 || k == I32 || k == U32
}

// MSLTypeName returns the kind's Metal Shading Language spelling.
func (k ScalarKind) MSLTypeName() string {
	switch k {
	case F32:
		return "float"
	case I8:
		return "char"
	case I16:
		return "short"
	case I32:
		return "int"
	case U8:
		return "uchar"
	case U16:
		return "ushort"
	case U32:
		return "uint"
	default:
		panic(fmt.Sprintf("ir: unknown scalar kind %d", int(k)))
	}
}

// HLSLTypeName returns the kind's HLSL spelling. Sub-word scalars have no
// native HLSL type and are stored as plain uint.
func (k ScalarKind) HLSLTypeName() string {
	switch k {
	case F32:
		return "float"
	case I32:
		return "int"
	case U32:
		return "uint"
	default:
		return "uint"
	}
}

// ScalarKindFromName maps a schema scalar identifier to a ScalarKind.
func ScalarKindFromName(name string) (ScalarKind, bool) {
	switch name {
	case "f32":
		return F32, true
	case "i32":
		return I32, true
	case "u32":
		return U32, true
	case "i16":
		return I16, true
	case "u16":
		return U16, true
	case "i8":
		return I8, true
	case "u8":
		return U8, true
	default:
		return 0, false
	}
}
