package ir

import "fmt"

// Type is the interface implemented by all four GPU type variants: Scalar,
// Vector, InlineStruct, and Ref. The set of variants is closed; every
// emission site switches over it exhaustively rather than relying on
// inheritance.
type Type interface {
	typeNode()
	fmt.Stringer
}

// Scalar is a single value of the given scalar kind.
type Scalar struct {
	Kind ScalarKind
}

func (Scalar) typeNode()        {}
func (s Scalar) String() string { return s.Kind.String() }

// Vector is N logical components of the given scalar kind.
type Vector struct {
	Kind ScalarKind
	N    int
}

func (Vector) typeNode() {}
func (v Vector) String() string {
	return fmt.Sprintf("[%s; %d]", v.Kind, v.N)
}

// InlineStruct refers to another schema struct by name, embedded inline.
type InlineStruct struct {
	Name string
}

func (InlineStruct) typeNode()        {}
func (s InlineStruct) String() string { return s.Name }

// Ref is a 4-byte offset into the target buffer, pointing at Inner. When
// Inner is an InlineStruct the reference is typed (NameRef); otherwise it
// degrades to a raw uint offset.
type Ref struct {
	Inner Type
}

func (Ref) typeNode()        {}
func (r Ref) String() string { return fmt.Sprintf("Ref<%s>", r.Inner) }

// IsSmall reports whether t is Scalar, Vector, or Ref. InlineStruct is the
// only non-small variant: it occupies multiple words intact and is never
// folded into a packed slot with siblings.
func IsSmall(t Type) bool {
	_, ok := t.(InlineStruct)
	return !ok
}

// Size returns the byte size of t.
func Size(t Type, m *Module) (int, error) {
	switch v := t.(type) {
	case Scalar:
		return v.Kind.Size(), nil
	case Vector:
		return v.Kind.Size() * v.N, nil
	case InlineStruct:
		def, err := m.ResolveByName(v.Name)
		if err != nil {
			return 0, err
		}
		return DefSize(def, m)
	case Ref:
		return 4, nil
	default:
		return 0, fmt.Errorf("ir: unknown type %T", t)
	}
}

// Alignment returns the alignment of t, in bytes. Alignment is never
// queried for Enum definitions.
func Alignment(t Type, m *Module) (int, error) {
	switch v := t.(type) {
	case Scalar:
		return v.Kind.Size(), nil
	case Vector:
		return v.Kind.Size() * v.N, nil
	case InlineStruct:
		def, err := m.ResolveByName(v.Name)
		if err != nil {
			return 0, err
		}
		return DefAlignment(def, m)
	case Ref:
		return 4, nil
	default:
		return 0, fmt.Errorf("ir: unknown type %T", t)
	}
}

// MSLTypeName returns the type's Metal Shading Language spelling.
func MSLTypeName(t Type) string {
	switch v := t.(type) {
	case Scalar:
		return v.Kind.MSLTypeName()
	case Vector:
		if v.N == 1 {
			return v.Kind.MSLTypeName()
		}
		return fmt.Sprintf("%s%d", v.Kind.MSLTypeName(), v.N)
	case InlineStruct:
		return v.Name + "Packed"
	case Ref:
		if inner, ok := v.Inner.(InlineStruct); ok {
			return inner.Name + "Ref"
		}
		return "uint"
	default:
		panic(fmt.Sprintf("ir: unknown type %T", t))
	}
}

// SizeInUints returns the number of 32-bit words needed to hold numBytes.
func SizeInUints(numBytes int) int {
	return (numBytes + 3) / 4
}

// HLSLTypeName returns the type's HLSL spelling.
func HLSLTypeName(t Type) string {
	switch v := t.(type) {
	case Scalar:
		return v.Kind.HLSLTypeName()
	case Vector:
		if v.N == 1 {
			return v.Kind.HLSLTypeName()
		}
		if v.Kind.IsWord() {
			return fmt.Sprintf("%s%d", v.Kind.HLSLTypeName(), v.N)
		}
		n := SizeInUints(v.Kind.Size() * v.N)
		if n == 1 {
			return "uint"
		}
		return fmt.Sprintf("uint%d", n)
	case InlineStruct:
		return v.Name
	case Ref:
		if inner, ok := v.Inner.(InlineStruct); ok {
			return inner.Name + "Ref"
		}
		return "uint"
	default:
		panic(fmt.Sprintf("ir: unknown type %T", t))
	}
}
