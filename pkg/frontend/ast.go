// Package frontend parses .gpuschema source files into an AST and builds
// the ir.Module the layout and codegen packages consume. The front end
// carries no layout or codegen logic of its own.
package frontend

import "fmt"

// Position represents a position in source code.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
}

// Schema represents a complete parsed schema file.
type Schema struct {
	Position Position
	Version  string // optional "version" header, empty if absent
	Decls    []Decl // struct and enum declarations, in source order
	Structs  []*StructDecl
	Enums    []*EnumDecl
}

func (s *Schema) Pos() Position { return s.Position }

// Decl is the interface implemented by top-level declarations (StructDecl,
// EnumDecl). Schema.Decls preserves the order these appeared in source,
// which BuildModule relies on to keep ir.Module.Defs source-ordered even
// when structs and enums are interleaved.
type Decl interface {
	Node
	declNode()
}

// StructDecl is a named-fields struct declaration.
type StructDecl struct {
	Position Position
	Name     string
	Fields   []*FieldDecl
}

func (d *StructDecl) Pos() Position { return d.Position }
func (d *StructDecl) declNode()     {}

// FieldDecl is a single field within a StructDecl.
type FieldDecl struct {
	Position Position
	Name     string
	Type     TypeExpr
}

func (f *FieldDecl) Pos() Position { return f.Position }

// EnumDecl is a tagged union with unnamed-tuple variants.
type EnumDecl struct {
	Position Position
	Name     string
	Variants []*VariantDecl
}

func (d *EnumDecl) Pos() Position { return d.Position }
func (d *EnumDecl) declNode()     {}

// VariantDecl is one variant of an EnumDecl: a name plus zero or more
// positional payload types.
type VariantDecl struct {
	Position Position
	Name     string
	Payload  []TypeExpr
}

func (v *VariantDecl) Pos() Position { return v.Position }

// TypeExpr is the interface implemented by all parsed type expressions.
type TypeExpr interface {
	Node
	typeExprNode()
}

// ScalarTypeExpr names a built-in scalar (f32, i32, u32, i16, u16, i8, u8).
type ScalarTypeExpr struct {
	Position Position
	Name     string
}

func (t *ScalarTypeExpr) Pos() Position { return t.Position }
func (t *ScalarTypeExpr) typeExprNode() {}

// NamedTypeExpr is a bare identifier referring to another struct.
type NamedTypeExpr struct {
	Position Position
	Name     string
}

func (t *NamedTypeExpr) Pos() Position { return t.Position }
func (t *NamedTypeExpr) typeExprNode() {}

// ArrayTypeExpr is a fixed-length scalar array: [elem; size].
type ArrayTypeExpr struct {
	Position Position
	Elem     *ScalarTypeExpr
	Size     int
}

func (t *ArrayTypeExpr) Pos() Position { return t.Position }
func (t *ArrayTypeExpr) typeExprNode() {}

// RefTypeExpr is a generic Ref<T>.
type RefTypeExpr struct {
	Position Position
	Inner    TypeExpr
}

func (t *RefTypeExpr) Pos() Position { return t.Position }
func (t *RefTypeExpr) typeExprNode() {}

// scalarNames is the set of recognized bare scalar identifiers.
var scalarNames = map[string]bool{
	"f32": true, "i32": true, "u32": true,
	"i16": true, "u16": true,
	"i8": true, "u8": true,
}

// IsScalarName reports whether name is a recognized scalar type identifier.
func IsScalarName(name string) bool {
	return scalarNames[name]
}
