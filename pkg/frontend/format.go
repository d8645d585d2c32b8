package frontend

import (
	"fmt"
	"io"
	"strings"
)

// Writer writes a Schema back to canonical .gpuschema source.
type Writer struct {
	indent string
}

// NewWriter creates a new schema writer using two-space indentation.
func NewWriter() *Writer {
	return &Writer{indent: "  "}
}

// SetIndent overrides the indentation string.
func (w *Writer) SetIndent(indent string) {
	w.indent = indent
}

// WriteSchema writes schema to out in canonical form.
func (w *Writer) WriteSchema(out io.Writer, schema *Schema) error {
	if schema.Version != "" {
		fmt.Fprintf(out, "version %q;\n\n", schema.Version)
	}

	decls := schema.decls()
	for i, decl := range decls {
		switch d := decl.(type) {
		case *StructDecl:
			w.writeStruct(out, d)
		case *EnumDecl:
			w.writeEnum(out, d)
		}
		if i < len(decls)-1 {
			fmt.Fprintln(out)
		}
	}

	return nil
}

func (w *Writer) writeStruct(out io.Writer, s *StructDecl) {
	fmt.Fprintf(out, "struct %s {\n", s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(out, "%s%s: %s,\n", w.indent, f.Name, typeExprString(f.Type))
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeEnum(out io.Writer, e *EnumDecl) {
	fmt.Fprintf(out, "enum %s {\n", e.Name)
	for _, v := range e.Variants {
		if len(v.Payload) == 0 {
			fmt.Fprintf(out, "%s%s,\n", w.indent, v.Name)
			continue
		}
		parts := make([]string, len(v.Payload))
		for i, p := range v.Payload {
			parts[i] = typeExprString(p)
		}
		fmt.Fprintf(out, "%s%s(%s),\n", w.indent, v.Name, strings.Join(parts, ", "))
	}
	fmt.Fprintln(out, "}")
}

func typeExprString(t TypeExpr) string {
	switch v := t.(type) {
	case *ScalarTypeExpr:
		return v.Name
	case *NamedTypeExpr:
		return v.Name
	case *ArrayTypeExpr:
		return fmt.Sprintf("[%s; %d]", v.Elem.Name, v.Size)
	case *RefTypeExpr:
		return fmt.Sprintf("Ref<%s>", typeExprString(v.Inner))
	default:
		return fmt.Sprintf("<unknown %T>", t)
	}
}

// FormatSchema returns the canonical textual form of schema.
func FormatSchema(schema *Schema) string {
	var sb strings.Builder
	w := NewWriter()
	_ = w.WriteSchema(&sb, schema) // strings.Builder never errors
	return sb.String()
}
