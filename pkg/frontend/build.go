package frontend

import (
	"fmt"

	"github.com/nrpt/gpupack/pkg/ir"
)

// BuildModule converts a parsed Schema into an ir.Module, resolving type
// expressions into ir.Type values. It does not check that named references
// resolve to a real definition; that happens lazily, the first time layout
// or codegen queries a Size/Alignment through ir.Module.ResolveByName.
func BuildModule(name string, schema *Schema) (*ir.Module, error) {
	m := ir.NewModule(name)

	for _, decl := range schema.decls() {
		switch d := decl.(type) {
		case *StructDecl:
			fields := make([]ir.Field, 0, len(d.Fields))
			for _, f := range d.Fields {
				t, err := convertType(f.Type)
				if err != nil {
					return nil, fmt.Errorf("struct %s, field %s: %w", d.Name, f.Name, err)
				}
				fields = append(fields, ir.Field{Name: f.Name, Type: t})
			}
			m.Defs = append(m.Defs, &ir.Struct{Name: d.Name, Fields: fields})

		case *EnumDecl:
			variants := make([]ir.Variant, 0, len(d.Variants))
			for _, v := range d.Variants {
				payload := make([]ir.Type, 0, len(v.Payload))
				for _, p := range v.Payload {
					t, err := convertType(p)
					if err != nil {
						return nil, fmt.Errorf("enum %s, variant %s: %w", d.Name, v.Name, err)
					}
					payload = append(payload, t)
				}
				variants = append(variants, ir.Variant{Name: v.Name, Payload: payload})
			}
			m.Defs = append(m.Defs, &ir.Enum{Name: d.Name, Variants: variants})

		default:
			return nil, fmt.Errorf("frontend: unknown declaration %T", decl)
		}
	}

	m.ComputeEnumVariants()

	if err := checkDuplicateNames(m); err != nil {
		return nil, err
	}

	return m, nil
}

// decls returns the schema's declarations in source order. Schemas built by
// the parser always populate Decls directly; this falls back to
// struct-then-enum order for hand-built Schema values (as in tests) that
// only set Structs/Enums.
func (s *Schema) decls() []Decl {
	if len(s.Decls) > 0 {
		return s.Decls
	}
	out := make([]Decl, 0, len(s.Structs)+len(s.Enums))
	for _, d := range s.Structs {
		out = append(out, d)
	}
	for _, d := range s.Enums {
		out = append(out, d)
	}
	return out
}

func convertType(t TypeExpr) (ir.Type, error) {
	switch v := t.(type) {
	case *ScalarTypeExpr:
		kind, ok := ir.ScalarKindFromName(v.Name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown scalar type %q", v.Position, v.Name)
		}
		return ir.Scalar{Kind: kind}, nil

	case *ArrayTypeExpr:
		kind, ok := ir.ScalarKindFromName(v.Elem.Name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown scalar type %q", v.Elem.Position, v.Elem.Name)
		}
		if v.Size <= 0 {
			return nil, fmt.Errorf("%s: array size must be positive, got %d", v.Position, v.Size)
		}
		return ir.Vector{Kind: kind, N: v.Size}, nil

	case *NamedTypeExpr:
		return ir.InlineStruct{Name: v.Name}, nil

	case *RefTypeExpr:
		inner, err := convertType(v.Inner)
		if err != nil {
			return nil, err
		}
		return ir.Ref{Inner: inner}, nil

	default:
		return nil, fmt.Errorf("frontend: unknown type expression %T", t)
	}
}

func checkDuplicateNames(m *ir.Module) error {
	seen := make(map[string]bool)
	for _, def := range m.Defs {
		if seen[def.DefName()] {
			return fmt.Errorf("frontend: duplicate definition name %q", def.DefName())
		}
		seen[def.DefName()] = true
	}
	return nil
}
