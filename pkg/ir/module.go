package ir

import "fmt"

// Field is a single named field of a Struct, in declared (load) order.
type Field struct {
	Name string
	Type Type
}

// Variant is one arm of a tagged union. At most one payload element is
// meaningfully used; when it is an InlineStruct, the enum body begins at
// offset 0 (it embeds the struct whose first word is the tag), otherwise
// the body begins at offset 4 (after the tag word).
type Variant struct {
	Name    string
	Payload []Type
}

// Definition is the interface implemented by Struct and Enum, the two kinds
// of named entity a Module can contain.
type Definition interface {
	defNode()
	DefName() string
}

// Struct is a named record type: fields in declared order.
type Struct struct {
	Name   string
	Fields []Field
}

func (*Struct) defNode()          {}
func (s *Struct) DefName() string { return s.Name }

// Enum is a named tagged union.
type Enum struct {
	Name     string
	Variants []Variant
}

func (*Enum) defNode()          {}
func (e *Enum) DefName() string { return e.Name }

// Module is an ordered list of Definitions plus the set of struct names
// that appear as the first payload type of some enum variant
// ("enum-variant struct names"). Membership in that set alters layout:
// such structs are emitted with a leading uint tag word.
type Module struct {
	Name         string
	Defs         []Definition
	EnumVariants map[string]bool
}

// NewModule returns an empty module with an initialized EnumVariants set.
func NewModule(name string) *Module {
	return &Module{
		Name:         name,
		EnumVariants: make(map[string]bool),
	}
}

// IsEnumVariant reports whether name is the struct backing some enum's
// first-payload variant.
func (m *Module) IsEnumVariant(name string) bool {
	return m.EnumVariants[name]
}

// ComputeEnumVariants scans every Enum in the module and records, in
// EnumVariants, the name of each variant's first-payload InlineStruct. Call
// this once after all Defs have been appended.
func (m *Module) ComputeEnumVariants() {
	for _, def := range m.Defs {
		en, ok := def.(*Enum)
		if !ok {
			continue
		}
		for _, v := range en.Variants {
			if len(v.Payload) == 0 {
				continue
			}
			if is, ok := v.Payload[0].(InlineStruct); ok {
				m.EnumVariants[is.Name] = true
			}
		}
	}
}

// ResolveByName looks up a Definition by name, failing if none matches.
func (m *Module) ResolveByName(name string) (Definition, error) {
	for _, def := range m.Defs {
		if def.DefName() == name {
			return def, nil
		}
	}
	return nil, fmt.Errorf("ir: could not find %q in module", name)
}

// AlignPadding returns the number of padding bytes needed to bring offset
// up to the next multiple of align. align must be a power of two.
func AlignPadding(offset, align int) int {
	return (-offset) & (align - 1)
}

// DefSize returns the byte size of the body of a Definition: the schema
// size, not the denser packed-form size (which C3/C5/C6 compute
// independently).
func DefSize(def Definition, m *Module) (int, error) {
	switch d := def.(type) {
	case *Struct:
		offset := 0
		if m.IsEnumVariant(d.Name) {
			offset = 4
		}
		for _, f := range d.Fields {
			align, err := Alignment(f.Type, m)
			if err != nil {
				return 0, err
			}
			offset += AlignPadding(offset, align)
			size, err := Size(f.Type, m)
			if err != nil {
				return 0, err
			}
			offset += size
		}
		return offset, nil
	case *Enum:
		maxOffset := 4
		for _, v := range d.Variants {
			offset := 4
			for i, t := range v.Payload {
				if i == 0 {
					if _, ok := t.(InlineStruct); ok {
						offset = 0
					}
				}
				size, err := Size(t, m)
				if err != nil {
					return 0, err
				}
				offset += size
			}
			if offset > maxOffset {
				maxOffset = offset
			}
		}
		return maxOffset, nil
	default:
		return 0, fmt.Errorf("ir: unknown definition %T", def)
	}
}

// DefAlignment returns the alignment of the body of a Definition. Alignment
// is never computed for enums (not defined, never queried).
func DefAlignment(def Definition, m *Module) (int, error) {
	s, ok := def.(*Struct)
	if !ok {
		return 0, fmt.Errorf("ir: alignment is not defined for %T", def)
	}
	align := 1
	if m.IsEnumVariant(s.Name) {
		align = 4
	}
	for _, f := range s.Fields {
		a, err := Alignment(f.Type, m)
		if err != nil {
			return 0, err
		}
		if a > align {
			align = a
		}
	}
	return align, nil
}
