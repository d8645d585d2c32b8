package layout

import "github.com/nrpt/gpupack/pkg/ir"

// AlignPadding returns the padding, in bytes, needed to bring offset up to
// the next multiple of align.
func AlignPadding(offset, align int) int {
	return ir.AlignPadding(offset, align)
}

// DefSize returns the schema (unpacked) byte size of a definition's body.
func DefSize(def ir.Definition, m *ir.Module) (int, error) {
	return ir.DefSize(def, m)
}

// DefAlignment returns the alignment of a struct definition's body.
func DefAlignment(def ir.Definition, m *ir.Module) (int, error) {
	return ir.DefAlignment(def, m)
}

// EnumBodyWords returns the number of uint words an enum's tagged body
// array must declare, given the enum's total schema byte size (tag word
// included). This is a conservative upper bound, not an exact fit: a
// variant whose payload is an inline struct can embed alignment padding
// that this formula does not model, so the declared body array may be
// larger than any single variant strictly needs. Consumers must not assume
// every byte of the body array is meaningful for every variant.
func EnumBodyWords(totalSize int) int {
	return ((totalSize + 3) >> 2) - 1
}

// BuildPackedStructs computes the PackedStruct layout for every Struct
// definition in m, keyed by struct name.
func BuildPackedStructs(m *ir.Module) (map[string]*PackedStruct, error) {
	out := make(map[string]*PackedStruct)
	for _, def := range m.Defs {
		s, ok := def.(*ir.Struct)
		if !ok {
			continue
		}
		ps, err := NewPackedStruct(m, s.Name, s.Fields)
		if err != nil {
			return nil, err
		}
		out[s.Name] = ps
	}
	return out, nil
}
