package layout

import (
	"fmt"

	"github.com/nrpt/gpupack/pkg/ir"
)

// PackedStruct is the packed-form layout of a schema Struct: its fields
// merged into word-sized PackedFields in declaration order.
type PackedStruct struct {
	Name          string // "<StructName>Packed"
	PackedFields  []*PackedField
	IsEnumVariant bool
}

// NewPackedStruct computes the packed layout of a struct by folding its
// fields through PackedField slots one at a time: a field either joins the
// currently open slot, or (if it doesn't fit) closes that slot and starts a
// fresh one with itself as the first member.
func NewPackedStruct(m *ir.Module, name string, fields []ir.Field) (*PackedStruct, error) {
	var packedFields []*PackedField

	current := NewPackedField()
	for _, f := range fields {
		result, err := current.Pack(m, f.Type, f.Name)
		if err != nil {
			return nil, fmt.Errorf("layout: packing struct %s field %s: %w", name, f.Name, err)
		}
		switch result {
		case SuccessAndClosed:
			packedFields = append(packedFields, current)
			current = NewPackedField()
		case FailAndClosed:
			packedFields = append(packedFields, current)
			current = NewPackedField()
			retry, err := current.Pack(m, f.Type, f.Name)
			if err != nil {
				return nil, fmt.Errorf("layout: packing struct %s field %s: %w", name, f.Name, err)
			}
			if retry == SuccessAndClosed {
				packedFields = append(packedFields, current)
				current = NewPackedField()
			}
		case SuccessAndOpen:
			// keep accumulating into current
		}
	}

	if !current.IsClosed() && !current.IsEmpty() {
		if err := current.Close(m); err != nil {
			return nil, fmt.Errorf("layout: closing final packed field of struct %s: %w", name, err)
		}
		packedFields = append(packedFields, current)
	}

	return &PackedStruct{
		Name:          name + "Packed",
		PackedFields:  packedFields,
		IsEnumVariant: m.IsEnumVariant(name),
	}, nil
}

// BaseOffset returns the byte offset at which the struct's packed fields
// begin: 4 when the struct is an enum-variant body (after the tag word),
// 0 otherwise.
func (p *PackedStruct) BaseOffset() int {
	if p.IsEnumVariant {
		return wordSize
	}
	return 0
}

// Size returns the total packed byte size of the struct: its base offset
// plus the sum of its packed fields' sizes.
func (p *PackedStruct) Size(m *ir.Module) (int, error) {
	total := p.BaseOffset()
	for _, pf := range p.PackedFields {
		size, err := pf.Size(m)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}
