// Package layout computes packed, GPU-friendly memory layouts for IR
// definitions: merging sub-word scalar fields into 32-bit slots and
// determining the byte offset and word size of every field and definition.
package layout

import (
	"fmt"
	"strings"

	"github.com/nrpt/gpupack/pkg/ir"
)

// wordSize is the width, in bytes, of the 32-bit slot that sub-word fields
// get packed into. Fields are eligible to share a slot only while their
// cumulative size stays at or under wordSize; a field whose own size
// already equals wordSize can never share a slot with a sibling.
const wordSize = 4

// StoredField is one schema field folded into a PackedField, along with the
// bit offset (from the LSB of the enclosing 32-bit slot) at which it
// starts. Offsets are assigned MSB-first: the first field stored in a slot
// ends up at the highest bit offset.
type StoredField struct {
	Name   string
	Type   ir.Type
	Offset int // bit offset within the enclosing slot
}

// PackResult reports what happened during a single PackedField.Pack call.
type PackResult int

const (
	// SuccessAndOpen means the field was folded in and the slot can still
	// accept more fields.
	SuccessAndOpen PackResult = iota
	// SuccessAndClosed means the field was folded in and the slot is now
	// full (this only happens for a lone field whose size exceeds the
	// slot, or for an inline struct, which always gets a slot to itself).
	SuccessAndClosed
	// FailAndClosed means the field did not fit; the slot was closed
	// without it and the caller must retry the field against a fresh slot.
	FailAndClosed
)

// PackedField accumulates one or more sub-word schema fields into a single
// 32-bit storage slot. Once Close is called the slot has a fixed Type
// describing its packed-form appearance (what the emitters declare as the
// slot's storage type) and can accept no further fields.
type PackedField struct {
	Name         string
	Type         ir.Type // nil until closed
	StoredFields []StoredField
	size         int // running byte total of fields folded in so far
}

// NewPackedField returns an empty, open PackedField.
func NewPackedField() *PackedField {
	return &PackedField{}
}

// IsEmpty reports whether no field has been folded in yet.
func (p *PackedField) IsEmpty() bool {
	return len(p.StoredFields) == 0
}

// IsClosed reports whether the slot has been closed.
func (p *PackedField) IsClosed() bool {
	return p.Type != nil
}

// Pack attempts to fold fieldType/fieldName into the slot.
func (p *PackedField) Pack(m *ir.Module, fieldType ir.Type, fieldName string) (PackResult, error) {
	if p.IsClosed() {
		return 0, fmt.Errorf("layout: cannot extend closed packed field")
	}

	fieldSize, err := ir.Size(fieldType, m)
	if err != nil {
		return 0, err
	}

	if fieldSize+p.size > wordSize || !ir.IsSmall(fieldType) {
		if p.IsEmpty() {
			p.StoredFields = append(p.StoredFields, StoredField{Name: fieldName, Type: fieldType, Offset: 0})
			if err := p.Close(m); err != nil {
				return 0, err
			}
			return SuccessAndClosed, nil
		}
		if err := p.Close(m); err != nil {
			return 0, err
		}
		return FailAndClosed, nil
	}

	p.size += fieldSize
	p.StoredFields = append(p.StoredFields, StoredField{
		Name:   fieldName,
		Type:   fieldType,
		Offset: 32 - p.size*8,
	})
	return SuccessAndOpen, nil
}

// Close fixes the slot's packed-form Type from its accumulated
// StoredFields, also assigning the slot's merged Name (the underscore-join
// of its member field names).
func (p *PackedField) Close(m *ir.Module) error {
	if p.IsClosed() {
		return fmt.Errorf("layout: cannot close an already-closed packed field")
	}
	if p.IsEmpty() {
		return fmt.Errorf("layout: cannot close an empty packed field")
	}

	names := make([]string, len(p.StoredFields))
	for i, sf := range p.StoredFields {
		names[i] = sf.Name
	}
	p.Name = strings.Join(names, "_")

	if len(p.StoredFields) == 1 {
		t, err := closedSingleType(p.StoredFields[0].Type)
		if err != nil {
			return err
		}
		p.Type = t
		return nil
	}

	for _, sf := range p.StoredFields {
		size, err := ir.Size(sf.Type, m)
		if err != nil {
			return err
		}
		if size == wordSize {
			return fmt.Errorf("layout: cannot pack multiple fields alongside a full-word-sized field")
		}
	}

	summed := 0
	for _, sf := range p.StoredFields {
		size, err := ir.Size(sf.Type, m)
		if err != nil {
			return err
		}
		summed += size
	}
	n := ir.SizeInUints(summed)
	switch n {
	case 0:
		return fmt.Errorf("layout: encountered packed field of size 0")
	case 1:
		p.Type = ir.Scalar{Kind: ir.U32}
	case 2, 3, 4:
		p.Type = ir.Vector{Kind: ir.U32, N: n}
	default:
		return fmt.Errorf("layout: packed fields require more than %d bytes to store", wordSize*4)
	}
	return nil
}

// closedSingleType computes the packed-form Type for a slot holding exactly
// one stored field. Full-word scalars/vectors keep their native type so the
// emitted field keeps its precision; everything else degrades to a plain
// uint (or uint vector) since the bit pattern is reinterpreted on read.
func closedSingleType(t ir.Type) (ir.Type, error) {
	switch v := t.(type) {
	case ir.Scalar:
		if v.Kind.IsWord() {
			return v, nil
		}
		return ir.Scalar{Kind: ir.U32}, nil
	case ir.Vector:
		if v.Kind.IsWord() {
			return v, nil
		}
		return ir.Vector{Kind: ir.U32, N: ir.SizeInUints(v.Kind.Size() * v.N)}, nil
	case ir.InlineStruct:
		return v, nil
	case ir.Ref:
		if _, ok := v.Inner.(ir.InlineStruct); ok {
			return v, nil
		}
		return ir.Scalar{Kind: ir.U32}, nil
	default:
		return nil, fmt.Errorf("layout: unknown type %T", t)
	}
}

// Size returns the byte size of the slot's packed-form type. Valid only
// once the slot is closed.
func (p *PackedField) Size(m *ir.Module) (int, error) {
	if !p.IsClosed() {
		return 0, fmt.Errorf("layout: cannot compute size of an open packed field")
	}
	return ir.Size(p.Type, m)
}
