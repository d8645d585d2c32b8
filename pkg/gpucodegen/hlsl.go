package gpucodegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/nrpt/gpupack/pkg/ir"
	"github.com/nrpt/gpupack/pkg/layout"
)

// hlslGenerator emits HLSL struct declarations and ByteAddressBuffer
// accessors. Each schema struct produces two HLSL types: a "Packed" form
// matching the buffer's on-disk slot layout, and a logical form with the
// schema's own field types, plus an unpack function bridging the two. Each
// enum produces a tagged struct with a conservatively-sized uint body, a
// tag accessor, and a parameterized bulk-copy function that moves one
// instance between buffers without interpreting its payload.
type hlslGenerator struct{}

// NewHLSLGenerator returns a Generator that emits HLSL.
func NewHLSLGenerator() Generator {
	return hlslGenerator{}
}

func init() {
	Register(NewHLSLGenerator())
}

func (hlslGenerator) Dialect() Dialect      { return DialectHLSL }
func (hlslGenerator) FileExtension() string { return "hlsl" }

func (g hlslGenerator) Generate(w io.Writer, m *ir.Module, opts Options) error {
	fmt.Fprint(w, hlslValueExtractor(8))
	fmt.Fprint(w, hlslValueExtractor(16))

	for _, def := range m.Defs {
		switch def.(type) {
		case *ir.Struct:
			fmt.Fprintf(w, "typedef uint %sRef;\n", def.DefName())
			fmt.Fprintf(w, "typedef uint %sPackedRef;\n", def.DefName())
		case *ir.Enum:
			fmt.Fprintf(w, "typedef uint %sRef;\n", def.DefName())
		}
	}
	fmt.Fprintln(w)

	packedStructs, err := layout.BuildPackedStructs(m)
	if err != nil {
		return err
	}

	for _, def := range m.Defs {
		var err error
		switch d := def.(type) {
		case *ir.Struct:
			err = g.generateStruct(w, m, d, packedStructs[d.Name])
		case *ir.Enum:
			err = g.generateEnum(w, m, d, opts)
		}
		if err != nil {
			return err
		}
	}

	for _, def := range m.Defs {
		if m.IsEnumVariant(def.DefName()) {
			continue
		}
		size, err := layout.DefSize(def, m)
		if err != nil {
			return &GeneratorError{DefName: def.DefName(), Message: err.Error()}
		}
		fmt.Fprintf(w, "#define %s_SIZE %d\n", ToUpperSnakeCase(def.DefName()), size)
	}
	for _, def := range m.Defs {
		e, ok := def.(*ir.Enum)
		if !ok {
			continue
		}
		tag := opts.TagBase
		for _, v := range e.Variants {
			fmt.Fprintf(w, "#define %s_%s %d\n", e.Name, v.Name, tag)
			tag++
		}
	}

	return nil
}

// hlslValueExtractor emits a sub-word bit-field extractor for the given bit
// width (8 or 16), used to read packed fields back out of a shared uint
// slot.
func hlslValueExtractor(sizeInBits int) string {
	mask := (1 << uint(sizeInBits)) - 1
	var sb strings.Builder
	fmt.Fprintf(&sb, "inline uint extract_%dbit_value(uint bit_shift, uint package) {\n", sizeInBits)
	fmt.Fprintf(&sb, "    uint mask = %d;\n", mask)
	sb.WriteString("    uint result = (package >> bit_shift) & mask;\n\n    return result;\n}\n\n")
	return sb.String()
}

func (g hlslGenerator) generateStruct(w io.Writer, m *ir.Module, s *ir.Struct, ps *layout.PackedStruct) error {
	if err := writePackedStructDef(w, ps); err != nil {
		return err
	}
	if err := writePackedStructFunctions(w, m, ps); err != nil {
		return err
	}

	fmt.Fprintf(w, "struct %s {\n", s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(w, "    %s %s;\n", ir.HLSLTypeName(f.Type), f.Name)
	}
	fmt.Fprintf(w, "};\n\n")

	if err := writeLogicalUnpacker(w, s, ps); err != nil {
		return err
	}
	return nil
}

func writePackedStructDef(w io.Writer, ps *layout.PackedStruct) error {
	fmt.Fprintf(w, "struct %s {\n", ps.Name)
	if ps.IsEnumVariant {
		fmt.Fprintf(w, "    uint tag;\n")
	}
	for _, pf := range ps.PackedFields {
		if is, ok := pf.Type.(ir.InlineStruct); ok {
			fmt.Fprintf(w, "    %sPacked %s;\n", is.Name, pf.Name)
		} else {
			fmt.Fprintf(w, "    %s %s;\n", ir.HLSLTypeName(pf.Type), pf.Name)
		}
	}
	fmt.Fprintf(w, "};\n\n")
	return nil
}

func writePackedStructFunctions(w io.Writer, m *ir.Module, ps *layout.PackedStruct) error {
	refType := ps.Name + "Ref"

	fmt.Fprintf(w, "inline %s %s_read(ByteAddressBuffer buf, %s ref) {\n", ps.Name, ps.Name, refType)
	fmt.Fprintf(w, "    %s result;\n\n", ps.Name)

	var accessors []string
	var unpackers []string

	offset := ps.BaseOffset()
	for _, pf := range ps.PackedFields {
		reader, err := hlslPackedFieldReader(pf, offset)
		if err != nil {
			return &GeneratorError{DefName: ps.Name, Message: err.Error()}
		}
		accessor := hlslPackedFieldAccessor(ps.Name, refType, pf, reader)
		accessors = append(accessors, accessor)
		unpackers = append(unpackers, hlslPackedFieldUnpackers(ps.Name, pf))

		fmt.Fprint(w, reader)
		fmt.Fprintf(w, "    result.%s = %s;\n\n", pf.Name, pf.Name)

		size, err := pf.Size(m)
		if err != nil {
			return &GeneratorError{DefName: ps.Name, Message: err.Error()}
		}
		offset += size
	}

	fmt.Fprintf(w, "    return result;\n}\n\n")

	for _, a := range accessors {
		fmt.Fprint(w, a)
	}
	for _, u := range unpackers {
		fmt.Fprint(w, u)
	}
	return nil
}

func hlslPackedFieldReader(pf *layout.PackedField, offset int) (string, error) {
	name := pf.Name
	refExpr := simplifiedAdd("ref", offset)

	switch t := pf.Type.(type) {
	case ir.Scalar:
		return fmt.Sprintf("    %s %s = buf.Load(%s);\n", ir.HLSLTypeName(t), name, refExpr), nil
	case ir.Vector:
		if t.N == 0 {
			return "", fmt.Errorf("vector of size 0 is not well defined")
		}
		if t.N == 1 {
			return fmt.Sprintf("    %s %s = buf.Load(%s);\n", ir.HLSLTypeName(t), name, refExpr), nil
		}
		return fmt.Sprintf("    %s %s = buf.Load%d(%s);\n", ir.HLSLTypeName(t), name, t.N, refExpr), nil
	case ir.InlineStruct:
		return fmt.Sprintf("    %sPacked %s = %sPacked_read(buf, %s);\n", t.Name, name, t.Name, refExpr), nil
	case ir.Ref:
		if inner, ok := t.Inner.(ir.InlineStruct); ok {
			return fmt.Sprintf("    %sRef %s = buf.Load(%s);\n", inner.Name, name, refExpr), nil
		}
		return fmt.Sprintf("    uint %s = buf.Load(%s);\n", name, refExpr), nil
	default:
		return "", fmt.Errorf("unknown packed field type %T", t)
	}
}

func hlslPackedFieldAccessor(structName, refType string, pf *layout.PackedField, reader string) string {
	var sb strings.Builder
	typeName := ir.HLSLTypeName(pf.Type)
	if is, ok := pf.Type.(ir.InlineStruct); ok {
		typeName = is.Name + "Packed"
	}
	fmt.Fprintf(&sb, "inline %s %s_%s(ByteAddressBuffer buf, %s ref) {\n", typeName, structName, pf.Name, refType)
	sb.WriteString(reader)
	fmt.Fprintf(&sb, "    return %s;\n}\n\n", pf.Name)
	return sb.String()
}

// hlslPackedFieldUnpackers emits one extractor-based unpack function per
// sub-word stored field in pf. A stored field whose own declared type
// already occupies a full word needs no bit extraction: it was never split
// across the slot, so the caller reads it straight off the packed struct.
func hlslPackedFieldUnpackers(structName string, pf *layout.PackedField) string {
	var sb strings.Builder
	for _, sf := range pf.StoredFields {
		sb.WriteString(hlslStoredFieldUnpacker(structName, pf.Name, sf))
	}
	return sb.String()
}

func hlslStoredFieldUnpacker(structName, packedFieldName string, sf layout.StoredField) string {
	switch t := sf.Type.(type) {
	case ir.Scalar:
		if t.Kind.IsWord() {
			return ""
		}
		sizeInBits := 8 * t.Kind.Size()
		var sb strings.Builder
		fmt.Fprintf(&sb, "inline uint %s_unpack_%s(uint %s) {\n    uint result;\n\n", structName, sf.Name, packedFieldName)
		fmt.Fprintf(&sb, "    result = extract_%dbit_value(%d, %s);\n", sizeInBits, sf.Offset, packedFieldName)
		sb.WriteString("    return result;\n}\n\n")
		return sb.String()
	case ir.Vector:
		if t.Kind.IsWord() {
			return ""
		}
		scalarBits := 8 * t.Kind.Size()
		sizeInUints := ir.SizeInUints(t.Kind.Size() * t.N)
		paramType := fmt.Sprintf("uint%d", sizeInUints)
		if sizeInUints == 1 {
			paramType = "uint"
		}
		returnType := fmt.Sprintf("uint%d", t.N)
		if t.N == 1 {
			returnType = "uint"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "inline %s %s_unpack_%s(%s %s) {\n    %s result;\n\n",
			returnType, structName, sf.Name, paramType, packedFieldName, returnType)
		for i := 0; i < t.N; i++ {
			lhs := fmt.Sprintf("result[%d]", i)
			if t.N == 1 {
				lhs = "result"
			}
			fmt.Fprintf(&sb, "    %s = extract_%dbit_value(%d, %s);\n",
				lhs, scalarBits, 32-(i+1)*scalarBits, packedFieldName)
		}
		sb.WriteString("    return result;\n}\n\n")
		return sb.String()
	default:
		return ""
	}
}

func writeLogicalUnpacker(w io.Writer, s *ir.Struct, ps *layout.PackedStruct) error {
	fmt.Fprintf(w, "inline %s %s_unpack(%s packed_form) {\n", s.Name, ps.Name, ps.Name)
	fmt.Fprintf(w, "    %s result;\n\n", s.Name)

	for _, f := range s.Fields {
		pf := findOwningPackedField(ps, f.Name)
		if pf == nil {
			return &GeneratorError{DefName: s.Name, Message: fmt.Sprintf("no packed field stores %s", f.Name)}
		}
		if is, ok := f.Type.(ir.InlineStruct); ok {
			fmt.Fprintf(w, "    result.%s = %sPacked_unpack(packed_form.%s);\n", f.Name, is.Name, pf.Name)
			continue
		}
		if owningStoredFieldIsWord(pf, f.Name) {
			fmt.Fprintf(w, "    result.%s = packed_form.%s;\n", f.Name, pf.Name)
			continue
		}
		fmt.Fprintf(w, "    result.%s = %s_unpack_%s(packed_form.%s);\n", f.Name, ps.Name, f.Name, pf.Name)
	}

	fmt.Fprintf(w, "\n    return result;\n}\n\n")
	return nil
}

func findOwningPackedField(ps *layout.PackedStruct, fieldName string) *layout.PackedField {
	for _, pf := range ps.PackedFields {
		for _, sf := range pf.StoredFields {
			if sf.Name == fieldName {
				return pf
			}
		}
	}
	return nil
}

func owningStoredFieldIsWord(pf *layout.PackedField, fieldName string) bool {
	for _, sf := range pf.StoredFields {
		if sf.Name != fieldName {
			continue
		}
		switch t := sf.Type.(type) {
		case ir.Scalar:
			return t.Kind.IsWord()
		case ir.Vector:
			return t.Kind.IsWord()
		case ir.Ref:
			return true
		default:
			return false
		}
	}
	return false
}

func (g hlslGenerator) generateEnum(w io.Writer, m *ir.Module, e *ir.Enum, opts Options) error {
	size, err := layout.DefSize(e, m)
	if err != nil {
		return &GeneratorError{DefName: e.Name, Message: err.Error()}
	}
	bodyWords := layout.EnumBodyWords(size)
	refType := e.Name + "Ref"

	fmt.Fprintf(w, "struct %s {\n", e.Name)
	fmt.Fprintf(w, "    uint tag;\n")
	fmt.Fprintf(w, "    uint body[%d];\n", bodyWords)
	fmt.Fprintf(w, "};\n\n")

	fmt.Fprintf(w, "inline uint %s_tag(ByteAddressBuffer buf, %s ref) {\n", e.Name, refType)
	fmt.Fprintf(w, "    uint result = buf.Load(ref);\n    return result;\n}\n\n")

	fmt.Fprint(w, hlslBulkCopyFunction(e.Name, size))
	return nil
}

// hlslBulkCopyFunction emits a copy routine that moves size bytes of an
// enum instance from a source buffer to a destination buffer 16 bytes
// (uint4) at a time, with a tail load/store for whatever doesn't divide
// evenly. The routine name is parameterized per enum rather than hardcoded,
// since a module can declare more than one enum.
func hlslBulkCopyFunction(enumName string, size int) string {
	const wordSize = 4
	const groupBytes = 4 * wordSize // one uint4

	totalWords := (size + wordSize - 1) / wordSize
	quotient := totalWords / 4
	remainderWords := totalWords % 4

	var sb strings.Builder
	fmt.Fprintf(&sb, "inline void %s_read_into(ByteAddressBuffer src, uint src_ref, RWByteAddressBuffer dst, uint dst_ref) {\n", enumName)
	for i := 0; i < quotient; i++ {
		fmt.Fprintf(&sb, "    uint4 group%d = src.Load4(%s);\n", i, simplifiedAdd("src_ref", i*groupBytes))
		fmt.Fprintf(&sb, "    dst.Store4(%s, group%d);\n", simplifiedAdd("dst_ref", i*groupBytes), i)
	}
	switch remainderWords {
	case 1, 2, 3:
		fmt.Fprintf(&sb, "\n    uint%d group%d = src.Load%d(%s);\n",
			remainderWords, quotient, remainderWords, simplifiedAdd("src_ref", quotient*groupBytes))
		fmt.Fprintf(&sb, "    dst.Store%d(%s, group%d);\n",
			remainderWords, simplifiedAdd("dst_ref", quotient*groupBytes), quotient)
	}
	sb.WriteString("}\n\n")
	return sb.String()
}
