package gpucodegen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/nrpt/gpupack/pkg/gpubuf"
	"github.com/nrpt/gpupack/pkg/ir"
	"github.com/nrpt/gpupack/pkg/layout"
)

// These tests pin the end-to-end scenarios (S1-S6) and the cross-cutting
// invariants listed alongside them.

// S1: Foo{a: u8, b: u8, c: u16} packs into one u32 slot "a_b_c" at offsets
// (24, 16, 0), with three HLSL unpackers at widths 8, 8, 16.
func TestScenarioS1_FooSubWordPacking(t *testing.T) {
	m := ir.NewModule("s1")
	m.Defs = append(m.Defs, &ir.Struct{
		Name: "Foo",
		Fields: []ir.Field{
			{Name: "a", Type: ir.Scalar{Kind: ir.U8}},
			{Name: "b", Type: ir.Scalar{Kind: ir.U8}},
			{Name: "c", Type: ir.Scalar{Kind: ir.U16}},
		},
	})
	m.ComputeEnumVariants()

	ps, err := layout.NewPackedStruct(m, "Foo", m.Defs[0].(*ir.Struct).Fields)
	if err != nil {
		t.Fatalf("NewPackedStruct: %v", err)
	}
	if len(ps.PackedFields) != 1 {
		t.Fatalf("expected 1 packed field, got %d", len(ps.PackedFields))
	}
	pf := ps.PackedFields[0]
	if pf.Name != "a_b_c" {
		t.Errorf("packed field name = %q, want a_b_c", pf.Name)
	}
	size, err := pf.Size(m)
	if err != nil || size != 4 {
		t.Errorf("packed field size = %d (err %v), want 4", size, err)
	}
	wantOffsets := []int{24, 16, 0}
	for i, sf := range pf.StoredFields {
		if sf.Offset != wantOffsets[i] {
			t.Errorf("stored field %d (%s) offset = %d, want %d", i, sf.Name, sf.Offset, wantOffsets[i])
		}
	}

	var sb strings.Builder
	if err := NewHLSLGenerator().Generate(&sb, m, DefaultHLSLOptions()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "uint a_b_c = buf.Load(ref);") {
		t.Errorf("expected a single buf.Load(ref) for the merged slot, got:\n%s", out)
	}
	for _, want := range []string{
		"inline uint FooPacked_unpack_a(uint a_b_c) {",
		"    result = extract_8bit_value(24, a_b_c);",
		"inline uint FooPacked_unpack_b(uint a_b_c) {",
		"    result = extract_8bit_value(16, a_b_c);",
		"inline uint FooPacked_unpack_c(uint a_b_c) {",
		"    result = extract_16bit_value(0, a_b_c);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n--- full output ---\n%s", want, out)
		}
	}

	// Property 8: extractor correctness, verified numerically against the
	// same bit offsets the generated unpackers use.
	var word uint32
	word |= 0xAB << 24 // a
	word |= 0xCD << 16 // b
	word |= 0x1234     // c
	if got := gpubuf.ExtractBits(word, 24, 8); got != 0xAB {
		t.Errorf("ExtractBits(24,8) = %#x, want 0xAB", got)
	}
	if got := gpubuf.ExtractBits(word, 16, 8); got != 0xCD {
		t.Errorf("ExtractBits(16,8) = %#x, want 0xCD", got)
	}
	if got := gpubuf.ExtractBits(word, 0, 16); got != 0x1234 {
		t.Errorf("ExtractBits(0,16) = %#x, want 0x1234", got)
	}

	// Round trip the same word through a gpubuf.Buffer, simulating a
	// ByteAddressBuffer.Load against a slot at a non-zero byte offset, and
	// decode each stored field using the offsets layout.NewPackedStruct
	// actually computed above rather than hardcoded shifts.
	wantValues := map[string]uint32{"a": 0xAB, "b": 0xCD, "c": 0x1234}
	wantWidths := map[string]uint{"a": 8, "b": 8, "c": 16}
	buf := gpubuf.NewBuffer(16)
	defer buf.Release()
	const slotOffset = 8
	buf.PutU32(slotOffset, word)
	loaded := buf.LoadU32(slotOffset)
	for _, sf := range pf.StoredFields {
		got := gpubuf.ExtractBits(loaded, uint(sf.Offset), wantWidths[sf.Name])
		if got != wantValues[sf.Name] {
			t.Errorf("round-tripped field %s = %#x, want %#x", sf.Name, got, wantValues[sf.Name])
		}
	}
}

// S2: Bar{p: Ref<Foo>, q: f32} produces two packed fields, p: FooRef and
// q: float, each read with its own buf.Load and no unpackers.
func TestScenarioS2_BarRefAndFloat(t *testing.T) {
	m := ir.NewModule("s2")
	m.Defs = append(m.Defs,
		&ir.Struct{Name: "Foo", Fields: []ir.Field{{Name: "a", Type: ir.Scalar{Kind: ir.U8}}}},
		&ir.Struct{Name: "Bar", Fields: []ir.Field{
			{Name: "p", Type: ir.Ref{Inner: ir.InlineStruct{Name: "Foo"}}},
			{Name: "q", Type: ir.Scalar{Kind: ir.F32}},
		}},
	)
	m.ComputeEnumVariants()

	ps, err := layout.NewPackedStruct(m, "Bar", m.Defs[1].(*ir.Struct).Fields)
	if err != nil {
		t.Fatalf("NewPackedStruct: %v", err)
	}
	if len(ps.PackedFields) != 2 {
		t.Fatalf("expected 2 packed fields, got %d", len(ps.PackedFields))
	}
	if _, ok := ps.PackedFields[0].Type.(ir.Ref); !ok {
		t.Errorf("first packed field type = %T, want ir.Ref", ps.PackedFields[0].Type)
	}
	if s, ok := ps.PackedFields[1].Type.(ir.Scalar); !ok || s.Kind != ir.F32 {
		t.Errorf("second packed field type = %v, want Scalar{F32}", ps.PackedFields[1].Type)
	}

	var sb strings.Builder
	if err := NewHLSLGenerator().Generate(&sb, m, DefaultHLSLOptions()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "FooRef p = buf.Load(ref);") {
		t.Errorf("expected FooRef p read at ref, got:\n%s", out)
	}
	if !strings.Contains(out, "float q = buf.Load(ref + 4);") {
		t.Errorf("expected float q read at ref + 4, got:\n%s", out)
	}
	if strings.Contains(out, "BarPacked_unpack_p") || strings.Contains(out, "BarPacked_unpack_q") {
		t.Errorf("did not expect unpackers for full-word fields, got:\n%s", out)
	}
}

// S3: enum PietItem { A(Foo), B(Bar) } makes both Foo and Bar enum-variant
// structs (leading tag word), and PietItem's schema size is the max of
// their tagged sizes.
func TestScenarioS3_EnumVariantStructsGetTag(t *testing.T) {
	m := ir.NewModule("s3")
	m.Defs = append(m.Defs,
		&ir.Struct{Name: "Foo", Fields: []ir.Field{{Name: "a", Type: ir.Scalar{Kind: ir.U32}}}},
		&ir.Struct{Name: "Bar", Fields: []ir.Field{
			{Name: "p", Type: ir.Scalar{Kind: ir.U32}},
			{Name: "q", Type: ir.Scalar{Kind: ir.U32}},
		}},
		&ir.Enum{Name: "PietItem", Variants: []ir.Variant{
			{Name: "A", Payload: []ir.Type{ir.InlineStruct{Name: "Foo"}}},
			{Name: "B", Payload: []ir.Type{ir.InlineStruct{Name: "Bar"}}},
		}},
	)
	m.ComputeEnumVariants()

	if !m.IsEnumVariant("Foo") || !m.IsEnumVariant("Bar") {
		t.Fatal("Foo and Bar must both be enum-variant structs")
	}

	fooSize, err := layout.DefSize(m.Defs[0], m)
	if err != nil || fooSize != 8 { // 4-byte tag + 4-byte field
		t.Errorf("size(Foo) = %d (err %v), want 8", fooSize, err)
	}
	barSize, err := layout.DefSize(m.Defs[1], m)
	if err != nil || barSize != 12 { // 4-byte tag + 8 bytes of fields
		t.Errorf("size(Bar) = %d (err %v), want 12", barSize, err)
	}
	enumSize, err := layout.DefSize(m.Defs[2], m)
	if err != nil {
		t.Fatalf("size(PietItem): %v", err)
	}
	if want := 12; enumSize != want { // InlineStruct-first payload starts at offset 0
		t.Errorf("size(PietItem) = %d, want %d", enumSize, want)
	}

	for _, gen := range []Generator{NewMSLGenerator(), NewHLSLGenerator()} {
		var sb strings.Builder
		opts := DefaultHLSLOptions()
		if gen.Dialect() == DialectMSL {
			opts = DefaultMSLOptions()
		}
		if err := gen.Generate(&sb, m, opts); err != nil {
			t.Fatalf("%s Generate: %v", gen.Dialect(), err)
		}
		out := sb.String()
		if !strings.Contains(out, "uint tag;") {
			t.Errorf("%s: expected a leading uint tag in the packed struct, got:\n%s", gen.Dialect(), out)
		}
	}
}

// S4: V{v: [u8; 4]} packs into one one-word Vector(U32, 1) slot (rendered
// as a plain uint); the HLSL unpacker
// extracts four 8-bit lanes MSB-first at shifts {24,16,8,0}.
func TestScenarioS4_ByteArrayPacksToU32(t *testing.T) {
	m := ir.NewModule("s4")
	m.Defs = append(m.Defs, &ir.Struct{
		Name:   "V",
		Fields: []ir.Field{{Name: "v", Type: ir.Vector{Kind: ir.U8, N: 4}}},
	})
	m.ComputeEnumVariants()

	ps, err := layout.NewPackedStruct(m, "V", m.Defs[0].(*ir.Struct).Fields)
	if err != nil {
		t.Fatalf("NewPackedStruct: %v", err)
	}
	if len(ps.PackedFields) != 1 {
		t.Fatalf("expected 1 packed field, got %d", len(ps.PackedFields))
	}
	// Per the close() rule for a single Vector stored field, the packed
	// type is Vector(U32, ceil(1*4/4)) = Vector(U32, 1), which renders
	// identically to a plain uint since it's one word wide.
	v, ok := ps.PackedFields[0].Type.(ir.Vector)
	if !ok || v.Kind != ir.U32 || v.N != 1 {
		t.Fatalf("packed type = %v, want Vector{U32, 1}", ps.PackedFields[0].Type)
	}

	var sb strings.Builder
	if err := NewHLSLGenerator().Generate(&sb, m, DefaultHLSLOptions()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "inline uint4 VPacked_unpack_v(uint v) {") {
		t.Errorf("expected a uint4 unpacker for v, got:\n%s", out)
	}
	for i, shift := range []int{24, 16, 8, 0} {
		want := "result[" + strconv.Itoa(i) + "] = extract_8bit_value(" + strconv.Itoa(shift) + ", v);"
		if !strings.Contains(out, want) {
			t.Errorf("output missing lane extraction %q\n--- full output ---\n%s", want, out)
		}
	}
}

// S5: MSL tags start at 1, HLSL tags start at 0, for the same enum.
func TestScenarioS5_TagBaseDivergesByDialect(t *testing.T) {
	m := ir.NewModule("s5")
	m.Defs = append(m.Defs, &ir.Enum{Name: "PietItem", Variants: []ir.Variant{
		{Name: "A"}, {Name: "B"},
	}})
	m.ComputeEnumVariants()

	var mslOut strings.Builder
	if err := NewMSLGenerator().Generate(&mslOut, m, DefaultMSLOptions()); err != nil {
		t.Fatalf("MSL Generate: %v", err)
	}
	if !strings.Contains(mslOut.String(), "#define PietItem_A 1") || !strings.Contains(mslOut.String(), "#define PietItem_B 2") {
		t.Errorf("MSL tags should start at 1, got:\n%s", mslOut.String())
	}

	var hlslOut strings.Builder
	if err := NewHLSLGenerator().Generate(&hlslOut, m, DefaultHLSLOptions()); err != nil {
		t.Fatalf("HLSL Generate: %v", err)
	}
	if !strings.Contains(hlslOut.String(), "#define PietItem_A 0") || !strings.Contains(hlslOut.String(), "#define PietItem_B 1") {
		t.Errorf("HLSL tags should start at 0, got:\n%s", hlslOut.String())
	}
}

// S6: align_padding matches the documented examples exactly.
func TestScenarioS6_AlignPadding(t *testing.T) {
	cases := []struct {
		offset, align, want int
	}{
		{5, 4, 3},
		{8, 4, 0},
		{0, 8, 0},
	}
	for _, c := range cases {
		if got := ir.AlignPadding(c.offset, c.align); got != c.want {
			t.Errorf("AlignPadding(%d, %d) = %d, want %d", c.offset, c.align, got, c.want)
		}
	}
}
