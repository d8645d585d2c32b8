package gpucodegen

import (
	"strings"
	"testing"

	"github.com/nrpt/gpupack/pkg/ir"
)

func buildPointCircleModule() *ir.Module {
	m := ir.NewModule("shapes")
	m.Defs = append(m.Defs,
		&ir.Struct{
			Name: "Point",
			Fields: []ir.Field{
				{Name: "x", Type: ir.Scalar{Kind: ir.F32}},
				{Name: "y", Type: ir.Scalar{Kind: ir.F32}},
			},
		},
		&ir.Enum{
			Name: "Shape",
			Variants: []ir.Variant{
				{Name: "Circ", Payload: []ir.Type{ir.InlineStruct{Name: "Point"}}},
				{Name: "Empty"},
			},
		},
	)
	m.ComputeEnumVariants()
	return m
}

func TestMSLGeneratorEmitsStructAndAccessors(t *testing.T) {
	m := buildPointCircleModule()
	var sb strings.Builder

	if err := NewMSLGenerator().Generate(&sb, m, DefaultMSLOptions()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out := sb.String()
	for _, want := range []string{
		"typedef uint PointRef;",
		"struct PointPacked {",
		"float x;",
		"float y;",
		"PointPacked Point_read(const device char *buf, PointRef ref) {",
		"float Point_x(const device char *buf, PointRef ref) {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n--- full output ---\n%s", want, out)
		}
	}
}

func TestMSLGeneratorEnumBodyAndTags(t *testing.T) {
	m := buildPointCircleModule()
	var sb strings.Builder

	if err := NewMSLGenerator().Generate(&sb, m, DefaultMSLOptions()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "struct Shape {") {
		t.Error("missing Shape struct")
	}
	if !strings.Contains(out, "#define Shape_Circ 1") {
		t.Errorf("expected tag base 1 for MSL, got:\n%s", out)
	}
	if !strings.Contains(out, "#define Shape_Empty 2") {
		t.Errorf("expected second variant tag 2, got:\n%s", out)
	}
}

func TestMSLGeneratorRegisteredInRegistry(t *testing.T) {
	gen, ok := Get(DialectMSL)
	if !ok {
		t.Fatal("MSL generator not registered")
	}
	if gen.FileExtension() != "metal" {
		t.Errorf("FileExtension() = %q, want metal", gen.FileExtension())
	}
}
