package gpucodegen

import (
	"fmt"
	"io"

	"github.com/nrpt/gpupack/pkg/ir"
	"github.com/nrpt/gpupack/pkg/layout"
)

// mslGenerator emits Metal Shading Language struct declarations and
// accessors. Each schema struct becomes a packed Metal struct (its fields
// verbatim, gaining a leading tag word when it backs an enum variant) plus
// a whole-struct reader and one accessor per small (non-struct) field.
// Each enum becomes a tagged struct with a conservatively-sized uint body
// array, a tag accessor, and one #define per variant tag.
type mslGenerator struct{}

// NewMSLGenerator returns a Generator that emits Metal Shading Language.
func NewMSLGenerator() Generator {
	return mslGenerator{}
}

func init() {
	Register(NewMSLGenerator())
}

func (mslGenerator) Dialect() Dialect      { return DialectMSL }
func (mslGenerator) FileExtension() string { return "metal" }

func (g mslGenerator) Generate(w io.Writer, m *ir.Module, opts Options) error {
	for _, def := range m.Defs {
		fmt.Fprintf(w, "typedef uint %sRef;\n", def.DefName())
	}
	for _, def := range m.Defs {
		var err error
		switch d := def.(type) {
		case *ir.Struct:
			err = g.generateStruct(w, m, d)
		case *ir.Enum:
			err = g.generateEnum(w, m, d, opts)
		default:
			err = &GeneratorError{DefName: def.DefName(), Message: fmt.Sprintf("unknown definition %T", def)}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (g mslGenerator) generateStruct(w io.Writer, m *ir.Module, s *ir.Struct) error {
	isVariant := m.IsEnumVariant(s.Name)

	fmt.Fprintf(w, "struct %sPacked {\n", s.Name)
	if isVariant {
		fmt.Fprintf(w, "    uint tag;\n")
	}
	for _, f := range s.Fields {
		fmt.Fprintf(w, "    %s %s;\n", ir.MSLTypeName(f.Type), f.Name)
	}
	fmt.Fprintf(w, "};\n")

	fmt.Fprintf(w, "%sPacked %s_read(const device char *buf, %sRef ref) {\n", s.Name, s.Name, s.Name)
	fmt.Fprintf(w, "    return *((const device %sPacked *)(buf + ref));\n", s.Name)
	fmt.Fprintf(w, "}\n")

	for _, f := range s.Fields {
		if !ir.IsSmall(f.Type) {
			continue
		}
		tn := ir.MSLTypeName(f.Type)
		fmt.Fprintf(w, "%s %s_%s(const device char *buf, %sRef ref) {\n", tn, s.Name, f.Name, s.Name)
		fmt.Fprintf(w, "    return ((const device %sPacked *)(buf + ref))->%s;\n", s.Name, f.Name)
		fmt.Fprintf(w, "}\n")
	}
	return nil
}

func (g mslGenerator) generateEnum(w io.Writer, m *ir.Module, e *ir.Enum, opts Options) error {
	size, err := layout.DefSize(e, m)
	if err != nil {
		return &GeneratorError{DefName: e.Name, Message: err.Error()}
	}
	bodyWords := layout.EnumBodyWords(size)

	fmt.Fprintf(w, "struct %s {\n", e.Name)
	fmt.Fprintf(w, "    uint tag;\n")
	fmt.Fprintf(w, "    uint body[%d];\n", bodyWords)
	fmt.Fprintf(w, "};\n")

	fmt.Fprintf(w, "uint %s_tag(const device char *buf, %sRef ref) {\n", e.Name, e.Name)
	fmt.Fprintf(w, "    return ((const device %s *)(buf + ref))->tag;\n", e.Name)
	fmt.Fprintf(w, "}\n")

	tag := opts.TagBase
	for _, v := range e.Variants {
		fmt.Fprintf(w, "#define %s_%s %d\n", e.Name, v.Name, tag)
		tag++
	}
	return nil
}
