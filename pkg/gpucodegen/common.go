// Package gpucodegen emits shader-side type declarations and accessor
// functions from an ir.Module, in either Metal Shading Language or HLSL.
package gpucodegen

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nrpt/gpupack/pkg/ir"
)

// Dialect identifies a target shading language.
type Dialect string

const (
	DialectMSL  Dialect = "msl"
	DialectHLSL Dialect = "hlsl"
)

// Generator is the interface implemented by each dialect's emitter.
type Generator interface {
	// Generate writes the full set of typedefs, struct bodies, and
	// accessor functions for module to w.
	Generate(w io.Writer, module *ir.Module, options Options) error

	// Dialect returns the target shading language.
	Dialect() Dialect

	// FileExtension returns the conventional file extension for output
	// written by this generator (without the leading dot).
	FileExtension() string
}

// Options configures code generation shared across dialects.
type Options struct {
	// TagBase is the first tag value assigned to an enum's variants. MSL
	// generators default this to 1 (to keep 0 free as an always-invalid
	// sentinel tag); HLSL generators default it to 0.
	TagBase int

	// GenerateComments is carried in Options, but neither the MSL nor the
	// HLSL generator reads it: no schema doc comments are emitted.
	GenerateComments bool
}

// DefaultMSLOptions returns the default options for MSL generation.
func DefaultMSLOptions() Options {
	return Options{TagBase: 1, GenerateComments: true}
}

// DefaultHLSLOptions returns the default options for HLSL generation.
func DefaultHLSLOptions() Options {
	return Options{TagBase: 0, GenerateComments: true}
}

// registry holds registered generators by dialect.
var registry = make(map[Dialect]Generator)

// Register registers a generator for a dialect.
func Register(gen Generator) {
	registry[gen.Dialect()] = gen
}

// Get returns the generator for a dialect.
func Get(d Dialect) (Generator, bool) {
	gen, ok := registry[d]
	return gen, ok
}

// Dialects returns all registered dialects.
func Dialects() []Dialect {
	out := make([]Dialect, 0, len(registry))
	for d := range registry {
		out = append(out, d)
	}
	return out
}

var titleCaser = cases.Title(language.English)

// ToPascalCase converts a string to PascalCase.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToSnakeCase converts a string to snake_case, preserving any leading
// underscores (an identifier beginning with "_" keeps its leading
// underscore word as empty, matching how the tag-style naming in the
// original schema source treated leading underscores).
func ToSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}

// ToUpperSnakeCase converts a string to UPPER_SNAKE_CASE.
func ToUpperSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p)
	}
	return strings.Join(parts, "_")
}

// splitName breaks s into case/separator words. Each underscore appearing
// before the first word character contributes an empty leading word rather
// than being dropped, so "_Foo" splits into ["", "Foo"] and round-trips
// through ToSnakeCase/ToUpperSnakeCase as "_foo"/"_FOO" instead of silently
// losing the leading underscore.
func splitName(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder
	sawWord := false

	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			} else if !sawWord && r == '_' {
				parts = append(parts, "")
			}
			continue
		}
		sawWord = true
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// simplifiedAdd renders "name" when c is zero, or "name + c" otherwise —
// avoids emitting a pointless "+ 0" in generated offset expressions.
func simplifiedAdd(name string, c int) string {
	if c == 0 {
		return name
	}
	return fmt.Sprintf("%s + %d", name, c)
}

// GeneratorError represents a code generation error tied to a definition
// name, for emitters that fail partway through a module.
type GeneratorError struct {
	DefName string
	Message string
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("gpucodegen: %s: %s", e.DefName, e.Message)
}
