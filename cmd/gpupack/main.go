// Command gpupack is the GPU shader layout compiler.
//
// Usage:
//
//	gpupack generate [options] <schema-file>...
//	gpupack validate <schema-file>...
//	gpupack format <schema-file>...
//	gpupack version
//
// Generate Command:
//
//	Generate Metal Shading Language and/or HLSL layout code from schema
//	files.
//
//	Options:
//	  -dialect string   Target dialect: msl, hlsl, both (default "both")
//	  -out string       Output directory (default ".")
//	  -tag-base int     Override the first enum variant tag value
//
// Validate Command:
//
//	Parse and build schema files without generating code.
//
// Format Command:
//
//	Format schema files in place or to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nrpt/gpupack/pkg/frontend"
	"github.com/nrpt/gpupack/pkg/gpucodegen"
)

var log = logrus.New()

const version = "0.1.0"

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate", "gen", "g":
		cmdGenerate(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "format", "fmt", "f":
		cmdFormat(os.Args[2:])
	case "version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`GPU Shader Layout Compiler

Usage:
  gpupack <command> [options] <files>...

Commands:
  generate    Generate MSL/HLSL layout code from schema files
  validate    Validate schema files
  format      Format schema files
  version     Print version information

Run 'gpupack <command> -h' for command-specific help.`)
}

// stringSliceFlag allows a flag to be repeated, accumulating values.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }
func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	dialect := fs.String("dialect", "both", "Target dialect: msl, hlsl, both")
	outDir := fs.String("out", ".", "Output directory")
	tagBase := fs.Int("tag-base", -1, "Override the first enum variant tag value")
	moduleName := fs.String("module", "module", "Name recorded on the built IR module")

	fs.Usage = func() {
		fmt.Println(`Usage: gpupack generate [options] <schema-file>...

Generate MSL/HLSL layout code from GPU schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		log.Error("no input files")
		fs.Usage()
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.WithError(err).Fatal("creating output directory")
	}

	module, err := frontend.LoadAndBuild(context.Background(), *moduleName, fs.Args()...)
	if err != nil {
		log.WithError(err).Error("loading schema")
		os.Exit(1)
	}

	dialects := map[string]bool{}
	switch *dialect {
	case "both":
		dialects["msl"] = true
		dialects["hlsl"] = true
	case "msl", "hlsl":
		dialects[*dialect] = true
	default:
		log.WithField("dialect", *dialect).Fatal("unsupported dialect")
	}

	baseName := strings.TrimSuffix(filepath.Base(fs.Arg(0)), filepath.Ext(fs.Arg(0)))
	hasErrors := false

	for _, d := range []gpucodegen.Dialect{gpucodegen.DialectMSL, gpucodegen.DialectHLSL} {
		if !dialects[string(d)] {
			continue
		}
		gen, ok := gpucodegen.Get(d)
		if !ok {
			log.WithField("dialect", d).Error("no generator registered")
			hasErrors = true
			continue
		}

		opts := defaultOptionsFor(d)
		if *tagBase >= 0 {
			opts.TagBase = *tagBase
		}

		outputFile := filepath.Join(*outDir, baseName+"."+gen.FileExtension())
		f, err := os.Create(outputFile)
		if err != nil {
			log.WithError(err).Error("creating output file")
			hasErrors = true
			continue
		}

		if err := gen.Generate(f, module, opts); err != nil {
			f.Close()
			os.Remove(outputFile)
			log.WithError(err).Error("generating code")
			hasErrors = true
			continue
		}
		f.Close()
		log.WithField("file", outputFile).Info("generated")
	}

	if hasErrors {
		os.Exit(1)
	}
}

func defaultOptionsFor(d gpucodegen.Dialect) gpucodegen.Options {
	if d == gpucodegen.DialectMSL {
		return gpucodegen.DefaultMSLOptions()
	}
	return gpucodegen.DefaultHLSLOptions()
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	moduleName := fs.String("module", "module", "Name recorded on the built IR module")

	fs.Usage = func() {
		fmt.Println(`Usage: gpupack validate [options] <schema-file>...

Validate GPU schema files without generating code.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		log.Error("no input files")
		fs.Usage()
		os.Exit(1)
	}

	_, err := frontend.LoadAndBuild(context.Background(), *moduleName, fs.Args()...)
	if err != nil {
		log.WithError(err).Error("invalid schema")
		os.Exit(1)
	}

	fmt.Printf("Valid: %s\n", strings.Join(fs.Args(), ", "))
}

func cmdFormat(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result to (source) file instead of stdout")

	fs.Usage = func() {
		fmt.Println(`Usage: gpupack format [options] <schema-file>...

Format GPU schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		log.Error("no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		content, err := os.ReadFile(inputFile)
		if err != nil {
			log.WithError(err).WithField("file", inputFile).Error("reading file")
			hasErrors = true
			continue
		}

		schema, err := frontend.ParseFile(inputFile, string(content))
		if err != nil {
			log.WithError(err).WithField("file", inputFile).Error("parsing file")
			hasErrors = true
			continue
		}

		formatted := frontend.FormatSchema(schema)

		if *write {
			if err := os.WriteFile(inputFile, []byte(formatted), 0o644); err != nil {
				log.WithError(err).WithField("file", inputFile).Error("writing file")
				hasErrors = true
				continue
			}
			fmt.Printf("Formatted: %s\n", inputFile)
		} else {
			fmt.Print(formatted)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdVersion() {
	fmt.Printf("gpupack version %s\n", version)
}
