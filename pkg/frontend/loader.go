package frontend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/nrpt/gpupack/pkg/ir"
)

// LoadModule parses every file in paths concurrently and merges the
// resulting declarations into a single *Schema. Parsing has no cross-file
// dependency, so each file is read and parsed on its own goroutine, but the
// merge step always walks paths in the order given so the resulting
// Schema's declaration order (Decls, and the Structs/Enums views derived
// from it) is deterministic regardless of which goroutine happens to
// finish first.
func LoadModule(ctx context.Context, paths ...string) (*Schema, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("frontend: no schema files given")
	}

	schemas := make([]*Schema, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			schema, err := parseOneFile(path)
			if err != nil {
				return err
			}
			schemas[i] = schema
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Schema{Position: schemas[0].Position}
	version := ""
	for i, schema := range schemas {
		if schema.Version != "" {
			if version == "" {
				version = schema.Version
			} else if version != schema.Version {
				return nil, fmt.Errorf("frontend: %s: version %q conflicts with earlier version %q",
					paths[i], schema.Version, version)
			}
		}
		merged.Structs = append(merged.Structs, schema.Structs...)
		merged.Enums = append(merged.Enums, schema.Enums...)
		merged.Decls = append(merged.Decls, schema.decls()...)
	}
	merged.Version = version

	if version != "" && !semver.IsValid("v"+version) {
		return nil, fmt.Errorf("frontend: version header %q is not a valid semantic version", version)
	}

	if err := checkDuplicateDeclNames(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

func parseOneFile(path string) (*Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("frontend: resolving %s: %w", path, err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("frontend: reading %s: %w", absPath, err)
	}
	schema, err := ParseFile(absPath, string(content))
	if err != nil {
		return nil, err
	}
	return schema, nil
}

func checkDuplicateDeclNames(schema *Schema) error {
	seen := make(map[string]bool)
	var names []string
	for _, s := range schema.Structs {
		names = append(names, s.Name)
	}
	for _, e := range schema.Enums {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("frontend: duplicate definition name %q across loaded files", n)
		}
		seen[n] = true
	}
	return nil
}

// LoadAndBuild loads every schema file in paths and builds the resulting
// ir.Module in one step, under the given module name.
func LoadAndBuild(ctx context.Context, moduleName string, paths ...string) (*ir.Module, error) {
	schema, err := LoadModule(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return BuildModule(moduleName, schema)
}
