package extractor

import (
	"sort"

	"resolvergen/internal/config"
	"resolvergen/internal/diag"
)

// CustomType identifies a source-language type a custom scalar maps to:
// either a bare name, or a name plus the module path it is imported from.
type CustomType struct {
	Name string
	Path string
}

// InvertCustomScalarMap turns the configured scalar-name → source-type map
// into the source-type → scalar-name lookup used during translation. Two
// scalars mapping to the same source type is a configuration error.
func InvertCustomScalarMap(scalars map[string]config.CustomScalarType) (map[CustomType]string, []*diag.Diagnostic) {
	inverted := make(map[CustomType]string, len(scalars))

	names := make([]string, 0, len(scalars))
	for name := range scalars {
		names = append(names, name)
	}
	sort.Strings(names)

	var diagnostics []*diag.Diagnostic
	for _, scalarName := range names {
		mapping := scalars[scalarName]
		key := CustomType{Name: mapping.Name, Path: mapping.Path}
		if previous, ok := inverted[key]; ok {
			diagnostics = append(diagnostics, diag.Errorf(
				diag.Location{},
				"custom scalars %q and %q both map to source type %q; the mapping must be invertible",
				previous, scalarName, mapping.Name,
			))
			continue
		}
		inverted[key] = scalarName
	}
	return inverted, diagnostics
}
