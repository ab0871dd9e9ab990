package extractor

import (
	"fmt"

	"resolvergen/internal/diag"
	"resolvergen/internal/tsast"
)

// ImportKind distinguishes how a binding entered a module.
type ImportKind string

const (
	ImportNamed     ImportKind = "named"
	ImportDefault   ImportKind = "default"
	ImportNamespace ImportKind = "namespace"
)

// ModuleKey addresses one exported binding of one module. For named imports
// Name is the original exported name; for the other kinds it is empty.
type ModuleKey struct {
	Module string     `json:"module"`
	Kind   ImportKind `json:"kind"`
	Name   string     `json:"name,omitempty"`
}

func (k ModuleKey) String() string {
	switch k.Kind {
	case ImportDefault:
		return fmt.Sprintf("default export of module %q", k.Module)
	case ImportNamespace:
		return fmt.Sprintf("namespace import of module %q", k.Module)
	default:
		return fmt.Sprintf("%q from module %q", k.Name, k.Module)
	}
}

// Binding is one module-index entry: the resolved key plus the location of
// the binding site (used to annotate namespace-import diagnostics).
type Binding struct {
	Key      ModuleKey
	Location diag.Location
}

// ModuleResolution maps local identifiers of one file to the module binding
// that declares them. It is immutable after construction and scoped to that
// file's resolution pass.
type ModuleResolution struct {
	imports map[string]Binding
	exports map[string]Binding
}

// Get resolves a local identifier to its module key.
func (r *ModuleResolution) Get(local string) (ModuleKey, bool) {
	b, ok := r.Binding(local)
	return b.Key, ok
}

// Binding resolves a local identifier to its full index entry, checking
// imports before same-file exports.
func (r *ModuleResolution) Binding(local string) (Binding, bool) {
	if b, ok := r.imports[local]; ok {
		return b, true
	}
	b, ok := r.exports[local]
	return b, ok
}

// BuildModuleResolution scans a module's top-level statements into its
// import/export index. Exported type aliases are recorded as named exports
// of the current module so same-file references resolve like cross-file
// ones. Re-exports and transitive imports are not followed.
func BuildModuleResolution(module *tsast.Module, source diag.SourceLocation) *ModuleResolution {
	res := &ModuleResolution{
		imports: make(map[string]Binding),
		exports: make(map[string]Binding),
	}

	for _, stmt := range module.Statements {
		switch decl := stmt.Decl.(type) {
		case *tsast.ImportDecl:
			for _, spec := range decl.Specifiers {
				key := ModuleKey{Module: decl.Source}
				switch spec.Kind {
				case tsast.ImportDefault:
					key.Kind = ImportDefault
				case tsast.ImportNamespace:
					key.Kind = ImportNamespace
				default:
					key.Kind = ImportNamed
					key.Name = spec.Imported
					if key.Name == "" {
						key.Name = spec.Local.Name
					}
				}
				res.imports[spec.Local.Name] = Binding{
					Key:      key,
					Location: diag.NewLocation(source, spec.Local.Span),
				}
			}
		case *tsast.TypeAliasDecl:
			if !stmt.Exported {
				continue
			}
			res.exports[decl.Name.Name] = Binding{
				Key: ModuleKey{
					Module: module.Path,
					Kind:   ImportNamed,
					Name:   decl.Name.Name,
				},
				Location: diag.NewLocation(source, decl.Name.Span),
			}
		}
	}
	return res
}
