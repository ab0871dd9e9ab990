package extractor

import (
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
	"resolvergen/internal/tsast"
)

// translateArguments converts the second-parameter annotation of a resolver
// function into the field's argument list. The annotation must be a literal
// object; each property becomes one argument, translated with classic
// non-null semantics.
func (e *Extractor) translateArguments(source diag.SourceLocation, res *ModuleResolution, t tsast.Type) ([]ir.InputValueDefinition, []*diag.Diagnostic) {
	object, ok := t.(*tsast.ObjectType)
	if !ok {
		return nil, []*diag.Diagnostic{diag.Errorf(
			diag.NewLocation(source, t.Span()),
			"incorrect arguments definition, expected an object literal type",
		)}
	}

	var diagnostics []*diag.Diagnostic
	arguments := make([]ir.InputValueDefinition, 0, len(object.Members))
	for _, prop := range object.Members {
		if prop.Key.Name == "" || prop.Type == nil {
			diagnostics = append(diagnostics, diag.Errorf(
				diag.NewLocation(source, prop.Span),
				"expected the argument to be a named property with a type annotation",
			))
			continue
		}
		annotation, _, typeDiags := e.translateType(source, res, prop.Type, false)
		if len(typeDiags) > 0 {
			diagnostics = append(diagnostics, typeDiags...)
			continue
		}
		arguments = append(arguments, ir.InputValueDefinition{
			Name: ir.Identifier{Value: prop.Key.Name, Span: prop.Key.Span},
			Type: annotation,
			Span: prop.Span,
		})
	}
	if len(diagnostics) > 0 {
		return nil, diagnostics
	}
	return arguments, nil
}
