package extractor

import (
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
	"resolvergen/internal/tsast"
)

// RelayResolverValueTypeName is the escape-hatch generic: a field of this
// type is always optional and keeps the name literally.
const RelayResolverValueTypeName = "RelayResolverValue"

// translateType converts one source type annotation into a GraphQL type
// annotation plus its semantic non-null levels. With useSemanticNonNull a
// required position is encoded as level 0 in the level list instead of a
// classic `!` wrapper.
func (e *Extractor) translateType(source diag.SourceLocation, res *ModuleResolution, t tsast.Type, useSemanticNonNull bool) (ir.TypeAnnotation, []int, []*diag.Diagnostic) {
	effective, optional, d := unwrapNullable(source, t)
	if d != nil {
		return nil, nil, []*diag.Diagnostic{d}
	}

	var levels []int
	loc := diag.NewLocation(source, effective.Span())
	var annotation ir.TypeAnnotation

	switch node := effective.(type) {
	case *tsast.KeywordType:
		name, ok := keywordScalar(node.Kind)
		if !ok {
			return nil, nil, []*diag.Diagnostic{diag.Errorf(loc, "unsupported type %q", string(node.Kind))}
		}
		annotation = &ir.NamedTypeAnnotation{Name: ir.Identifier{Value: name, Span: node.Loc}}

	case *tsast.LiteralType:
		if node.Kind != tsast.LiteralBool {
			return nil, nil, []*diag.Diagnostic{diag.Errorf(loc, "unsupported literal type %q", node.Value)}
		}
		annotation = &ir.NamedTypeAnnotation{Name: ir.Identifier{Value: "Boolean", Span: node.Loc}}

	case *tsast.ArrayType:
		inner, innerLevels, diags := e.translateListElement(source, res, node.Element, node.Loc)
		if len(diags) > 0 {
			return nil, nil, diags
		}
		annotation = inner
		levels = innerLevels

	case *tsast.TypeRef:
		var diags []*diag.Diagnostic
		annotation, levels, optional, diags = e.translateTypeRef(source, res, node, optional)
		if len(diags) > 0 {
			return nil, nil, diags
		}

	default:
		return nil, nil, []*diag.Diagnostic{diag.Errorf(loc, "unsupported type shape")}
	}

	if !optional {
		if useSemanticNonNull {
			// Level 0 is the field position itself.
			levels = append(levels, 0)
		} else {
			return &ir.NonNullTypeAnnotation{Type: annotation, Loc: loc.Span}, nil, nil
		}
	}
	return annotation, levels, nil
}

func (e *Extractor) translateTypeRef(source diag.SourceLocation, res *ModuleResolution, node *tsast.TypeRef, optional bool) (ir.TypeAnnotation, []int, bool, []*diag.Diagnostic) {
	loc := diag.NewLocation(source, node.Loc)
	nameLoc := diag.NewLocation(source, node.Name.Span)
	if node.Qualified {
		return nil, nil, optional, []*diag.Diagnostic{diag.Errorf(nameLoc, "unsupported type: qualified names are not allowed")}
	}

	switch {
	case len(node.TypeParams) == 0:
		annotation, diags := e.translateBareReference(source, res, node)
		return annotation, nil, optional, diags

	case len(node.TypeParams) == 1:
		param := node.TypeParams[0]
		switch node.Name.Name {
		case "Array", "ReadOnlyArray", "ReadonlyArray":
			annotation, levels, diags := e.translateListElement(source, res, param, node.Loc)
			return annotation, levels, optional, diags

		case "IdOf":
			lit, ok := param.(*tsast.LiteralType)
			if !ok || lit.Kind != tsast.LiteralString {
				return nil, nil, optional, []*diag.Diagnostic{diag.Errorf(diag.NewLocation(source, param.Span()), "expected IdOf to be parameterized by a string literal type")}
			}
			return &ir.NamedTypeAnnotation{Name: ir.Identifier{Value: lit.Value, Span: lit.Loc}}, nil, optional, nil

		case RelayResolverValueTypeName:
			// Always optional, regardless of the surrounding nullability.
			return &ir.NamedTypeAnnotation{Name: ir.Identifier{Value: RelayResolverValueTypeName, Span: node.Loc}}, nil, true, nil

		default:
			return nil, nil, optional, []*diag.Diagnostic{diag.Errorf(loc, "unsupported generic %q", node.Name.Name)}
		}

	default:
		return nil, nil, optional, []*diag.Diagnostic{diag.Errorf(loc, "unsupported type: expected at most one type parameter")}
	}
}

// translateListElement translates the element of a list position. Semantic
// non-null tracking is disabled for elements: a resolver returning a list
// of non-null items does not need to express that a single item may be null
// due to error, so elements use classic non-null. Any inner levels shift by
// one list depth.
func (e *Extractor) translateListElement(source diag.SourceLocation, res *ModuleResolution, element tsast.Type, listSpan diag.Span) (ir.TypeAnnotation, []int, []*diag.Diagnostic) {
	inner, innerLevels, diags := e.translateType(source, res, element, false)
	if len(diags) > 0 {
		return nil, nil, diags
	}
	levels := make([]int, 0, len(innerLevels))
	for _, level := range innerLevels {
		levels = append(levels, level+1)
	}
	return &ir.ListTypeAnnotation{Type: inner, Loc: listSpan}, levels, nil
}

// translateBareReference resolves a parameterless type reference: a custom
// scalar mapping wins, otherwise the identifier must resolve to a
// previously-registered weak object.
func (e *Extractor) translateBareReference(source diag.SourceLocation, res *ModuleResolution, node *tsast.TypeRef) (ir.TypeAnnotation, []*diag.Diagnostic) {
	nameLoc := diag.NewLocation(source, node.Name.Span)

	var moduleKey ModuleKey
	var imported bool
	if res != nil {
		moduleKey, imported = res.Get(node.Name.Name)
	}

	scalarKey := CustomType{Name: node.Name.Name}
	if imported {
		scalarKey.Path = moduleKey.Module
	}
	if scalarName, ok := e.customScalars[scalarKey]; ok {
		return &ir.NamedTypeAnnotation{Name: ir.Identifier{Value: scalarName, Span: node.Name.Span}}, nil
	}

	if !imported {
		return nil, []*diag.Diagnostic{diag.Errorf(nameLoc, "expected a type definition to be imported or declared for %q", node.Name.Name)}
	}
	switch def := e.typeDefinitions[moduleKey].(type) {
	case *ir.StrongObjectIR:
		return nil, []*diag.Diagnostic{diag.Errorf(nameLoc, "strong type %q is not allowed as a return type; return a weak object or scalar instead", def.TypeName.Value)}
	case *ir.WeakObjectIR:
		return &ir.NamedTypeAnnotation{Name: ir.Identifier{Value: def.TypeName.Value, Span: node.Name.Span}}, nil
	default:
		return nil, []*diag.Diagnostic{diag.Errorf(nameLoc, "module not found for %q (%s)", node.Name.Name, moduleKey)}
	}
}

// unwrapNullable strips a null/undefined union alternative off an
// annotation. Exactly one non-null-marker member must remain; intersections
// are unsupported.
func unwrapNullable(source diag.SourceLocation, t tsast.Type) (tsast.Type, bool, *diag.Diagnostic) {
	switch node := t.(type) {
	case *tsast.IntersectionType:
		return nil, false, diag.Errorf(diag.NewLocation(source, node.Loc), "unsupported type: intersection types are not allowed")
	case *tsast.UnionType:
		optional := false
		var remaining []tsast.Type
		for _, member := range node.Members {
			if isNullMarker(member) {
				optional = true
				continue
			}
			remaining = append(remaining, member)
		}
		if len(remaining) != 1 {
			return nil, false, diag.Errorf(diag.NewLocation(source, node.Loc), "unsupported union type: expected exactly one non-null member")
		}
		return remaining[0], optional, nil
	default:
		return t, false, nil
	}
}

func isNullMarker(t tsast.Type) bool {
	keyword, ok := t.(*tsast.KeywordType)
	if !ok {
		return false
	}
	return keyword.Kind == tsast.KeywordNull || keyword.Kind == tsast.KeywordUndefined || keyword.Kind == tsast.KeywordVoid
}

func keywordScalar(k tsast.Keyword) (string, bool) {
	switch k {
	case tsast.KeywordString:
		return "String", true
	case tsast.KeywordNumber:
		// number always maps to Float; there is no separate Int mapping.
		return "Float", true
	case tsast.KeywordBoolean:
		return "Boolean", true
	default:
		return "", false
	}
}
