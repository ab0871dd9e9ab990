package extractor

import (
	"resolvergen/internal/diag"
	"resolvergen/internal/tsast"
)

// LiveStateTypeName is the generic wrapper marking a live resolver: a
// return type of LiveState<T> unwraps to T and records the field as live.
const LiveStateTypeName = "LiveState"

// extractReturnType pulls the return-type annotation off a resolver
// function, unwrapping LiveState<T>. The second result is the location of
// the live marker, nil for plain resolvers.
func extractReturnType(fn *tsast.FunctionDecl, stmtSpan diag.Span, source diag.SourceLocation) (tsast.Type, *diag.Location, *diag.Diagnostic) {
	if fn.ReturnType == nil {
		return nil, nil, diag.Errorf(diag.NewLocation(source, stmtSpan), "expected the resolver function to have a return type annotation")
	}

	ref, ok := fn.ReturnType.(*tsast.TypeRef)
	if !ok {
		return fn.ReturnType, nil, nil
	}
	if ref.Qualified {
		return nil, nil, diag.Errorf(diag.NewLocation(source, ref.Loc), "unsupported type: qualified names are not allowed in resolver return types")
	}
	if len(ref.TypeParams) > 1 {
		return nil, nil, diag.Errorf(diag.NewLocation(source, ref.Loc), "unsupported type: expected at most one type parameter")
	}
	if ref.Name.Name != LiveStateTypeName {
		return fn.ReturnType, nil, nil
	}

	if len(ref.TypeParams) != 1 {
		return nil, nil, diag.Errorf(diag.NewLocation(source, ref.Loc), "expected %s to have a single type parameter", LiveStateTypeName)
	}
	live := diag.NewLocation(source, stmtSpan)
	return ref.TypeParams[0], &live, nil
}

// extractEntityType pulls the type annotation of the first parameter, which
// names the entity the field belongs to. A resolver with no parameters has
// no entity and attaches to Query.
func extractEntityType(fn *tsast.FunctionDecl, source diag.SourceLocation) (tsast.Type, *diag.Diagnostic) {
	if len(fn.Params) == 0 {
		return nil, nil
	}
	param := fn.Params[0]
	if !param.IsIdent {
		return nil, diag.Errorf(diag.NewLocation(source, param.Span), "unsupported type: %s", param.Raw)
	}
	if param.Type == nil {
		return nil, diag.Errorf(diag.NewLocation(source, param.Span), "expected the entity parameter to have a type annotation")
	}
	return param.Type, nil
}

// extractArguments pulls the type annotation of the second parameter, which
// declares the field's GraphQL arguments as an object type.
func extractArguments(fn *tsast.FunctionDecl, source diag.SourceLocation) (tsast.Type, *diag.Diagnostic) {
	if len(fn.Params) < 2 {
		return nil, nil
	}
	param := fn.Params[1]
	if !param.IsIdent {
		return nil, nil
	}
	if param.Type == nil {
		return nil, diag.Errorf(diag.NewLocation(source, param.Span), "expected the arguments parameter to have a type annotation")
	}
	return param.Type, nil
}

// extractEntityName turns an entity type annotation into the local name it
// references: bare type references pass through, and the string/number
// keywords name the built-in String/Float scalars.
func extractEntityName(entity tsast.Type, source diag.SourceLocation) (diag.WithLocation[string], *diag.Diagnostic) {
	loc := diag.NewLocation(source, entity.Span())
	switch t := entity.(type) {
	case *tsast.TypeRef:
		if t.Qualified {
			return diag.WithLocation[string]{}, diag.Errorf(loc, "unsupported type: qualified names are not allowed for entity types")
		}
		if len(t.TypeParams) > 0 {
			return diag.WithLocation[string]{}, diag.Errorf(loc, "unsupported type: entity types cannot be generic")
		}
		return diag.WithLoc(t.Name.Name, diag.NewLocation(source, t.Name.Span)), nil
	case *tsast.KeywordType:
		switch t.Kind {
		case tsast.KeywordString:
			return diag.WithLoc("String", loc), nil
		case tsast.KeywordNumber:
			return diag.WithLoc("Float", loc), nil
		}
	}
	return diag.WithLocation[string]{}, diag.Errorf(loc, "unsupported type for an entity")
}
