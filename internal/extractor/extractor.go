// Package extractor scans annotated TypeScript modules for resolver
// declarations and resolves them into schema IR. Extraction is two-phase:
// ParseDocument collects type declarations and deferred field declarations
// per file, and Resolve cross-references everything once all files are in.
package extractor

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"

	"resolvergen/internal/diag"
	"resolvergen/internal/docblock"
	"resolvergen/internal/ir"
	"resolvergen/internal/tsast"
)

// ResolverMarker tags a docblock as a resolver declaration. Statements
// without it are ignored entirely.
const ResolverMarker = "RelayResolver"

const (
	keySuffix           = "$key"
	graphqlModuleSuffix = ".graphql"
)

// Extractor accumulates declarations across every scanned file.
type Extractor struct {
	typeDefinitions   map[ModuleKey]ir.SchemaDeclaration
	defOrder          []ModuleKey
	unresolvedFields  []unresolvedField
	moduleResolutions map[diag.SourceLocation]*ModuleResolution
	customScalars     map[CustomType]string
}

// unresolvedField is a field declaration whose owning type is not known
// until every file has been scanned. Exactly one of entityType (already
// known owner name) and entityName (local identifier still to resolve) is
// set; both nil means the field attaches to Query.
type unresolvedField struct {
	fieldName    diag.WithLocation[string]
	entityType   *diag.WithLocation[string]
	entityName   *diag.WithLocation[string]
	returnType   tsast.Type
	arguments    tsast.Type
	rootFragment *ir.RootFragment
	description  *ir.StringNode
	deprecated   *ir.DeprecatedField
	live         *diag.Location
	sourceHash   string
	source       diag.SourceLocation
	location     diag.Location
}

// NewExtractor builds an extractor with an inverted custom scalar lookup,
// as produced by InvertCustomScalarMap.
func NewExtractor(customScalars map[CustomType]string) *Extractor {
	return &Extractor{
		typeDefinitions:   make(map[ModuleKey]ir.SchemaDeclaration),
		moduleResolutions: make(map[diag.SourceLocation]*ModuleResolution),
		customScalars:     customScalars,
	}
}

// ParseDocument scans one source file. All recoverable errors are returned
// as a batch; a failing statement never stops the scan of the rest of the
// file. fragmentDefinitions are the project's GraphQL fragments, used to
// resolve fragment-backed entity parameters.
func (e *Extractor) ParseDocument(path string, text string, fragmentDefinitions []*ir.FragmentDefinition) []*diag.Diagnostic {
	source := diag.Standalone(path)
	sum := md5.Sum([]byte(text))
	sourceHash := hex.EncodeToString(sum[:])

	module, err := tsast.ParseModule(path, []byte(text))
	if err != nil {
		return []*diag.Diagnostic{diag.Errorf(diag.NewLocation(source, diag.Span{}), "%v", err)}
	}
	e.moduleResolutions[source] = BuildModuleResolution(module, source)

	var diagnostics []*diag.Diagnostic

	for _, stmt := range module.Statements {
		if stmt.Comment == nil || !strings.Contains(stmt.Comment.Text, "@"+ResolverMarker) {
			continue
		}
		block := docblock.Parse(stmt.Comment.Text, stmt.Comment.Span)
		marker := block.Find(ResolverMarker)
		if marker == nil {
			continue
		}

		scope := statementScope{
			source:     source,
			sourceHash: sourceHash,
			stmt:       stmt,
			block:      block,
			marker:     marker,
		}
		switch decl := stmt.Decl.(type) {
		case *tsast.FunctionDecl:
			diagnostics = append(diagnostics, e.addFieldDefinition(scope, decl, fragmentDefinitions)...)
		case *tsast.TypeAliasDecl:
			diagnostics = append(diagnostics, e.addTypeDeclaration(scope, decl)...)
		default:
			span := stmt.Comment.Span.Between(stmt.Span)
			diagnostics = append(diagnostics, diag.Errorf(
				diag.NewLocation(source, span),
				"expected a resolver to be a function declaration or a type alias",
			))
		}
	}
	return diagnostics
}

// statementScope bundles the per-statement context shared by the field and
// type paths.
type statementScope struct {
	source     diag.SourceLocation
	sourceHash string
	stmt       *tsast.Statement
	block      *docblock.Docblock
	marker     *docblock.Section
}

func (s statementScope) description() *ir.StringNode {
	if s.block.Description == "" {
		return nil
	}
	return &ir.StringNode{Value: s.block.Description, Span: s.block.DescriptionSpan}
}

func (s statementScope) deprecated() *ir.DeprecatedField {
	section := s.block.Find("deprecated")
	if section == nil {
		return nil
	}
	span := section.KeySpan
	if section.Value != "" {
		span = section.ValueSpan
	}
	return &ir.DeprecatedField{Reason: section.Value, Location: diag.NewLocation(s.source, span)}
}

// declaredName resolves the effective declaration name: the marker value
// when present, the declaration identifier otherwise.
func (s statementScope) declaredName(fallback tsast.Ident) diag.WithLocation[string] {
	if s.marker.Value != "" {
		return diag.WithLoc(s.marker.Value, diag.NewLocation(s.source, s.marker.ValueSpan))
	}
	return diag.WithLoc(fallback.Name, diag.NewLocation(s.source, fallback.Span))
}

// addFieldDefinition turns a resolver function into a deferred field
// declaration. The declared name must look like a field: a lowercase first
// letter, or a dotted Type.field form that presets the owning type.
func (e *Extractor) addFieldDefinition(scope statementScope, fn *tsast.FunctionDecl, fragmentDefinitions []*ir.FragmentDefinition) []*diag.Diagnostic {
	name := scope.declaredName(fn.Name)

	field := unresolvedField{
		fieldName:   name,
		description: scope.description(),
		deprecated:  scope.deprecated(),
		sourceHash:  scope.sourceHash,
		source:      scope.source,
		location:    diag.NewLocation(scope.source, scope.stmt.Span),
	}

	switch {
	case strings.Contains(name.Item, "."):
		entitySegment, fieldSegment, _ := strings.Cut(name.Item, ".")
		cut := name.Location.Span.Start + uint32(len(entitySegment))
		entity := diag.WithLoc(entitySegment, diag.NewLocation(scope.source, diag.NewSpan(name.Location.Span.Start, cut)))
		field.entityType = &entity
		field.fieldName = diag.WithLoc(fieldSegment, diag.NewLocation(scope.source, diag.NewSpan(cut+1, name.Location.Span.End)))
	case startsLower(name.Item):
		// Owner comes from the first parameter, handled below.
	default:
		return []*diag.Diagnostic{diag.Errorf(name.Location, "expected a field name to start with a lowercase letter, or to use the Type.field form")}
	}

	returnType, live, d := extractReturnType(fn, scope.stmt.Span, scope.source)
	if d != nil {
		return []*diag.Diagnostic{d}
	}
	field.returnType = returnType
	field.live = live

	arguments, d := extractArguments(fn, scope.source)
	if d != nil {
		return []*diag.Diagnostic{d}
	}
	field.arguments = arguments

	if field.entityType == nil {
		entityAnnotation, d := extractEntityType(fn, scope.source)
		if d != nil {
			return []*diag.Diagnostic{d}
		}
		if entityAnnotation != nil {
			diagnostics := e.bindEntity(&field, entityAnnotation, fragmentDefinitions)
			if len(diagnostics) > 0 {
				return diagnostics
			}
		}
	}

	e.unresolvedFields = append(e.unresolvedFields, field)
	return nil
}

// bindEntity classifies the first-parameter annotation: a built-in scalar
// presets the owner, a `<Fragment>$key` reference imported from a generated
// .graphql module binds a root fragment and presets the fragment's type
// condition, and any other imported name is deferred to global resolution.
func (e *Extractor) bindEntity(field *unresolvedField, entityAnnotation tsast.Type, fragmentDefinitions []*ir.FragmentDefinition) []*diag.Diagnostic {
	entityName, d := extractEntityName(entityAnnotation, field.source)
	if d != nil {
		return []*diag.Diagnostic{d}
	}

	if _, isKeyword := entityAnnotation.(*tsast.KeywordType); isKeyword {
		field.entityType = &entityName
		return nil
	}

	res := e.moduleResolutions[field.source]
	var key ModuleKey
	var ok bool
	if res != nil {
		key, ok = res.Get(entityName.Item)
	}
	if !ok {
		return []*diag.Diagnostic{diag.Errorf(entityName.Location, "expected the entity type %q to be imported or declared in this module", entityName.Item)}
	}

	if strings.HasSuffix(key.Module, graphqlModuleSuffix) && strings.HasSuffix(entityName.Item, keySuffix) {
		fragmentName := strings.TrimSuffix(entityName.Item, keySuffix)
		fragment, d := ir.AssertFragmentDefinition(entityName, fragmentName, fragmentDefinitions)
		if d != nil {
			return []*diag.Diagnostic{d}
		}
		condition := diag.WithLoc(fragment.TypeCondition, diag.NewLocation(fragment.Location.Source, fragment.TypeConditionSpan))
		field.entityType = &condition
		field.rootFragment = &ir.RootFragment{
			Name:      fragment.Name,
			Location:  fragment.Location,
			Arguments: fragment.ArgumentDefinitions,
		}
		return nil
	}

	field.entityName = &entityName
	return nil
}

// addTypeDeclaration turns a resolver type alias into a schema declaration.
// An alias of a named type declares a strong object backed by that model
// type; an alias of a literal object declares a weak object whose
// properties become fields.
func (e *Extractor) addTypeDeclaration(scope statementScope, alias *tsast.TypeAliasDecl) []*diag.Diagnostic {
	name := scope.declaredName(alias.Name)

	switch value := alias.Value.(type) {
	case *tsast.TypeRef:
		return e.addStrongTypeDefinition(scope, alias, name, value)
	case *tsast.ObjectType:
		return e.addWeakTypeDefinition(scope, alias, name, value)
	default:
		return []*diag.Diagnostic{diag.Errorf(
			diag.NewLocation(scope.source, alias.Value.Span()),
			"expected a resolver type alias to name a model type or declare a literal object",
		)}
	}
}

func (e *Extractor) addStrongTypeDefinition(scope statementScope, alias *tsast.TypeAliasDecl, name diag.WithLocation[string], model *tsast.TypeRef) []*diag.Diagnostic {
	res := e.moduleResolutions[scope.source]
	binding, ok := res.Binding(model.Name.Name)
	if !ok {
		return []*diag.Diagnostic{diag.Errorf(
			diag.NewLocation(scope.source, model.Name.Span),
			"expected the model type %q to be imported or declared in this module",
			model.Name.Name,
		)}
	}
	if binding.Key.Kind == ImportNamespace {
		d := diag.Errorf(
			diag.NewLocation(scope.source, model.Name.Span),
			"namespace imports are not supported for model types",
		)
		d.Annotate("the namespace is imported here", binding.Location)
		return []*diag.Diagnostic{d}
	}

	var live *diag.Location
	if section := scope.block.Find("live"); section != nil {
		loc := diag.NewLocation(scope.source, section.KeySpan)
		live = &loc
	}

	decl := &ir.StrongObjectIR{
		TypeName:     ir.Identifier{Value: name.Item, Span: name.Location.Span},
		Location:     name.Location,
		RootFragment: name.Item + "__id",
		Description:  scope.description(),
		Live:         live,
		SourceHash:   scope.sourceHash,
	}
	return e.insertTypeDefinition(aliasKey(scope, alias), decl)
}

// addWeakTypeDefinition registers a weak object and synthesizes a deferred
// field per object property, so weak shapes surface in the schema without a
// resolver function each.
func (e *Extractor) addWeakTypeDefinition(scope statementScope, alias *tsast.TypeAliasDecl, name diag.WithLocation[string], object *tsast.ObjectType) []*diag.Diagnostic {
	if len(object.Members) == 0 {
		return []*diag.Diagnostic{diag.Errorf(
			diag.NewLocation(scope.source, object.Loc),
			"expected the weak object %q to declare at least one field",
			name.Item,
		)}
	}

	decl := &ir.WeakObjectIR{
		TypeName:    ir.Identifier{Value: name.Item, Span: name.Location.Span},
		Location:    name.Location,
		Description: scope.description(),
		SourceHash:  scope.sourceHash,
	}
	diagnostics := e.insertTypeDefinition(aliasKey(scope, alias), decl)

	for _, prop := range object.Members {
		if prop.Key.Name == "" || prop.Type == nil {
			diagnostics = append(diagnostics, diag.Errorf(
				diag.NewLocation(scope.source, prop.Span),
				"expected the weak object field to be a named property with a type annotation",
			))
			continue
		}
		owner := diag.WithLoc(name.Item, name.Location)
		e.unresolvedFields = append(e.unresolvedFields, unresolvedField{
			fieldName:  diag.WithLoc(prop.Key.Name, diag.NewLocation(scope.source, prop.Key.Span)),
			entityType: &owner,
			returnType: prop.Type,
			sourceHash: scope.sourceHash,
			source:     scope.source,
			location:   diag.NewLocation(scope.source, prop.Span),
		})
	}
	return diagnostics
}

// aliasKey is the module key other files use to reference this alias: its
// named export from the declaring module.
func aliasKey(scope statementScope, alias *tsast.TypeAliasDecl) ModuleKey {
	return ModuleKey{
		Module: scope.source.Path(),
		Kind:   ImportNamed,
		Name:   alias.Name.Name,
	}
}

// insertTypeDefinition registers a declaration under its module key. The
// first registration wins; later ones report a duplicate pointing back at
// the original.
func (e *Extractor) insertTypeDefinition(key ModuleKey, decl ir.SchemaDeclaration) []*diag.Diagnostic {
	if existing, ok := e.typeDefinitions[key]; ok {
		d := diag.Errorf(decl.DeclarationLocation(), "duplicate resolver type definition for %q", decl.DeclarationName().Value)
		d.Annotate("the previous definition is here", existing.DeclarationLocation())
		return []*diag.Diagnostic{d}
	}
	e.typeDefinitions[key] = decl
	e.defOrder = append(e.defOrder, key)
	return nil
}

// Resolve cross-references every deferred field against the accumulated
// type table and translates annotations into schema IR. Every field is
// attempted so one failure does not hide the rest; any diagnostic makes the
// whole result unusable.
func (e *Extractor) Resolve() ([]ir.SchemaDeclaration, []ir.ResolvedFieldIR, []*diag.Diagnostic) {
	declarations := make([]ir.SchemaDeclaration, 0, len(e.defOrder))
	for _, key := range e.defOrder {
		declarations = append(declarations, e.typeDefinitions[key])
	}

	var diagnostics []*diag.Diagnostic
	fields := make([]ir.ResolvedFieldIR, 0, len(e.unresolvedFields))
	for i := range e.unresolvedFields {
		field, fieldDiags := e.resolveField(&e.unresolvedFields[i])
		if len(fieldDiags) > 0 {
			diagnostics = append(diagnostics, fieldDiags...)
			continue
		}
		fields = append(fields, field)
	}

	if len(diagnostics) > 0 {
		diag.Sort(diagnostics)
		return nil, nil, diagnostics
	}
	return declarations, fields, nil
}

func (e *Extractor) resolveField(f *unresolvedField) (ir.ResolvedFieldIR, []*diag.Diagnostic) {
	res := e.moduleResolutions[f.source]

	owner, d := e.resolveOwner(f, res)
	if d != nil {
		return ir.ResolvedFieldIR{}, []*diag.Diagnostic{d}
	}

	var diagnostics []*diag.Diagnostic
	var arguments []ir.InputValueDefinition
	if f.arguments != nil {
		var argDiags []*diag.Diagnostic
		arguments, argDiags = e.translateArguments(f.source, res, f.arguments)
		diagnostics = append(diagnostics, argDiags...)
	}
	if f.rootFragment != nil {
		diagnostics = append(diagnostics, ir.ValidateFragmentArguments(arguments, f.rootFragment)...)
	}

	annotation, levels, typeDiags := e.translateType(f.source, res, f.returnType, true)
	diagnostics = append(diagnostics, typeDiags...)
	if len(diagnostics) > 0 {
		return ir.ResolvedFieldIR{}, diagnostics
	}

	return ir.ResolvedFieldIR{
		Field: ir.FieldDefinition{
			Name:        ir.Identifier{Value: f.fieldName.Item, Span: f.fieldName.Location.Span},
			Type:        annotation,
			Arguments:   arguments,
			Description: f.description,
			Span:        f.fieldName.Location.Span,
		},
		TypeName:        owner,
		RootFragment:    f.rootFragment,
		Location:        f.location,
		Deprecated:      f.deprecated,
		Live:            f.live,
		SemanticNonNull: levels,
		SourceHash:      f.sourceHash,
	}, nil
}

// resolveOwner determines the type a field attaches to: a preset owner
// passes through, a deferred entity name resolves through the module index
// into the type table, and a field with no entity attaches to Query.
func (e *Extractor) resolveOwner(f *unresolvedField, res *ModuleResolution) (diag.WithLocation[string], *diag.Diagnostic) {
	if f.entityType != nil {
		return *f.entityType, nil
	}
	if f.entityName == nil {
		return diag.WithLoc("Query", f.fieldName.Location), nil
	}

	var key ModuleKey
	var ok bool
	if res != nil {
		key, ok = res.Get(f.entityName.Item)
	}
	if !ok {
		return diag.WithLocation[string]{}, diag.Errorf(f.entityName.Location, "expected the entity type %q to be imported or declared in this module", f.entityName.Item)
	}
	def, ok := e.typeDefinitions[key]
	if !ok {
		return diag.WithLocation[string]{}, diag.Errorf(f.entityName.Location, "module not found for %q (%s)", f.entityName.Item, key)
	}
	return diag.WithLoc(def.DeclarationName().Value, f.entityName.Location), nil
}

func startsLower(name string) bool {
	for _, r := range name {
		return unicode.IsLower(r)
	}
	return false
}
