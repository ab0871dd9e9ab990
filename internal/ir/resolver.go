package ir

import "resolvergen/internal/diag"

// SchemaDeclaration is a resolver-declared GraphQL type: either a strong
// object (server-resolvable identity) or a weak object (plain value shape).
type SchemaDeclaration interface {
	DeclarationName() Identifier
	DeclarationLocation() diag.Location
	schemaDeclaration()
}

// StrongObjectIR declares a strong object type. RootFragment is the
// synthesized identity fragment, always `<TypeName>__id`.
type StrongObjectIR struct {
	TypeName     Identifier     `json:"type_name"`
	Location     diag.Location  `json:"location"`
	RootFragment string         `json:"root_fragment"`
	Description  *StringNode    `json:"description,omitempty"`
	Live         *diag.Location `json:"live,omitempty"`
	SourceHash   string         `json:"source_hash"`
}

// WeakObjectIR declares a weak object type.
type WeakObjectIR struct {
	TypeName    Identifier    `json:"type_name"`
	Location    diag.Location `json:"location"`
	Description *StringNode   `json:"description,omitempty"`
	SourceHash  string        `json:"source_hash"`
}

func (s *StrongObjectIR) DeclarationName() Identifier        { return s.TypeName }
func (s *StrongObjectIR) DeclarationLocation() diag.Location { return s.Location }
func (*StrongObjectIR) schemaDeclaration()                   {}

func (w *WeakObjectIR) DeclarationName() Identifier        { return w.TypeName }
func (w *WeakObjectIR) DeclarationLocation() diag.Location { return w.Location }
func (*WeakObjectIR) schemaDeclaration()                   {}

// RootFragment is a fragment a resolver field reads from, with the
// arguments the fragment declares.
type RootFragment struct {
	Name      string                       `json:"name"`
	Location  diag.Location                `json:"location"`
	Arguments []FragmentArgumentDefinition `json:"arguments,omitempty"`
}

// DeprecatedField is the deprecation marker of a resolver field. Reason may
// be empty when the marker carries no text.
type DeprecatedField struct {
	Reason   string        `json:"reason,omitempty"`
	Location diag.Location `json:"location"`
}

// ResolvedFieldIR is one fully-resolved resolver field declaration.
// SemanticNonNull lists the nesting depths (0 = the field itself) at which
// the value is statically non-null but may resolve to null on a recoverable
// error.
type ResolvedFieldIR struct {
	Field           FieldDefinition              `json:"field"`
	TypeName        diag.WithLocation[string]    `json:"type_name"`
	RootFragment    *RootFragment                `json:"root_fragment,omitempty"`
	Location        diag.Location                `json:"location"`
	Deprecated      *DeprecatedField             `json:"deprecated,omitempty"`
	Live            *diag.Location               `json:"live,omitempty"`
	SemanticNonNull []int                        `json:"semantic_non_null,omitempty"`
	SourceHash      string                       `json:"source_hash"`
}
