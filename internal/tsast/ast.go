package tsast

import "resolvergen/internal/diag"

// Module is one parsed TypeScript source file: its top-level statements with
// their leading comments attached.
type Module struct {
	Path       string
	Statements []*Statement
}

// Statement is a top-level module statement. Comment is the contiguous block
// of leading comments immediately above it, nil when there is none.
type Statement struct {
	Span     diag.Span
	Comment  *Comment
	Exported bool
	Decl     Decl
}

// Comment holds the cleaned-up text of a leading comment block and the span
// it covers in the source.
type Comment struct {
	Text string
	Span diag.Span
}

// Decl is the declaration shape of a statement.
type Decl interface{ declNode() }

// FunctionDecl is a (possibly exported) function declaration.
type FunctionDecl struct {
	Name       Ident
	Params     []Param
	ReturnType Type // nil when the annotation is missing
}

// Param is one function parameter. Type is nil when the annotation is
// missing; IsIdent is false for destructuring and rest patterns.
type Param struct {
	Name    Ident
	Type    Type
	IsIdent bool
	Raw     string
	Span    diag.Span
}

// TypeAliasDecl is a `type Name = ...` declaration.
type TypeAliasDecl struct {
	Name  Ident
	Value Type
}

// ImportDecl is an `import ... from "module"` statement.
type ImportDecl struct {
	Source     string
	Specifiers []ImportSpecifier
}

// ImportSpecifierKind distinguishes the three binding forms of an import.
type ImportSpecifierKind int

const (
	ImportNamed ImportSpecifierKind = iota
	ImportDefault
	ImportNamespace
)

// ImportSpecifier is one local binding introduced by an import statement.
// Imported is the original exported name for named imports.
type ImportSpecifier struct {
	Kind     ImportSpecifierKind
	Local    Ident
	Imported string
}

// OtherDecl is any top-level statement the pipeline does not model.
type OtherDecl struct {
	Kind string
}

func (*FunctionDecl) declNode()  {}
func (*TypeAliasDecl) declNode() {}
func (*ImportDecl) declNode()    {}
func (*OtherDecl) declNode()     {}

// Ident is an identifier with its source span.
type Ident struct {
	Name string
	Span diag.Span
}

// Type is one parsed type annotation. The variant set is closed; consumers
// dispatch exhaustively over it.
type Type interface {
	Span() diag.Span
	typeNode()
}

// Keyword is a primitive type keyword.
type Keyword string

const (
	KeywordString    Keyword = "string"
	KeywordNumber    Keyword = "number"
	KeywordBoolean   Keyword = "boolean"
	KeywordNull      Keyword = "null"
	KeywordUndefined Keyword = "undefined"
	KeywordVoid      Keyword = "void"
	KeywordUnknown   Keyword = "unknown"
	KeywordAny       Keyword = "any"
	KeywordNever     Keyword = "never"
)

// KeywordType is a primitive keyword annotation like `string` or `null`.
type KeywordType struct {
	Kind Keyword
	Loc  diag.Span
}

// TypeRef is a reference to a named type, with optional generic parameters.
// Qualified is set for dotted references like `Ns.Type`.
type TypeRef struct {
	Name       Ident
	Qualified  bool
	TypeParams []Type
	Loc        diag.Span
}

// UnionType is `A | B | ...`, flattened.
type UnionType struct {
	Members []Type
	Loc     diag.Span
}

// IntersectionType is `A & B & ...`, flattened.
type IntersectionType struct {
	Members []Type
	Loc     diag.Span
}

// ObjectType is an inline literal object type.
type ObjectType struct {
	Members []Property
	Loc     diag.Span
}

// Property is one property signature of an object type. Key.Name is empty
// for non-identifier keys.
type Property struct {
	Key  Ident
	Type Type // nil when the annotation is missing
	Span diag.Span
}

// LiteralKind distinguishes literal type shapes.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralBool
	LiteralNumber
)

// LiteralType is a literal type like `"Foo"` or `true`.
type LiteralType struct {
	Kind  LiteralKind
	Value string
	Loc   diag.Span
}

// ArrayType is the `T[]` shorthand.
type ArrayType struct {
	Element Type
	Loc     diag.Span
}

// OpaqueType is any annotation shape the pipeline does not model. Raw holds
// the source text for diagnostics.
type OpaqueType struct {
	Raw string
	Loc diag.Span
}

func (t *KeywordType) Span() diag.Span      { return t.Loc }
func (t *TypeRef) Span() diag.Span          { return t.Loc }
func (t *UnionType) Span() diag.Span        { return t.Loc }
func (t *IntersectionType) Span() diag.Span { return t.Loc }
func (t *ObjectType) Span() diag.Span       { return t.Loc }
func (t *LiteralType) Span() diag.Span      { return t.Loc }
func (t *ArrayType) Span() diag.Span        { return t.Loc }
func (t *OpaqueType) Span() diag.Span       { return t.Loc }

func (*KeywordType) typeNode()      {}
func (*TypeRef) typeNode()          {}
func (*UnionType) typeNode()        {}
func (*IntersectionType) typeNode() {}
func (*ObjectType) typeNode()       {}
func (*LiteralType) typeNode()      {}
func (*ArrayType) typeNode()        {}
func (*OpaqueType) typeNode()       {}
