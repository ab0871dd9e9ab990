package ir

import (
	"fmt"

	"resolvergen/internal/diag"
)

// Identifier is a schema identifier with its source span.
type Identifier struct {
	Value string    `json:"value"`
	Span  diag.Span `json:"span"`
}

// TypeAnnotation is a GraphQL type annotation. The variant set is closed:
// Named, List and NonNull.
type TypeAnnotation interface {
	Span() diag.Span
	String() string
	typeAnnotation()
}

// NamedTypeAnnotation references a type by name.
type NamedTypeAnnotation struct {
	Name Identifier `json:"name"`
}

// ListTypeAnnotation wraps an inner annotation in a GraphQL list.
type ListTypeAnnotation struct {
	Type TypeAnnotation `json:"type"`
	Loc  diag.Span      `json:"span"`
}

// NonNullTypeAnnotation wraps an inner annotation in a classic `!`.
type NonNullTypeAnnotation struct {
	Type TypeAnnotation `json:"type"`
	Loc  diag.Span      `json:"span"`
}

func (a *NamedTypeAnnotation) Span() diag.Span   { return a.Name.Span }
func (a *ListTypeAnnotation) Span() diag.Span    { return a.Loc }
func (a *NonNullTypeAnnotation) Span() diag.Span { return a.Loc }

func (a *NamedTypeAnnotation) String() string   { return a.Name.Value }
func (a *ListTypeAnnotation) String() string    { return fmt.Sprintf("[%s]", a.Type) }
func (a *NonNullTypeAnnotation) String() string { return a.Type.String() + "!" }

func (*NamedTypeAnnotation) typeAnnotation()   {}
func (*ListTypeAnnotation) typeAnnotation()    {}
func (*NonNullTypeAnnotation) typeAnnotation() {}

// StringNode is a string value with its source span, used for descriptions.
type StringNode struct {
	Value string    `json:"value"`
	Span  diag.Span `json:"span"`
}

// InputValueDefinition is one argument of a schema field.
type InputValueDefinition struct {
	Name Identifier     `json:"name"`
	Type TypeAnnotation `json:"type"`
	Span diag.Span      `json:"span"`
}

// FieldDefinition is one schema field declaration.
type FieldDefinition struct {
	Name        Identifier             `json:"name"`
	Type        TypeAnnotation         `json:"type"`
	Arguments   []InputValueDefinition `json:"arguments,omitempty"`
	Description *StringNode            `json:"description,omitempty"`
	Span        diag.Span              `json:"span"`
}
