// Package artifact merges the parallel per-document programs of one project
// into generation-ready artifact descriptors: one output file per document,
// or one per source file in mixed output mode.
package artifact

import (
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
)

// SourceKeyKind distinguishes how an artifact is attributed back to its
// origin for staleness tracking.
type SourceKeyKind string

const (
	// SourceKeyExecutableDefinition attributes an artifact to a named
	// document in a source file.
	SourceKeyExecutableDefinition SourceKeyKind = "executable_definition"
	// SourceKeyResolverHash attributes an artifact to the content hash of
	// the resolver that generated it.
	SourceKeyResolverHash SourceKeyKind = "resolver_hash"
)

// SourceKey ties an artifact to the input that produced it. Removing the
// input invalidates every artifact keyed to it.
type SourceKey struct {
	Kind         SourceKeyKind       `json:"kind"`
	Definition   ir.DocumentIdentity `json:"definition,omitempty"`
	ResolverHash string              `json:"resolver_hash,omitempty"`
}

// ExecutableDefinitionKey attributes an artifact to a document identity.
func ExecutableDefinitionKey(identity ir.DocumentIdentity) SourceKey {
	return SourceKey{Kind: SourceKeyExecutableDefinition, Definition: identity}
}

// ResolverHashKey attributes an artifact to a resolver content hash.
func ResolverHashKey(hash string) SourceKey {
	return SourceKey{Kind: SourceKeyResolverHash, ResolverHash: hash}
}

// Content is the typed payload of one artifact. The variant set is closed:
// operation, split operation, updatable query, fragment, and the mixed
// per-file merge.
type Content interface {
	Kind() string
}

// OperationContent is a regular query, mutation or subscription artifact.
type OperationContent struct {
	Normalization *ir.OperationDefinition
	OperationText string
	Reader        *ir.OperationDefinition
	Typegen       *ir.OperationDefinition
	SourceHash    string
}

// SplitOperationContent is a @module/@no_inline split operation artifact.
// Typegen mirrors the normalization form and is nil unless the metadata
// declares a raw-response generation mode; NoOptionalFieldsInRawResponseType
// is set when that mode requires every raw-response field.
type SplitOperationContent struct {
	Normalization                     *ir.OperationDefinition
	Typegen                           *ir.OperationDefinition
	NoOptionalFieldsInRawResponseType bool
	SourceHash                        string
}

// UpdatableQueryContent is an @updatable query artifact. Updatable queries
// are never executed, so they carry reader and typegen forms only.
type UpdatableQueryContent struct {
	Reader     *ir.OperationDefinition
	Typegen    *ir.OperationDefinition
	SourceHash string
}

// FragmentContent is a fragment artifact: the reader form plus its typegen
// counterpart.
type FragmentContent struct {
	Reader     *ir.FragmentDefinition
	Typegen    *ir.FragmentDefinition
	SourceHash string
}

// MixedDocumentsContent merges every artifact of one source file into a
// single output, preserving the order the artifacts were produced in.
type MixedDocumentsContent struct {
	Contents []Content
}

func (*OperationContent) Kind() string      { return "operation" }
func (*SplitOperationContent) Kind() string { return "split_operation" }
func (*UpdatableQueryContent) Kind() string { return "updatable_query" }
func (*FragmentContent) Kind() string       { return "fragment" }
func (*MixedDocumentsContent) Kind() string { return "mixed_documents" }

// Artifact is one pending output file.
type Artifact struct {
	SourceKeys []SourceKey
	Path       string
	Content    Content
	SourceFile diag.SourceLocation
}
