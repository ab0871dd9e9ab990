// Package ir holds the compiler-internal GraphQL IR: executable documents as
// produced by the upstream compilation pipeline, and the resolver schema IR
// produced by extraction.
package ir

import (
	"sort"

	"resolvergen/internal/diag"
)

// DocumentIdentity identifies a logical GraphQL document: its declared name
// plus the source file it originated from. Definitions of the same document
// across independently-produced programs share this identity.
type DocumentIdentity struct {
	Name   string              `json:"name"`
	Source diag.SourceLocation `json:"source"`
}

// OperationDefinition is one operation as it appears in a single program.
type OperationDefinition struct {
	Name       string        `json:"name"`
	Location   diag.Location `json:"location"`
	Directives DirectiveList `json:"directives,omitempty"`
}

// Identity returns the document identity used for cross-program grouping.
func (o *OperationDefinition) Identity() DocumentIdentity {
	return DocumentIdentity{Name: o.Name, Source: o.Location.Source}
}

// FragmentArgumentDefinition is one argument declared by a fragment via
// @argumentDefinitions.
type FragmentArgumentDefinition struct {
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	HasDefault bool          `json:"has_default,omitempty"`
	Location   diag.Location `json:"location"`
}

// FragmentDefinition is one fragment as it appears in a single program.
type FragmentDefinition struct {
	Name                string                       `json:"name"`
	TypeCondition       string                       `json:"type_condition"`
	TypeConditionSpan   diag.Span                    `json:"type_condition_span"`
	Location            diag.Location                `json:"location"`
	Directives          DirectiveList                `json:"directives,omitempty"`
	ArgumentDefinitions []FragmentArgumentDefinition `json:"argument_definitions,omitempty"`
}

// Identity returns the document identity used for cross-program grouping.
func (f *FragmentDefinition) Identity() DocumentIdentity {
	return DocumentIdentity{Name: f.Name, Source: f.Location.Source}
}

// Program is one sub-program of the compilation pipeline (normalization,
// reader, typegen or operation-text form of every document).
type Program struct {
	Operations []*OperationDefinition `json:"operations,omitempty"`
	Fragments  []*FragmentDefinition  `json:"fragments,omitempty"`

	fragmentsByName map[string]*FragmentDefinition
}

// NewProgram builds a program from its definitions.
func NewProgram(operations []*OperationDefinition, fragments []*FragmentDefinition) *Program {
	return &Program{Operations: operations, Fragments: fragments}
}

// Fragment looks up a fragment by name in constant time.
func (p *Program) Fragment(name string) (*FragmentDefinition, bool) {
	if p.fragmentsByName == nil {
		p.fragmentsByName = make(map[string]*FragmentDefinition, len(p.Fragments))
		for _, f := range p.Fragments {
			p.fragmentsByName[f.Name] = f
		}
	}
	f, ok := p.fragmentsByName[name]
	return f, ok
}

// Programs is the set of parallel per-document programs produced by the
// upstream pipeline for one project.
type Programs struct {
	Source        *Program `json:"source"`
	Normalization *Program `json:"normalization"`
	Reader        *Program `json:"reader"`
	Typegen       *Program `json:"typegen"`
	OperationText *Program `json:"operation_text"`
}

// SourceHashes maps document identity to the content hash of its source
// text. Hashes are computed upstream and consumed here for staleness
// tracking only.
type SourceHashes map[DocumentIdentity]string

// SourceHashEntry is the serialized form of one SourceHashes entry.
type SourceHashEntry struct {
	Identity DocumentIdentity `json:"identity"`
	Hash     string           `json:"hash"`
}

// SourceHashesFromEntries builds the lookup table from its serialized form.
func SourceHashesFromEntries(entries []SourceHashEntry) SourceHashes {
	hashes := make(SourceHashes, len(entries))
	for _, e := range entries {
		hashes[e.Identity] = e.Hash
	}
	return hashes
}

// Entries returns the serialized form of the table, ordered by identity.
func (h SourceHashes) Entries() []SourceHashEntry {
	entries := make([]SourceHashEntry, 0, len(h))
	for id, hash := range h {
		entries = append(entries, SourceHashEntry{Identity: id, Hash: hash})
	}
	sort.Slice(entries, func(i, j int) bool {
		return LessIdentity(entries[i].Identity, entries[j].Identity)
	})
	return entries
}

// LessIdentity orders document identities by source file, then name.
func LessIdentity(a, b DocumentIdentity) bool {
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Name < b.Name
}
