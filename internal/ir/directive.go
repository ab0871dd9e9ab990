package ir

import (
	"encoding/json"

	"resolvergen/internal/diag"
)

// Names of the compiler-internal metadata directives attached by upstream
// transforms, plus the user-facing @updatable marker.
const (
	DirectiveSplitOperation           = "__splitOperationMetadata"
	DirectiveRefetchableDerivedFrom   = "__refetchableDerivedFrom"
	DirectiveClientEdgeGeneratedQuery = "__clientEdgeGeneratedQueryMetadata"
	DirectiveArtifactSourceKey        = "__artifactSourceKey"
	DirectiveUpdatable                = "updatable"
)

// Directive is one directive attached to a definition. Compiler-internal
// directives carry a typed metadata payload.
type Directive struct {
	Name     string        `json:"name"`
	Location diag.Location `json:"location"`
	Metadata any           `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes the metadata payload into the concrete type the
// directive name implies, so deserialized programs classify the same way as
// in-process ones.
func (d *Directive) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string          `json:"name"`
		Location diag.Location   `json:"location"`
		Metadata json.RawMessage `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Name = raw.Name
	d.Location = raw.Location
	d.Metadata = nil
	if len(raw.Metadata) == 0 {
		return nil
	}

	switch raw.Name {
	case DirectiveSplitOperation:
		meta := &SplitOperationMetadata{}
		if err := json.Unmarshal(raw.Metadata, meta); err != nil {
			return err
		}
		d.Metadata = meta
	case DirectiveRefetchableDerivedFrom:
		meta := &RefetchableDerivedFrom{}
		if err := json.Unmarshal(raw.Metadata, meta); err != nil {
			return err
		}
		d.Metadata = meta
	case DirectiveClientEdgeGeneratedQuery:
		meta := &ClientEdgeGeneratedQueryMetadata{}
		if err := json.Unmarshal(raw.Metadata, meta); err != nil {
			return err
		}
		d.Metadata = meta
	case DirectiveArtifactSourceKey:
		meta := &ArtifactSourceKeyData{}
		if err := json.Unmarshal(raw.Metadata, meta); err != nil {
			return err
		}
		d.Metadata = meta
	}
	return nil
}

// DirectiveList is the ordered set of directives on a definition.
type DirectiveList []Directive

// Find returns the first directive with the given name, or nil.
func (l DirectiveList) Find(name string) *Directive {
	for i := range l {
		if l[i].Name == name {
			return &l[i]
		}
	}
	return nil
}

// RawResponseGenerationMode selects how a split operation's raw-response
// type is generated. The zero value means no raw-response type at all.
type RawResponseGenerationMode string

const (
	RawResponseModeNone              RawResponseGenerationMode = ""
	RawResponseModeAllFieldsRequired RawResponseGenerationMode = "all_fields_required"
	RawResponseModeFieldsAsWritten   RawResponseGenerationMode = "fields_as_written"
)

// SplitOperationMetadata marks a normalization operation as a split
// operation derived from other documents.
type SplitOperationMetadata struct {
	Location        diag.Location             `json:"location"`
	DerivedFrom     *DocumentIdentity         `json:"derived_from,omitempty"`
	ParentDocuments []DocumentIdentity        `json:"parent_documents,omitempty"`
	RawResponseMode RawResponseGenerationMode `json:"raw_response_mode,omitempty"`
}

// RefetchableDerivedFrom marks an operation as derived from a refetchable
// fragment; SourceName is the fragment's name in the source program.
type RefetchableDerivedFrom struct {
	SourceName string `json:"source_name"`
}

// ClientEdgeGeneratedQueryMetadata records the document a client-edge
// generated query was synthesized from.
type ClientEdgeGeneratedQueryMetadata struct {
	SourceName     string        `json:"source_name"`
	SourceLocation diag.Location `json:"source_location"`
}

// ArtifactSourceKeyData records the resolver content hash a generated
// definition originates from, replacing document-name attribution.
type ArtifactSourceKeyData struct {
	ResolverHash string `json:"resolver_hash"`
}

// SplitOperation returns the split-operation metadata, or nil.
func (l DirectiveList) SplitOperation() *SplitOperationMetadata {
	if d := l.Find(DirectiveSplitOperation); d != nil {
		if m, ok := d.Metadata.(*SplitOperationMetadata); ok {
			return m
		}
	}
	return nil
}

// RefetchableDerivedFrom returns the refetch-derivation metadata, or nil.
func (l DirectiveList) RefetchableDerivedFrom() *RefetchableDerivedFrom {
	if d := l.Find(DirectiveRefetchableDerivedFrom); d != nil {
		if m, ok := d.Metadata.(*RefetchableDerivedFrom); ok {
			return m
		}
	}
	return nil
}

// ClientEdgeGeneratedQuery returns the client-edge metadata, or nil.
func (l DirectiveList) ClientEdgeGeneratedQuery() *ClientEdgeGeneratedQueryMetadata {
	if d := l.Find(DirectiveClientEdgeGeneratedQuery); d != nil {
		if m, ok := d.Metadata.(*ClientEdgeGeneratedQueryMetadata); ok {
			return m
		}
	}
	return nil
}

// ArtifactSourceKey returns the resolver-hash attribution metadata, or nil.
func (l DirectiveList) ArtifactSourceKey() *ArtifactSourceKeyData {
	if d := l.Find(DirectiveArtifactSourceKey); d != nil {
		if m, ok := d.Metadata.(*ArtifactSourceKeyData); ok {
			return m
		}
	}
	return nil
}

// IsUpdatable reports whether the definition carries the @updatable marker.
func (l DirectiveList) IsUpdatable() bool {
	return l.Find(DirectiveUpdatable) != nil
}
