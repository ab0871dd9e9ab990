package artifact

import (
	"fmt"
	"sort"

	"resolvergen/internal/config"
	"resolvergen/internal/diag"
	"resolvergen/internal/ir"
)

// OperationPrinter renders the operation-text form of a document into the
// query text shipped inside the artifact.
type OperationPrinter interface {
	PrintOperation(operation *ir.OperationDefinition) string
}

// Generate merges the parallel programs into one artifact per logical
// document, ordered by document identity with fragments after operations.
// In mixed output mode the artifacts are then merged per source file.
//
// Metadata directives attached by upstream transforms decide how each
// artifact is attributed: split operations point at their parent documents
// (or a resolver hash), refetchable and client-edge queries point at the
// document they were derived from, and everything else points at itself.
func Generate(project *config.ProjectConfig, printer OperationPrinter, programs *ir.Programs, hashes ir.SourceHashes) []Artifact {
	groups := GroupOperations(programs)

	identities := make([]ir.DocumentIdentity, 0, len(groups))
	for identity := range groups {
		identities = append(identities, identity)
	}
	sort.Slice(identities, func(i, j int) bool {
		return ir.LessIdentity(identities[i], identities[j])
	})

	artifacts := make([]Artifact, 0, len(groups)+len(programs.Reader.Fragments))
	for _, identity := range identities {
		artifacts = append(artifacts, generateOperationArtifact(project, printer, programs, identity, groups[identity], hashes))
	}
	for _, fragment := range programs.Reader.Fragments {
		artifacts = append(artifacts, generateFragmentArtifact(project, programs, fragment, hashes))
	}

	if project.Language == config.TypegenLanguageMixedGraphQL {
		return mergeMixedArtifacts(artifacts)
	}
	return artifacts
}

func generateOperationArtifact(project *config.ProjectConfig, printer OperationPrinter, programs *ir.Programs, identity ir.DocumentIdentity, group *OperationGroup, hashes ir.SourceHashes) Artifact {
	var directives ir.DirectiveList
	if group.Normalization != nil {
		directives = group.Normalization.Directives
	}

	if meta := directives.SplitOperation(); meta != nil {
		var keys []SourceKey
		if src := directives.ArtifactSourceKey(); src != nil {
			keys = []SourceKey{ResolverHashKey(src.ResolverHash)}
		} else {
			keys = make([]SourceKey, 0, len(meta.ParentDocuments))
			for _, parent := range meta.ParentDocuments {
				keys = append(keys, ExecutableDefinitionKey(parent))
			}
		}
		var hash string
		if meta.DerivedFrom != nil {
			hash = hashes[*meta.DerivedFrom]
		}
		// The raw-response type is generated off the normalization form, so
		// a typegen payload exists only when the metadata asks for one.
		var typegen *ir.OperationDefinition
		if meta.RawResponseMode != ir.RawResponseModeNone {
			typegen = group.Normalization
		}
		sourceFile := meta.Location.Source
		return Artifact{
			SourceKeys: keys,
			Path:       project.PathForArtifact(sourceFile, identity.Name),
			SourceFile: sourceFile,
			Content: &SplitOperationContent{
				Normalization:                     group.Normalization,
				Typegen:                           typegen,
				NoOptionalFieldsInRawResponseType: meta.RawResponseMode == ir.RawResponseModeAllFieldsRequired,
				SourceHash:                        hash,
			},
		}
	}

	if meta := directives.RefetchableDerivedFrom(); meta != nil {
		fragment, ok := programs.Source.Fragment(meta.SourceName)
		if !ok {
			panic(fmt.Sprintf("expected the refetchable source fragment %q to exist in the source program", meta.SourceName))
		}
		source := fragment.Identity()
		return Artifact{
			SourceKeys: []SourceKey{ExecutableDefinitionKey(source)},
			Path:       project.PathForArtifact(source.Source, identity.Name),
			SourceFile: source.Source,
			Content:    operationContent(printer, identity, group, hashes[source]),
		}
	}

	if meta := directives.ClientEdgeGeneratedQuery(); meta != nil {
		source := ir.DocumentIdentity{Name: meta.SourceName, Source: meta.SourceLocation.Source}
		return Artifact{
			SourceKeys: []SourceKey{ExecutableDefinitionKey(source)},
			Path:       project.PathForArtifact(source.Source, identity.Name),
			SourceFile: source.Source,
			Content:    operationContent(printer, identity, group, hashes[source]),
		}
	}

	return Artifact{
		SourceKeys: []SourceKey{ExecutableDefinitionKey(identity)},
		Path:       project.PathForArtifact(identity.Source, identity.Name),
		SourceFile: identity.Source,
		Content:    operationContent(printer, identity, group, hashes[identity]),
	}
}

// operationContent builds the payload for a non-split operation group. A
// group with neither a normalization operation nor an updatable reader
// cannot be generated; the upstream pipeline never produces one.
func operationContent(printer OperationPrinter, identity ir.DocumentIdentity, group *OperationGroup, hash string) Content {
	switch {
	case group.Normalization != nil:
		var text string
		if group.OperationText != nil {
			text = printer.PrintOperation(group.OperationText)
		}
		return &OperationContent{
			Normalization: group.Normalization,
			OperationText: text,
			Reader:        group.expectReader(identity),
			Typegen:       group.expectTypegen(identity),
			SourceHash:    hash,
		}
	case group.Reader != nil && group.Reader.Directives.IsUpdatable():
		return &UpdatableQueryContent{
			Reader:     group.Reader,
			Typegen:    group.expectTypegen(identity),
			SourceHash: hash,
		}
	default:
		panic(fmt.Sprintf("expected %q to have a normalization operation or an updatable reader", identity.Name))
	}
}

func generateFragmentArtifact(project *config.ProjectConfig, programs *ir.Programs, fragment *ir.FragmentDefinition, hashes ir.SourceHashes) Artifact {
	typegen, ok := programs.Typegen.Fragment(fragment.Name)
	if !ok {
		panic(fmt.Sprintf("expected a typegen fragment for reader fragment %q", fragment.Name))
	}

	identity := fragment.Identity()
	keys := []SourceKey{ExecutableDefinitionKey(identity)}
	if src := fragment.Directives.ArtifactSourceKey(); src != nil {
		keys = []SourceKey{ResolverHashKey(src.ResolverHash)}
	}
	return Artifact{
		SourceKeys: keys,
		Path:       project.PathForArtifact(identity.Source, identity.Name),
		SourceFile: identity.Source,
		Content: &FragmentContent{
			Reader:     fragment,
			Typegen:    typegen,
			SourceHash: hashes[identity],
		},
	}
}

// mergeMixedArtifacts collapses the artifacts of each source file into one,
// keeping files in path order and each file's artifacts in the order they
// were generated. The merged artifact reuses a constituent's path.
func mergeMixedArtifacts(artifacts []Artifact) []Artifact {
	byFile := make(map[diag.SourceLocation][]Artifact)
	files := make([]diag.SourceLocation, 0)
	for _, a := range artifacts {
		if _, seen := byFile[a.SourceFile]; !seen {
			files = append(files, a.SourceFile)
		}
		byFile[a.SourceFile] = append(byFile[a.SourceFile], a)
	}
	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	merged := make([]Artifact, 0, len(files))
	for _, file := range files {
		group := byFile[file]
		var keys []SourceKey
		contents := make([]Content, 0, len(group))
		for _, a := range group {
			keys = append(keys, a.SourceKeys...)
			contents = append(contents, a.Content)
		}
		merged = append(merged, Artifact{
			SourceKeys: keys,
			Path:       group[len(group)-1].Path,
			SourceFile: file,
			Content:    &MixedDocumentsContent{Contents: contents},
		})
	}
	return merged
}
