package artifact

import (
	"fmt"

	"resolvergen/internal/ir"
)

// OperationGroup collects the per-program definitions of one logical
// operation. Normalization is nil only for updatable queries, which exist
// in the reader program alone.
type OperationGroup struct {
	Normalization *ir.OperationDefinition
	OperationText *ir.OperationDefinition
	Reader        *ir.OperationDefinition
	Typegen       *ir.OperationDefinition
}

func (g *OperationGroup) expectReader(identity ir.DocumentIdentity) *ir.OperationDefinition {
	if g.Reader == nil {
		panic(fmt.Sprintf("expected a reader operation for %q", identity.Name))
	}
	return g.Reader
}

func (g *OperationGroup) expectTypegen(identity ir.DocumentIdentity) *ir.OperationDefinition {
	if g.Typegen == nil {
		panic(fmt.Sprintf("expected a typegen operation for %q", identity.Name))
	}
	return g.Typegen
}

// GroupOperations merges the operations of every program into groups keyed
// by document identity. The normalization program seeds the groups; reader
// operations may open a new group (updatable queries have no normalization
// form), while typegen and operation-text operations must join an existing
// one. A typegen or operation-text operation without a group is a bug in
// the upstream pipeline, not a user error.
func GroupOperations(programs *ir.Programs) map[ir.DocumentIdentity]*OperationGroup {
	groups := make(map[ir.DocumentIdentity]*OperationGroup)

	for _, operation := range programs.Normalization.Operations {
		groups[operation.Identity()] = &OperationGroup{Normalization: operation}
	}
	for _, operation := range programs.Reader.Operations {
		identity := operation.Identity()
		group, ok := groups[identity]
		if !ok {
			group = &OperationGroup{}
			groups[identity] = group
		}
		group.Reader = operation
	}
	for _, operation := range programs.OperationText.Operations {
		identity := operation.Identity()
		group, ok := groups[identity]
		if !ok {
			panic(fmt.Sprintf("expected the source document for operation text %q to exist", identity.Name))
		}
		group.OperationText = operation
	}
	for _, operation := range programs.Typegen.Operations {
		identity := operation.Identity()
		group, ok := groups[identity]
		if !ok {
			panic(fmt.Sprintf("expected the source document for typegen operation %q to exist", identity.Name))
		}
		group.Typegen = operation
	}
	return groups
}
