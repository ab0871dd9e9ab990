package ir

import "resolvergen/internal/diag"

// AssertFragmentDefinition resolves a `$key`-derived fragment name against
// the externally-parsed fragment definitions of the project.
func AssertFragmentDefinition(entity diag.WithLocation[string], fragmentName string, definitions []*FragmentDefinition) (*FragmentDefinition, *diag.Diagnostic) {
	for _, def := range definitions {
		if def.Name == fragmentName {
			return def, nil
		}
	}
	return nil, diag.Errorf(entity.Location, "expected a fragment named %q to be defined for %s", fragmentName, entity.Item)
}

// ValidateFragmentArguments cross-checks a resolver field's argument list
// against the arguments declared by its root fragment: every non-defaulted
// fragment argument must be supplied by a field argument of the same name.
func ValidateFragmentArguments(fieldArguments []InputValueDefinition, fragment *RootFragment) []*diag.Diagnostic {
	byName := make(map[string]bool, len(fieldArguments))
	for _, arg := range fieldArguments {
		byName[arg.Name.Value] = true
	}

	var diagnostics []*diag.Diagnostic
	for _, fragArg := range fragment.Arguments {
		if fragArg.HasDefault || byName[fragArg.Name] {
			continue
		}
		d := diag.Errorf(fragArg.Location, "fragment argument %q of %s has no matching resolver field argument", fragArg.Name, fragment.Name)
		d.Annotate("root fragment is referenced here", fragment.Location)
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}
