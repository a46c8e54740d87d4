package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ResolveArguments applies overrides and defaults to the declared launch
// arguments. Every declared argument ends up with a value; overrides for
// undeclared arguments and values outside an argument's choices are errors.
func ResolveArguments(defs []*ArgumentDefinition, overrides map[string]string) (map[string]string, error) {
	declared := make(map[string]*ArgumentDefinition, len(defs))
	for _, d := range defs {
		if _, dup := declared[d.Name]; dup {
			return nil, fmt.Errorf("launch argument %q declared more than once", d.Name)
		}
		if d.Default != nil && len(d.Choices) > 0 && !slices.Contains(d.Choices, *d.Default) {
			return nil, fmt.Errorf("default %q of launch argument %q is not one of its choices [%s]",
				*d.Default, d.Name, strings.Join(d.Choices, ", "))
		}
		declared[d.Name] = d
	}

	unknown := make([]string, 0)
	for name := range overrides {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("undeclared launch arguments: %s", strings.Join(unknown, ", "))
	}

	resolved := make(map[string]string, len(defs))
	for _, d := range defs {
		value, ok := overrides[d.Name]
		if !ok {
			if d.Default == nil {
				return nil, fmt.Errorf("launch argument %q requires a value", d.Name)
			}
			value = *d.Default
		}
		if len(d.Choices) > 0 && !slices.Contains(d.Choices, value) {
			return nil, fmt.Errorf("invalid value %q for launch argument %q: must be one of [%s]",
				value, d.Name, strings.Join(d.Choices, ", "))
		}
		resolved[d.Name] = value
	}
	return resolved, nil
}
