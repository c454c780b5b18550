// Package loader decodes and encodes the alias file, a YAML AliasList
// in the corral.dev/v1alpha1 format.
package loader

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/naming"
)

// LoadAliasesFromYAML loads an AliasList from YAML bytes.
// Empty input yields an empty list. Files written without apiVersion or
// kind are accepted and defaulted; files naming another version are not.
func LoadAliasesFromYAML(data []byte) (*v1alpha1.AliasList, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return v1alpha1.NewAliasList(), nil
	}

	var list v1alpha1.AliasList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	v1alpha1.SetDefaultAPIVersion(&list)

	if list.APIVersion != v1alpha1.APIVersion() {
		return nil, fmt.Errorf("unsupported apiVersion: %s (expected: %s)", list.APIVersion, v1alpha1.APIVersion())
	}
	if list.Kind != v1alpha1.AliasListKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", list.Kind, v1alpha1.AliasListKind)
	}

	if list.Aliases == nil {
		list.Aliases = []v1alpha1.AliasSpec{}
	}

	if err := validateAliases(&list); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &list, nil
}

// MarshalAliases encodes an AliasList to YAML.
func MarshalAliases(list *v1alpha1.AliasList) ([]byte, error) {
	v1alpha1.SetDefaultAPIVersion(list)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(list); err != nil {
		return nil, fmt.Errorf("failed to marshal aliases to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal aliases to YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// validateAliases checks every entry for required fields and uniqueness.
func validateAliases(list *v1alpha1.AliasList) error {
	seen := make(map[string]bool, len(list.Aliases))
	for i, a := range list.Aliases {
		if !naming.ValidAliasName(a.Name) {
			return fmt.Errorf("aliases[%d].name %q is not a valid filename", i, a.Name)
		}
		if a.Instance == "" {
			return fmt.Errorf("aliases[%d].instance is required", i)
		}
		if a.Command == "" {
			return fmt.Errorf("aliases[%d].command is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("aliases[%d].name %q is duplicated", i, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}
