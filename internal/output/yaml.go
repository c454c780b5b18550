package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/corral/api/v1alpha1"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct{}

func encodeYAML(what string, v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", what, err)
	}
	return string(data), nil
}

// FormatAliases formats the alias store as YAML.
func (f *YAMLFormatter) FormatAliases(aliases []v1alpha1.AliasSpec) (string, error) {
	return encodeYAML("aliases", newAliasDoc(aliases))
}

// FormatInfo formats instance details as YAML.
func (f *YAMLFormatter) FormatInfo(info []v1alpha1.InstanceInfo) (string, error) {
	return encodeYAML("instance info", infoDoc{Info: info})
}

// FormatList formats instance summaries as YAML.
func (f *YAMLFormatter) FormatList(entries []v1alpha1.ListEntry) (string, error) {
	return encodeYAML("instance list", listDoc{List: sortedEntries(entries)})
}

// FormatVersion formats versions as YAML.
func (f *YAMLFormatter) FormatVersion(client, daemon string) (string, error) {
	return encodeYAML("version", versionDoc{Corral: client, Corrald: daemon})
}
