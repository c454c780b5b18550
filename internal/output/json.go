package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jbweber/corral/api/v1alpha1"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

func encodeJSON(what string, v any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}
	return buf.String(), nil
}

// FormatAliases formats the alias store as a JSON object with an aliases array.
func (f *JSONFormatter) FormatAliases(aliases []v1alpha1.AliasSpec) (string, error) {
	return encodeJSON("aliases", newAliasDoc(aliases))
}

// FormatInfo formats instance details as JSON.
func (f *JSONFormatter) FormatInfo(info []v1alpha1.InstanceInfo) (string, error) {
	if info == nil {
		info = []v1alpha1.InstanceInfo{}
	}
	return encodeJSON("instance info", infoDoc{Info: info})
}

// FormatList formats instance summaries as JSON.
func (f *JSONFormatter) FormatList(entries []v1alpha1.ListEntry) (string, error) {
	return encodeJSON("instance list", listDoc{List: sortedEntries(entries)})
}

// FormatVersion formats versions as JSON.
func (f *JSONFormatter) FormatVersion(client, daemon string) (string, error) {
	return encodeJSON("version", versionDoc{Corral: client, Corrald: daemon})
}
