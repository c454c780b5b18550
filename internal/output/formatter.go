// Package output provides formatters for displaying corral data in various
// formats (table, CSV, JSON, YAML).
package output

import (
	"sort"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/status"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatCSV is comma separated values with a header row.
	FormatCSV Format = "csv"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
	// FormatYAML is a YAML format.
	FormatYAML Format = "yaml"
)

// Formatter formats command results for output.
type Formatter interface {
	// FormatAliases formats the alias store in definition order.
	FormatAliases(aliases []v1alpha1.AliasSpec) (string, error)

	// FormatInfo formats instance details.
	FormatInfo(info []v1alpha1.InstanceInfo) (string, error)

	// FormatList formats instance summaries.
	FormatList(entries []v1alpha1.ListEntry) (string, error)

	// FormatVersion formats the client and daemon versions. An empty
	// daemon version means the daemon could not be asked.
	FormatVersion(client, daemon string) (string, error)
}

// NewFormatter creates a new Formatter for the named format.
func NewFormatter(format string) (Formatter, error) {
	switch Format(format) {
	case FormatTable:
		return &TableFormatter{}, nil
	case FormatCSV:
		return &CSVFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, exitcode.Usagef("Invalid format type given.")
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	_, err := NewFormatter(format)
	return err
}

// aliasDoc is the structured form of the alias store.
type aliasDoc struct {
	Aliases []aliasRow `json:"aliases" yaml:"aliases"`
}

type aliasRow struct {
	Alias    string `json:"alias" yaml:"alias"`
	Instance string `json:"instance" yaml:"instance"`
	Command  string `json:"command" yaml:"command"`
}

func newAliasDoc(aliases []v1alpha1.AliasSpec) aliasDoc {
	doc := aliasDoc{Aliases: make([]aliasRow, 0, len(aliases))}
	for _, a := range aliases {
		doc.Aliases = append(doc.Aliases, aliasRow{Alias: a.Name, Instance: a.Instance, Command: a.Command})
	}
	return doc
}

type infoDoc struct {
	Info []v1alpha1.InstanceInfo `json:"info" yaml:"info"`
}

type listDoc struct {
	List []v1alpha1.ListEntry `json:"list" yaml:"list"`
}

type versionDoc struct {
	Corral  string `json:"corral" yaml:"corral"`
	Corrald string `json:"corrald,omitempty" yaml:"corrald,omitempty"`
}

// sortedEntries orders instances for display: by state rank, then name.
func sortedEntries(entries []v1alpha1.ListEntry) []v1alpha1.ListEntry {
	out := make([]v1alpha1.ListEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := status.Rank(status.Parse(out[i].State)), status.Rank(status.Parse(out[j].State))
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
