package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/status"
)

// TableFormatter formats results as human-readable tables.
type TableFormatter struct{}

// FormatAliases formats the alias store as a table.
func (f *TableFormatter) FormatAliases(aliases []v1alpha1.AliasSpec) (string, error) {
	if len(aliases) == 0 {
		return "No aliases defined.\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Alias\tInstance\tCommand")
	for _, a := range aliases {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, a.Instance, a.Command)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatInfo formats each instance as a block of labelled fields.
// Usage figures are only shown for running instances.
func (f *TableFormatter) FormatInfo(info []v1alpha1.InstanceInfo) (string, error) {
	if len(info) == 0 {
		return "No instances found.\n", nil
	}

	var buf bytes.Buffer
	for i, inst := range info {
		if i > 0 {
			buf.WriteString("\n")
		}

		w := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
		st := status.Parse(inst.State)
		_, _ = fmt.Fprintf(w, "Name:\t%s\n", inst.Name)
		_, _ = fmt.Fprintf(w, "State:\t%s\n", st)
		_, _ = fmt.Fprintf(w, "IPv4:\t%s\n", orDash(strings.Join(inst.IPv4, ", ")))
		_, _ = fmt.Fprintf(w, "Release:\t%s\n", orDash(inst.ImageRelease))
		if status.HasRuntimeInfo(st) {
			_, _ = fmt.Fprintf(w, "CPU(s):\t%d\n", inst.CPUCount)
			_, _ = fmt.Fprintf(w, "Memory usage:\t%s\n", orDash(inst.MemoryUsage))
			_, _ = fmt.Fprintf(w, "Disk usage:\t%s\n", orDash(inst.DiskUsage))
		}
		if len(inst.Mounts) == 0 {
			_, _ = fmt.Fprintf(w, "Mounts:\t--\n")
		}
		for j, m := range inst.Mounts {
			label := "Mounts:"
			if j > 0 {
				label = ""
			}
			_, _ = fmt.Fprintf(w, "%s\t%s => %s\n", label, m.SourcePath, m.TargetPath)
		}
		_ = w.Flush()
	}

	return buf.String(), nil
}

// FormatList formats instance summaries, running instances first.
func (f *TableFormatter) FormatList(entries []v1alpha1.ListEntry) (string, error) {
	if len(entries) == 0 {
		return "No instances found.\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Name\tState\tIPv4\tRelease")
	for _, e := range sortedEntries(entries) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Name, status.Parse(e.State), orDash(strings.Join(e.IPv4, ",")), orDash(e.Release))
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatVersion formats the client and, when known, daemon versions.
func (f *TableFormatter) FormatVersion(client, daemon string) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "corral\t%s\n", client)
	if daemon != "" {
		_, _ = fmt.Fprintf(w, "corrald\t%s\n", daemon)
	}

	_ = w.Flush()
	return buf.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}
