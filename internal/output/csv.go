package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jbweber/corral/api/v1alpha1"
)

// CSVFormatter formats results as CSV with a header row.
type CSVFormatter struct{}

func writeCSV(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return buf.String(), nil
}

// FormatAliases formats the alias store as CSV.
func (f *CSVFormatter) FormatAliases(aliases []v1alpha1.AliasSpec) (string, error) {
	rows := make([][]string, 0, len(aliases))
	for _, a := range aliases {
		rows = append(rows, []string{a.Name, a.Instance, a.Command})
	}
	return writeCSV([]string{"Alias", "Instance", "Command"}, rows)
}

// FormatInfo formats instance details as CSV, one row per instance.
// Multiple addresses and mounts are joined with ';'.
func (f *CSVFormatter) FormatInfo(info []v1alpha1.InstanceInfo) (string, error) {
	rows := make([][]string, 0, len(info))
	for _, inst := range info {
		mounts := make([]string, 0, len(inst.Mounts))
		for _, m := range inst.Mounts {
			mounts = append(mounts, m.SourcePath+" => "+m.TargetPath)
		}
		rows = append(rows, []string{
			inst.Name,
			inst.State,
			strings.Join(inst.IPv4, ";"),
			inst.ImageRelease,
			strconv.Itoa(inst.CPUCount),
			inst.MemoryUsage,
			inst.DiskUsage,
			strings.Join(mounts, ";"),
		})
	}
	return writeCSV([]string{"Name", "State", "Ipv4", "Release", "CPU(s)", "Memory usage", "Disk usage", "Mounts"}, rows)
}

// FormatList formats instance summaries as CSV.
func (f *CSVFormatter) FormatList(entries []v1alpha1.ListEntry) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range sortedEntries(entries) {
		rows = append(rows, []string{e.Name, e.State, strings.Join(e.IPv4, ";"), e.Release})
	}
	return writeCSV([]string{"Name", "State", "IPv4", "Release"}, rows)
}

// FormatVersion formats versions as CSV.
func (f *CSVFormatter) FormatVersion(client, daemon string) (string, error) {
	rows := [][]string{{"corral", client}}
	if daemon != "" {
		rows = append(rows, []string{"corrald", daemon})
	}
	return writeCSV([]string{"Component", "Version"}, rows)
}
