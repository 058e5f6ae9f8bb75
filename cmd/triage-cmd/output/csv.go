// csv.go — CSV output formatter for piping into spreadsheets.
package output

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// CSVFormatter produces CSV output.
type CSVFormatter struct{}

// Format writes a single result as CSV (header + one row).
func (f *CSVFormatter) Format(w Writer, result *Result) error {
	return f.FormatMultiple(w, []*Result{result})
}

// FormatMultiple writes multiple results as CSV (header + N rows). Data
// columns are the sorted union of all data keys.
func (f *CSVFormatter) FormatMultiple(w Writer, results []*Result) error {
	if len(results) == 0 {
		return nil
	}

	keySet := make(map[string]bool)
	for _, r := range results {
		for k := range r.Data {
			keySet[k] = true
		}
	}
	dataKeys := make([]string, 0, len(keySet))
	for k := range keySet {
		dataKeys = append(dataKeys, k)
	}
	sort.Strings(dataKeys)

	header := []string{"success", "command", "outcome", "error"}
	header = append(header, dataKeys...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, r := range results {
		row := []string{
			fmt.Sprintf("%t", r.Success),
			r.Command,
			r.Outcome,
			r.Error,
		}
		for _, k := range dataKeys {
			row = append(row, cell(r.Data[k]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cell renders a data value; string lists are joined with ';'.
func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(val, ";")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetFormatter returns the appropriate formatter for the given format string.
func GetFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	case "csv":
		return &CSVFormatter{}
	default:
		return &HumanFormatter{}
	}
}
