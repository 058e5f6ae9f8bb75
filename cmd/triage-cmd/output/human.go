// human.go — Human-readable output formatter.
package output

import (
	"fmt"
	"sort"
	"strings"
)

// HumanFormatter produces human-readable output.
type HumanFormatter struct{}

// Format writes a human-readable representation of the result.
func (h *HumanFormatter) Format(w Writer, result *Result) error {
	var sb strings.Builder

	label := result.Command
	if result.Outcome != "" {
		label += " " + result.Outcome
	}
	if result.Success {
		fmt.Fprintf(&sb, "[OK] %s\n", label)
	} else {
		fmt.Fprintf(&sb, "[FAIL] %s\n", label)
		if result.Error != "" {
			fmt.Fprintf(&sb, "   Error: %s\n", result.Error)
		}
	}

	keys := make([]string, 0, len(result.Data))
	for k := range result.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "   %s: %v\n", k, result.Data[k])
	}

	for _, line := range result.Details {
		fmt.Fprintf(&sb, "   %s\n", line)
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}
