// json.go — JSON output formatter.
package output

import (
	"encoding/json"
)

// JSONFormatter produces JSON output.
type JSONFormatter struct{}

// Format writes a JSON representation of the result. Data fields are merged
// into the top-level object.
func (f *JSONFormatter) Format(w Writer, result *Result) error {
	out := map[string]any{
		"success": result.Success,
		"command": result.Command,
	}
	if result.Outcome != "" {
		out["outcome"] = result.Outcome
	}
	if result.Error != "" {
		out["error"] = result.Error
	}
	for k, v := range result.Data {
		out[k] = v
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
