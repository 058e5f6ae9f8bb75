// crossvalidate.go — Order-insensitive comparison of UI rows against API records.
package scenario

import (
	"fmt"
	"sort"
)

// Report is the result of CrossValidate. Missing lists keys the API served
// that the UI did not render; Unexpected lists keys the UI rendered that the
// API did not serve. A key appearing n times more on one side is listed n times.
type Report struct {
	UICount    int      `json:"ui_count"`
	APICount   int      `json:"api_count"`
	Missing    []string `json:"missing"`
	Unexpected []string `json:"unexpected"`
}

// OK reports whether both sides hold the same multiset of keys.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Unexpected) == 0
}

func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("UI and API agree on %d rows", r.UICount)
	}
	return fmt.Sprintf("UI rendered %d rows, API served %d: %d missing, %d unexpected",
		r.UICount, r.APICount, len(r.Missing), len(r.Unexpected))
}

// CrossValidate compares the keys rendered in the UI with the keys the API
// serves, ignoring order.
func CrossValidate(uiKeys, apiKeys []string) Report {
	counts := make(map[string]int, len(apiKeys))
	for _, k := range apiKeys {
		counts[k]++
	}
	for _, k := range uiKeys {
		counts[k]--
	}

	rep := Report{
		UICount:    len(uiKeys),
		APICount:   len(apiKeys),
		Missing:    []string{},
		Unexpected: []string{},
	}
	for k, n := range counts {
		for ; n > 0; n-- {
			rep.Missing = append(rep.Missing, k)
		}
		for ; n < 0; n++ {
			rep.Unexpected = append(rep.Unexpected, k)
		}
	}
	sort.Strings(rep.Missing)
	sort.Strings(rep.Unexpected)
	return rep
}
