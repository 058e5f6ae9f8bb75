// pattern_test.go — Tests for URL pattern compilation and matching.
package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatternMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		url     string
		want    bool
	}{
		{"regex matches search with query", `.*/api/search.*`, "https://app.test/api/search?q=x", true},
		{"regex rejects other endpoint", `.*/api/search.*`, "https://app.test/api/users", false},
		{"regex is anchored to the whole url", `/api/search`, "https://app.test/api/search", false},
		{"regex alternation stays grouped", `.*/a|.*/b`, "https://app.test/b", true},
		{"glob spans slashes", "glob:*/api/search*", "https://app.test/v2/api/search?q=x", true},
		{"glob rejects other endpoint", "glob:*/api/search*", "https://app.test/api/users", false},
		{"glob character class", "glob:https://app.test/api/[ab]", "https://app.test/api/b", true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, err := ParsePattern(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Match(tc.url))
			assert.Equal(t, tc.pattern, p.String())
		})
	}
}

func TestParsePatternErrors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "(", "glob:[a"} {
		_, err := ParsePattern(raw)
		assert.Error(t, err, "pattern %q should not compile", raw)
	}
}

func TestStatusSet(t *testing.T) {
	t.Parallel()

	s := DefaultAllowedStatuses()
	assert.True(t, s.Contains(200))
	assert.True(t, s.Contains(304))
	assert.False(t, s.Contains(302), "redirects are failures unless allowed")
	assert.False(t, s.Contains(204))
	assert.Equal(t, []int{200, 304}, s.Codes())
}
