// pattern.go — URL pattern compilation (anchored regexp or glob).
package triage

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// globPrefix selects glob syntax instead of a regular expression.
const globPrefix = "glob:"

// Pattern matches request URLs for an armed watch.
type Pattern interface {
	Match(url string) bool
	String() string
}

// ParsePattern compiles raw into a Pattern.
// A "glob:" prefix compiles the remainder as a glob where * spans any
// characters including '/'. Anything else is a regular expression that must
// match the whole URL.
func ParsePattern(raw string) (Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty url pattern")
	}
	if expr, ok := strings.CutPrefix(raw, globPrefix); ok {
		g, err := glob.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile glob %q: %w", expr, err)
		}
		return &globPattern{raw: raw, g: g}, nil
	}
	re, err := regexp.Compile(`^(?:` + raw + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", raw, err)
	}
	return &regexPattern{raw: raw, re: re}, nil
}

type regexPattern struct {
	raw string
	re  *regexp.Regexp
}

func (p *regexPattern) Match(url string) bool { return p.re.MatchString(url) }
func (p *regexPattern) String() string        { return p.raw }

type globPattern struct {
	raw string
	g   glob.Glob
}

func (p *globPattern) Match(url string) bool { return p.g.Match(url) }
func (p *globPattern) String() string        { return p.raw }
