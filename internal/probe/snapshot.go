// snapshot.go — goquery checks over a captured HTML fragment.
package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dev-console/triage/internal/outcome"
)

// Snapshot is a parsed, immutable view of page HTML.
type Snapshot struct {
	doc *goquery.Document
}

// ParseSnapshot parses an HTML document or fragment.
func ParseSnapshot(html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &Snapshot{doc: doc}, nil
}

// Has reports whether some element matching selector is present and neither
// it nor an ancestor is hidden by the hidden attribute or inline style.
func (s *Snapshot) Has(selector string) bool {
	found := false
	s.doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !hidden(sel) {
			found = true
		}
		return !found
	})
	return found
}

// ColumnValues returns the trimmed text of cell column (0-based) for each
// body row of the first table matching tableSelector. Header rows (th only)
// and rows too short to have the column are skipped.
func (s *Snapshot) ColumnValues(tableSelector string, column int) []string {
	values := []string{}
	if column < 0 {
		return values
	}
	table := s.doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return values
	}
	if !table.Is("table") {
		table = table.Find("table").First()
	}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.ParentsFiltered("table").First().Get(0) != table.Get(0) {
			return // nested table
		}
		cells := row.Children().Filter("td")
		if cells.Length() <= column {
			return
		}
		values = append(values, strings.TrimSpace(cells.Eq(column).Text()))
	})
	return values
}

// SnapshotVisible returns a predicate that fetches HTML from src and checks
// Has(selector) on it.
func SnapshotVisible(src Source, selector string) outcome.Predicate {
	return func(ctx context.Context) (bool, error) {
		html, err := src(ctx)
		if err != nil {
			return false, err
		}
		snap, err := ParseSnapshot(html)
		if err != nil {
			return false, err
		}
		return snap.Has(selector), nil
	}
}

// Static returns a Source that always yields html.
func Static(html string) Source {
	return func(context.Context) (string, error) { return html, nil }
}

func hidden(sel *goquery.Selection) bool {
	for n := sel; n.Length() > 0; n = n.Parent() {
		if _, ok := n.Attr("hidden"); ok {
			return true
		}
		if style, ok := n.Attr("style"); ok && styleHides(style) {
			return true
		}
	}
	return false
}

// styleHides reports whether an inline style sets display:none or visibility:hidden.
func styleHides(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
		if (name == "display" && value == "none") || (name == "visibility" && value == "hidden") {
			return true
		}
	}
	return false
}
