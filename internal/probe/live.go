// live.go — chromedp-backed predicates and HTML sources.
package probe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/dev-console/triage/internal/outcome"
)

// Source returns the current HTML of some part of the page.
type Source func(ctx context.Context) (string, error)

// visibleJS reports whether the first match of a selector is rendered:
// present, not display:none or visibility:hidden, and with a non-empty box.
const visibleJS = `(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.display === 'none' || style.visibility === 'hidden') return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 || rect.height > 0;
})()`

const outerHTMLJS = `(() => {
	const el = document.querySelector(%s);
	return el ? el.outerHTML : '';
})()`

// Visible returns a predicate that is true while selector matches a rendered element.
func Visible(selector string) outcome.Predicate {
	return func(ctx context.Context) (bool, error) {
		expr, err := script(visibleJS, selector)
		if err != nil {
			return false, err
		}
		var visible bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &visible)); err != nil {
			return false, fmt.Errorf("evaluate visibility of %q: %w", selector, err)
		}
		return visible, nil
	}
}

// OuterHTML returns a Source reading the outer HTML of the first match of
// selector, or "" when nothing matches.
func OuterHTML(selector string) Source {
	return func(ctx context.Context) (string, error) {
		expr, err := script(outerHTMLJS, selector)
		if err != nil {
			return "", err
		}
		var html string
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &html)); err != nil {
			return "", fmt.Errorf("read outer html of %q: %w", selector, err)
		}
		return html, nil
	}
}

// TableColumn reads one column of a rendered table.
func TableColumn(ctx context.Context, tableSelector string, column int) ([]string, error) {
	return SourceColumn(ctx, OuterHTML(tableSelector), tableSelector, column)
}

// SourceColumn reads one column of the table matching tableSelector in the
// HTML returned by src.
func SourceColumn(ctx context.Context, src Source, tableSelector string, column int) ([]string, error) {
	html, err := src(ctx)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return nil, fmt.Errorf("table %q not found", tableSelector)
	}
	snap, err := ParseSnapshot(html)
	if err != nil {
		return nil, err
	}
	return snap.ColumnValues(tableSelector, column), nil
}

// script embeds selector as a JS string literal.
func script(format, selector string) (string, error) {
	lit, err := json.Marshal(selector)
	if err != nil {
		return "", fmt.Errorf("quote selector: %w", err)
	}
	return fmt.Sprintf(format, lit), nil
}
