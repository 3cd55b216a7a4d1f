package extractor

import (
	"context"
	"fmt"
	"log"

	"avito-scraper/parser"
)

// Strategy collects raw item hrefs from the current page state
type Strategy interface {
	Hrefs(ctx context.Context, page Page, opts Options) ([]string, error)
}

// MarkupStrategy parses the rendered HTML and picks listing cards by class
// token substring
type MarkupStrategy struct{}

// Hrefs implements the Strategy interface
func (MarkupStrategy) Hrefs(ctx context.Context, page Page, opts Options) ([]string, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	hrefs, err := parser.ItemHrefs(html, opts.ClassSubstring)
	if err != nil {
		return nil, err
	}

	log.Printf("Markup strategy: %d item cards with links (HTML size: %d bytes)\n", len(hrefs), len(html))
	return hrefs, nil
}

// QueryStrategy asks the page directly for links under the item marker.
// It is more robust to dynamic content than parsing a markup snapshot.
type QueryStrategy struct{}

// Hrefs implements the Strategy interface
func (QueryStrategy) Hrefs(ctx context.Context, page Page, opts Options) ([]string, error) {
	values, err := page.QueryAttribute(ctx, opts.ItemMarker+" a", "href")
	if err != nil {
		return nil, fmt.Errorf("failed to query item links: %w", err)
	}

	hrefs := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		hrefs = append(hrefs, *v)
	}

	log.Printf("Query strategy: %d item links found\n", len(hrefs))
	return hrefs, nil
}

// StrategyByName returns the strategy registered under name
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "markup":
		return MarkupStrategy{}, nil
	case "query":
		return QueryStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
