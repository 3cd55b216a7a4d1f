package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ClassTokens returns the class attribute of s split into tokens.
// ok is false when the element has no class attribute at all.
func ClassTokens(s *goquery.Selection) (tokens []string, ok bool) {
	class, exists := s.Attr("class")
	if !exists {
		return nil, false
	}
	return strings.Fields(class), true
}

// HasClassSubstring reports whether any token contains substr.
// Avito class names carry a generated suffix ("styles-item-abc123"), so
// tokens are matched partially, one at a time.
func HasClassSubstring(tokens []string, substr string) bool {
	if substr == "" {
		return false
	}
	for _, token := range tokens {
		if strings.Contains(token, substr) {
			return true
		}
	}
	return false
}

// IsItemCard checks if a selection is a listing card
func IsItemCard(s *goquery.Selection, substr string) bool {
	tokens, ok := ClassTokens(s)
	if !ok {
		return false
	}
	return HasClassSubstring(tokens, substr)
}

// NormalizeURL builds an absolute URL from an href found on the page.
// Hrefs that already carry a scheme are returned unchanged; protocol-relative
// hrefs ("//host/path") take the origin's scheme.
func NormalizeURL(origin, href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return href
	}
	if err == nil && strings.HasPrefix(href, "//") {
		if base, err := url.Parse(origin); err == nil && base.Scheme != "" {
			return base.ResolveReference(u).String()
		}
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(href, "/")
}

// ItemHrefs extracts the href of the first link inside every listing card,
// in document order. Cards without a link or links without href are skipped.
func ItemHrefs(htmlContent, substr string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var hrefs []string
	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		if !IsItemCard(s, substr) {
			return
		}

		link := s.Find("a").First()
		if link.Length() == 0 {
			return
		}

		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		hrefs = append(hrefs, href)
	})

	return hrefs, nil
}
