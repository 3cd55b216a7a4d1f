package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ClassReport shows how one div's class attribute answers the different
// "is this a listing card" checks
type ClassReport struct {
	Index          int // 1-based position among divs
	Tokens         []string
	HasAttr        bool
	ExactToken     bool // substr equals a whole token
	JoinedContains bool // substr found in the space-joined attribute
	TokenContains  bool // substr found inside some token
}

// DescribeClasses reports, for every div in the document, how its class
// attribute is represented and how each matching approach classifies it.
// Only TokenContains is the check used for extraction; ExactToken is the
// comparison that misses suffixed class names.
func DescribeClasses(htmlContent, substr string) ([]ClassReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var reports []ClassReport
	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		tokens, ok := ClassTokens(s)
		report := ClassReport{
			Index:   i + 1,
			Tokens:  tokens,
			HasAttr: ok,
		}
		if ok {
			report.ExactToken = slices.Contains(tokens, substr)
			report.JoinedContains = strings.Contains(strings.Join(tokens, " "), substr)
			report.TokenContains = HasClassSubstring(tokens, substr)
		}
		reports = append(reports, report)
	})

	return reports, nil
}

// String formats the report for console output
func (r ClassReport) String() string {
	if !r.HasAttr {
		return fmt.Sprintf("Div #%d:\n  class = <none>\n", r.Index)
	}
	return fmt.Sprintf("Div #%d:\n  class = %q\n  exact token match = %t\n  joined string contains = %t\n  token contains = %t\n",
		r.Index, r.Tokens, r.ExactToken, r.JoinedContains, r.TokenContains)
}
