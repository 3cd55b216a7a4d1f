package fetcher

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"avito-scraper/extractor"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// StaticPage implements extractor.Page for server-rendered HTML fetched once
// with colly. There is nothing to scroll and nothing renders later, so the
// marker wait is answered from the fetched document.
type StaticPage struct {
	html string
	doc  *goquery.Document
}

// NewStaticPage fetches url and parses the response
func NewStaticPage(url string) (*StaticPage, error) {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	c.SetRequestTimeout(30 * time.Second)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		log.Printf("Fetched %s (HTML size: %d bytes)\n", r.Request.URL, len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	return NewStaticPageFromHTML(string(body))
}

// NewStaticPageFromHTML wraps already fetched markup
func NewStaticPageFromHTML(html string) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &StaticPage{html: html, doc: doc}, nil
}

// Scroll implements extractor.Page
func (sp *StaticPage) Scroll(ctx context.Context, dy float64) error {
	return ctx.Err()
}

// WaitForSelector implements extractor.Page
func (sp *StaticPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sp.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s not in fetched document", extractor.ErrWaitTimeout, selector)
	}
	return nil
}

// HTML implements extractor.Page
func (sp *StaticPage) HTML(ctx context.Context) (string, error) {
	return sp.html, ctx.Err()
}

// QueryAttribute implements extractor.Page
func (sp *StaticPage) QueryAttribute(ctx context.Context, selector, name string) ([]*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var values []*string
	sp.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		if v, ok := s.Attr(name); ok {
			values = append(values, &v)
			return
		}
		values = append(values, nil)
	})
	return values, nil
}

// Close implements io.Closer
func (sp *StaticPage) Close() error {
	return nil
}
