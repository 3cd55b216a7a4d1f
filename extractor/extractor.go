package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"avito-scraper/parser"
)

// Options configures one Extractor
type Options struct {
	Origin         string        // Prefix for relative hrefs, e.g. https://www.avito.ru
	ItemMarker     string        // Selector that appears once listing cards have rendered
	ClassSubstring string        // Class token fragment identifying a card (markup strategy)
	FirstScroll    float64       // Scroll before sampling the page
	SecondScroll   float64       // Scroll after sampling, primes the next lazy-load batch
	WaitTimeout    time.Duration // Bound for the item marker wait
	SettleDelay    time.Duration // Unconditional pause after the wait
}

// DefaultOptions returns the settings used against avito.ru
func DefaultOptions() Options {
	return Options{
		Origin:         "https://www.avito.ru",
		ItemMarker:     `[data-marker="item"]`,
		ClassSubstring: "styles-item",
		FirstScroll:    400,
		SecondScroll:   800,
		WaitTimeout:    5 * time.Second,
		SettleDelay:    time.Second,
	}
}

// Extractor returns item URLs not yet emitted from the page it drives
type Extractor struct {
	page     Page
	strategy Strategy
	opts     Options
	registry *Registry
	sleep    func(time.Duration)
}

// New creates an Extractor with an empty registry
func New(page Page, strategy Strategy, opts Options) *Extractor {
	return &Extractor{
		page:     page,
		strategy: strategy,
		opts:     opts,
		registry: NewRegistry(),
		sleep:    time.Sleep,
	}
}

// Registry returns the set of URLs emitted so far
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Extract runs one pass: scroll, wait for the item marker, settle, collect
// hrefs, normalize and deduplicate them, then scroll again.
//
// A marker timeout is not an error; the pass continues with whatever is on
// the page. If the trailing scroll fails, the URLs of the pass are returned
// together with the error since they are already recorded in the registry.
func (e *Extractor) Extract(ctx context.Context) ([]string, error) {
	if err := e.page.Scroll(ctx, e.opts.FirstScroll); err != nil {
		return nil, fmt.Errorf("failed to scroll: %w", err)
	}

	if err := e.page.WaitForSelector(ctx, e.opts.ItemMarker, e.opts.WaitTimeout); err != nil {
		if !errors.Is(err, ErrWaitTimeout) {
			return nil, fmt.Errorf("failed to wait for %s: %w", e.opts.ItemMarker, err)
		}
		log.Printf("Warning: %s did not appear within %v, continuing with current page\n", e.opts.ItemMarker, e.opts.WaitTimeout)
	}

	e.sleep(e.opts.SettleDelay)

	hrefs, err := e.strategy.Hrefs(ctx, e.page, e.opts)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, href := range hrefs {
		if strings.TrimSpace(href) == "" {
			continue
		}
		url := parser.NormalizeURL(e.opts.Origin, href)
		if e.registry.Add(url) {
			urls = append(urls, url)
		}
	}

	log.Printf("Found %d new URLs (%d candidates, %d seen in total)\n", len(urls), len(hrefs), e.registry.Len())

	if err := e.page.Scroll(ctx, e.opts.SecondScroll); err != nil {
		return urls, fmt.Errorf("failed to scroll after extraction: %w", err)
	}

	return urls, nil
}
