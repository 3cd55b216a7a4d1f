package fetcher

import (
	"fmt"
	"io"
	"log"
	"time"

	"avito-scraper/extractor"
)

// PageCloser is a page the extractor can drive that must be closed when done
type PageCloser interface {
	extractor.Page
	io.Closer
}

// Open opens url with the named driver: "rod", "chromedp" or "static"
func Open(driver, url string) (PageCloser, error) {
	log.Printf("Opening %s with %s driver\n", url, driver)

	switch driver {
	case "rod":
		browser, err := NewRodBrowser()
		if err != nil {
			return nil, err
		}
		page, err := browser.OpenPage(url)
		if err != nil {
			browser.Close()
			return nil, err
		}
		return &rodTab{RodPage: page, browser: browser}, nil
	case "chromedp":
		page, err := NewChromedpPage(url, 60*time.Second)
		if err != nil {
			return nil, err
		}
		return page, nil
	case "static":
		page, err := NewStaticPage(url)
		if err != nil {
			return nil, err
		}
		return page, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

// rodTab closes the browser together with its only tab
type rodTab struct {
	*RodPage
	browser *RodBrowser
}

func (t *rodTab) Close() error {
	if err := t.RodPage.Close(); err != nil {
		log.Printf("Warning: Failed to close page: %v\n", err)
	}
	return t.browser.Close()
}
