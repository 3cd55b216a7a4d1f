package models

import "time"

// Item represents one listing URL emitted by the extractor
type Item struct {
	URL       string
	SearchURL string // Search results page the item was found on
	Pass      int    // Extraction pass that first emitted the URL (1-based)
	FoundAt   time.Time
}

// NewItems wraps freshly extracted URLs into items
func NewItems(urls []string, searchURL string, pass int, foundAt time.Time) []Item {
	items := make([]Item, 0, len(urls))
	for _, u := range urls {
		items = append(items, Item{
			URL:       u,
			SearchURL: searchURL,
			Pass:      pass,
			FoundAt:   foundAt,
		})
	}
	return items
}
