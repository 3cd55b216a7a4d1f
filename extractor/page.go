package extractor

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned by Page.WaitForSelector when the selector did
// not match within the timeout
var ErrWaitTimeout = errors.New("timed out waiting for selector")

// Page is an already-navigated browser tab (or equivalent) the extractor
// drives. Implementations are not expected to be safe for concurrent use.
type Page interface {
	// Scroll scrolls the page vertically by dy pixels
	Scroll(ctx context.Context, dy float64) error
	// WaitForSelector blocks until selector matches or timeout elapses,
	// in which case it returns ErrWaitTimeout
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// HTML returns the full rendered markup
	HTML(ctx context.Context) (string, error)
	// QueryAttribute returns attribute name of every element matching
	// selector; a nil entry means the element has no such attribute
	QueryAttribute(ctx context.Context, selector, name string) ([]*string, error)
}
