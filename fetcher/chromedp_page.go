package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"avito-scraper/extractor"

	"github.com/chromedp/chromedp"
)

// ChromedpPage implements extractor.Page with chromedp. It owns the browser
// allocator and a single tab.
type ChromedpPage struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromedpPage starts headless Chrome and navigates a tab to url
func NewChromedpPage(url string, navigateTimeout time.Duration) (*ChromedpPage, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`),
	)
	if bin := findChrome(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	p := &ChromedpPage{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}

	// The first Run allocates the browser and binds its process to the
	// context it gets, so it must not carry a timeout.
	if err := chromedp.Run(tabCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	navCtx, cancel := context.WithTimeout(tabCtx, navigateTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	return p, nil
}

// tabContext derives a context from the tab that is also cancelled when the
// caller's ctx is. Cancelling it does not close the tab.
func (cp *ChromedpPage) tabContext(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(cp.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// run executes actions on the tab until they finish or either the tab or
// the caller's context is done
func (cp *ChromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := cp.tabContext(ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Scroll implements extractor.Page
func (cp *ChromedpPage) Scroll(ctx context.Context, dy float64) error {
	var done bool
	return cp.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %f); true", dy), &done))
}

// WaitForSelector implements extractor.Page
func (cp *ChromedpPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancelRun := cp.tabContext(ctx)
	defer cancelRun()
	waitCtx, cancel := context.WithTimeout(runCtx, timeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %v", extractor.ErrWaitTimeout, selector, timeout)
	}
	return err
}

// HTML implements extractor.Page
func (cp *ChromedpPage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := cp.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// QueryAttribute implements extractor.Page
func (cp *ChromedpPage) QueryAttribute(ctx context.Context, selector, name string) ([]*string, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	attr, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}

	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(el => el.getAttribute(%s))`, sel, attr)

	var values []*string
	if err := cp.run(ctx, chromedp.Evaluate(script, &values)); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return values, nil
}

// Close closes the tab and shuts the browser down
func (cp *ChromedpPage) Close() error {
	cp.cancelTab()
	cp.cancelAlloc()
	return nil
}
