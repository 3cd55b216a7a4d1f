package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"avito-scraper/extractor"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodBrowser owns a headless Chrome driven by rod
type RodBrowser struct {
	browser *rod.Browser
}

// NewRodBrowser launches Chrome and connects to it
func NewRodBrowser() (*RodBrowser, error) {
	// Keep the profile on disk instead of in memory; mount this as a volume in containers
	userDataDir := os.Getenv("BOT_DATA_DIR")
	if userDataDir == "" {
		userDataDir = "/tmp/avito-data"
	}

	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		log.Printf("Warning: Failed to create browser data directory %s: %v\n", userDataDir, err)
		userDataDir = ""
	}

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false). // leakless trips some antivirus software
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-popup-blocking").
		Set("mute-audio").
		Set("window-size", "1366,900")
	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}

	if bin := findChrome(); bin != "" {
		l = l.Bin(bin)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w\n\nNote: On Linux, you may need to install Chromium dependencies:\n  apt-get update && apt-get install -y chromium chromium-sandbox || yum install -y chromium", err)
	}

	browser, err := connectBrowser(browserURL, l.Kill)
	if err != nil {
		return nil, err
	}

	return &RodBrowser{browser: browser}, nil
}

// connectBrowser connects to the browser at controlURL. kill is called when
// that fails so the launched process does not outlive us.
func connectBrowser(controlURL string, kill func()) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return browser, nil
}

// findChrome returns the first system Chrome/Chromium binary found, or ""
// to let rod download its own Chromium
func findChrome() string {
	paths := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}
	if username := os.Getenv("USERNAME"); username != "" {
		paths = append(paths, `C:\Users\`+username+`\AppData\Local\Google\Chrome\Application\chrome.exe`)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Close closes the browser
func (rb *RodBrowser) Close() error {
	if rb.browser != nil {
		return rb.browser.Close()
	}
	return nil
}

// OpenPage opens a new tab and navigates it to url
func (rb *RodBrowser) OpenPage(url string) (*RodPage, error) {
	page, err := rb.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		log.Printf("Warning: Page load event not received for %s: %v\n", url, err)
	}

	if err := page.Timeout(10*time.Second).WaitStable(500 * time.Millisecond); err != nil {
		log.Printf("Warning: Page did not stabilize within timeout, continuing anyway: %v\n", err)
	}

	return &RodPage{page: page}, nil
}

// wheelX and wheelY place the pointer inside the viewport for wheel events
const (
	wheelX = 100
	wheelY = 100
)

// RodPage implements extractor.Page on top of a rod tab
type RodPage struct {
	page *rod.Page
}

// Scroll implements extractor.Page. The wheel event is dispatched on the
// ctx-bound page so cancelling ctx aborts it.
func (rp *RodPage) Scroll(ctx context.Context, dy float64) error {
	return proto.InputDispatchMouseEvent{
		Type:   proto.InputDispatchMouseEventTypeMouseWheel,
		X:      wheelX,
		Y:      wheelY,
		DeltaY: dy,
	}.Call(rp.page.Context(ctx))
}

// WaitForSelector implements extractor.Page
func (rp *RodPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	page := rp.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	_, err := page.Element(selector)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %v", extractor.ErrWaitTimeout, selector, timeout)
	}
	return err
}

// HTML implements extractor.Page
func (rp *RodPage) HTML(ctx context.Context) (string, error) {
	return rp.page.Context(ctx).HTML()
}

// QueryAttribute implements extractor.Page
func (rp *RodPage) QueryAttribute(ctx context.Context, selector, name string) ([]*string, error) {
	elements, err := rp.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	values := make([]*string, 0, len(elements))
	for _, el := range elements {
		value, err := el.Attribute(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s attribute: %w", name, err)
		}
		values = append(values, value)
	}
	return values, nil
}

// Close closes the tab
func (rp *RodPage) Close() error {
	return rp.page.Close()
}
