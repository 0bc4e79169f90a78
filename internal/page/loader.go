package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Loader returns the current HTML of a listing page.
type Loader interface {
	Load(ctx context.Context, rawURL string) (string, error)
}

// Fetcher loads server-rendered pages over plain HTTP.
type Fetcher struct {
	hc      *http.Client
	limiter *HostLimiter
}

func NewFetcher(limiter *HostLimiter, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (f *Fetcher) Load(ctx context.Context, rawURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("fetch page: status %s body=%q", resp.Status, string(b))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}
	return string(b), nil
}

// BrowserLoader renders JavaScript job boards in headless Chrome.
type BrowserLoader struct {
	Timeout time.Duration
	Settle  time.Duration
}

func (b BrowserLoader) Load(ctx context.Context, rawURL string) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	settle := b.Settle
	if settle <= 0 {
		settle = 3 * time.Second
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}

// Load fetches rawURL with l and parses it into a Page.
func Load(ctx context.Context, l Loader, rawURL string) (*Page, error) {
	html, err := l.Load(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return FromReader(rawURL, strings.NewReader(html))
}
