package page

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/scheduler"
)

// Watch reloads the page every interval and replaces the document when the
// source HTML changed. It stands in for a DOM mutation observer when the
// page lives outside a browser. It blocks until ctx is done.
func Watch(ctx context.Context, p *Page, l Loader, interval time.Duration, log *logging.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	log = log.Component("watch").With("url", p.URL())

	last := ""
	if html, err := p.HTML(); err == nil {
		last = contentHash(html)
	}

	scheduler.Every(ctx, interval, "watch", log, func(ctx context.Context) error {
		html, err := l.Load(ctx, p.URL())
		if err != nil {
			return err
		}
		h := contentHash(html)
		if h == last {
			return nil
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return err
		}
		last = h
		log.Debug("page changed", "hash", h[:12])
		p.Replace(doc)
		return nil
	})
}
