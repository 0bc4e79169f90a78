// Package page holds the live document the agent works on and the ways a
// document gets loaded and refreshed.
package page

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Page is a document plus the URL it was loaded from.
//
// Writes that come from the host site (Mutate, Replace) notify subscribers.
// Writes made by the agent itself (Apply) do not, so annotating cards never
// feeds back into another scan.
type Page struct {
	mu  sync.RWMutex
	url *url.URL
	doc *goquery.Document

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

func New(rawURL string, doc *goquery.Document) *Page {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		u = &url.URL{}
	}
	u.Host = strings.ToLower(u.Host)
	return &Page{
		url:  u,
		doc:  doc,
		subs: make(map[chan struct{}]struct{}),
	}
}

func FromReader(rawURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return New(rawURL, doc), nil
}

func FromHTML(rawURL, html string) (*Page, error) {
	return FromReader(rawURL, strings.NewReader(html))
}

// FromFile loads a saved page. rawURL supplies the host used to pick a site
// profile; it may be empty.
func FromFile(path, rawURL string) (*Page, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromReader(rawURL, bytes.NewReader(b))
}

func (p *Page) URL() string {
	return p.url.String()
}

func (p *Page) Hostname() string {
	return strings.ToLower(p.url.Hostname())
}

// Resolve turns a possibly relative href into an absolute URL against the
// page URL.
func (p *Page) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if p.url.Scheme == "" {
		return ref.String()
	}
	return p.url.ResolveReference(ref).String()
}

func (p *Page) Read(fn func(doc *goquery.Document)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.doc)
}

// Apply runs an agent-side edit without notifying subscribers.
func (p *Page) Apply(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// Mutate runs a host-side edit and notifies subscribers.
func (p *Page) Mutate(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	fn(p.doc)
	p.mu.Unlock()
	p.notify()
}

// Replace swaps the whole document, as a full re-render would.
func (p *Page) Replace(doc *goquery.Document) {
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
	p.notify()
}

func (p *Page) HTML() (string, error) {
	var (
		out string
		err error
	)
	p.Read(func(doc *goquery.Document) {
		out, err = goquery.OuterHtml(doc.Selection)
	})
	return out, err
}

// Subscribe returns a channel that receives one value per burst of
// mutations. Pending notifications coalesce; the channel never blocks the
// writer.
func (p *Page) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	p.subMu.Lock()
	p.subs[ch] = struct{}{}
	p.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, ch)
			p.subMu.Unlock()
		})
	}
}

func (p *Page) notify() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
			// already pending
		}
	}
}

func contentHash(html string) string {
	h := sha256.Sum256([]byte(html))
	return hex.EncodeToString(h[:])
}
