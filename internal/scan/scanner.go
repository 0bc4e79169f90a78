// Package scan extracts job cards from a listing page and classifies them.
package scan

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
)

// Card is one surviving card element and the record read from it.
type Card struct {
	Sel    *goquery.Selection
	Record domain.JobRecord
	// Text is the card's whole visible text, used by the agency classifier.
	Text string
}

type Scanner struct {
	log *logging.Logger
	now func() time.Time
}

func NewScanner(log *logging.Logger) *Scanner {
	if log == nil {
		log = logging.Nop()
	}
	return &Scanner{log: log.Component("scanner"), now: time.Now}
}

// Scan returns one Card per outermost matching element, in document order.
// A page with no cards yields an empty slice, not an error.
func (s *Scanner) Scan(p *page.Page, profile domain.SiteProfile) []Card {
	var out []Card
	p.Read(func(doc *goquery.Document) {
		nodes := outermost(collect(doc, profile.CardSelectors, s.log))
		if len(nodes) == 0 {
			s.log.Info("no job cards found", "site", profile.SiteID, "url", p.URL())
			return
		}

		found := s.now()
		for _, n := range nodes {
			card, ok := s.extract(p, profile, goquery.NewDocumentFromNode(n).Selection, found)
			if ok {
				out = append(out, card)
			}
		}
		s.log.Debug("scan complete", "site", profile.SiteID, "cards", len(out))
	})
	return out
}

// Records is a convenience for callers that only want the data.
func Records(cards []Card) []domain.JobRecord {
	out := make([]domain.JobRecord, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Record)
	}
	return out
}

func (s *Scanner) extract(p *page.Page, profile domain.SiteProfile, sel *goquery.Selection, found time.Time) (card Card, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn("card extraction failed", "site", profile.SiteID, "err", fmt.Sprint(rec))
			ok = false
		}
	}()

	f := profile.FieldSelectors
	rec := domain.JobRecord{
		Title:     orDefault(firstText(sel, f.Title), domain.UnknownTitle),
		Company:   orDefault(firstText(sel, f.Company), domain.UnknownCompany),
		Location:  orDefault(firstText(sel, f.Location), domain.UnknownLocation),
		URL:       p.Resolve(firstHref(sel, f.Link)),
		DateFound: found,
	}
	if rec.URL == "" {
		rec.URL = p.URL()
	}

	return Card{Sel: sel, Record: rec, Text: CleanText(sel.Text())}, true
}

// collect gathers matches for every selector, deduplicated by node identity
// and kept in first-seen order.
func collect(doc *goquery.Document, selectors []string, log *logging.Logger) []*html.Node {
	seen := map[*html.Node]bool{}
	var out []*html.Node
	for _, css := range selectors {
		matches, err := find(doc.Selection, css)
		if err != nil {
			log.Warn("bad card selector", "selector", css, "err", err)
			continue
		}
		for _, n := range matches.Nodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// outermost drops every node contained by another node of the set, then
// restores document order.
func outermost(nodes []*html.Node) []*html.Node {
	set := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}

	keep := map[*html.Node]bool{}
	for _, n := range nodes {
		nested := false
		for a := n.Parent; a != nil; a = a.Parent {
			if set[a] {
				nested = true
				break
			}
		}
		if !nested {
			keep[n] = true
		}
	}
	if len(keep) == 0 {
		return nil
	}

	var root *html.Node
	for n := nodes[0]; n != nil; n = n.Parent {
		root = n
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if keep[n] {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// find compiles css itself so a broken selector is reported; goquery alone
// would silently match nothing.
func find(sel *goquery.Selection, css string) (*goquery.Selection, error) {
	m, err := cascadia.Compile(css)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", css, err)
	}
	return sel.FindMatcher(m), nil
}

func firstText(card *goquery.Selection, css string) string {
	if css == "" {
		return ""
	}
	m, err := find(card, css)
	if err != nil {
		return ""
	}
	var text string
	m.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = CleanText(s.Text())
		return text == ""
	})
	return text
}

func firstHref(card *goquery.Selection, css string) string {
	if goquery.NodeName(card) == "a" {
		if href, ok := card.Attr("href"); ok && href != "" {
			return href
		}
	}
	if css == "" {
		css = "a[href]"
	}
	m, err := find(card, css)
	if err != nil {
		return ""
	}
	var href string
	m.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("href"); ok {
			href = v
		} else if v, ok := s.Find("a[href]").First().Attr("href"); ok {
			href = v
		}
		return href == ""
	})
	return href
}
