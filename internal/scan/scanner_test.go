package scan

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/sites"
)

const indeedListing = `<html><body>
<ul class="jobsearch-ResultsList">
  <li>
    <div class="job_seen_beacon">
      <div class="tapItem" data-jk="a1">
        <h2 class="jobTitle"><a class="jcs-JobTitle" href="/viewjob?jk=a1">Software Engineer</a></h2>
        <span data-testid="company-name">Acme Corp</span>
        <div data-testid="text-location">London</div>
      </div>
    </div>
  </li>
  <li>
    <div class="job_seen_beacon">
      <h2 class="jobTitle"><a href="/viewjob?jk=b2">Data Engineer</a></h2>
    </div>
  </li>
</ul>
</body></html>`

func TestScanRemovesNestedDuplicates(t *testing.T) {
	p, err := page.FromHTML("https://uk.indeed.com/jobs?q=go", indeedListing)
	require.NoError(t, err)

	cards := NewScanner(nil).Scan(p, sites.Resolve(p.Hostname()))
	require.Len(t, cards, 2)

	// No returned element may be contained by another returned element.
	for i, a := range cards {
		for j, b := range cards {
			if i == j {
				continue
			}
			assert.False(t, contains(a.Sel.Get(0), b.Sel.Get(0)), "card %d contains card %d", i, j)
		}
	}

	first := cards[0].Record
	assert.Equal(t, "Software Engineer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "London", first.Location)
	assert.Equal(t, "https://uk.indeed.com/viewjob?jk=a1", first.URL)
	assert.False(t, first.DateFound.IsZero())
}

func TestScanFallbacks(t *testing.T) {
	p, err := page.FromHTML("https://uk.indeed.com/jobs?q=go", indeedListing)
	require.NoError(t, err)

	cards := NewScanner(nil).Scan(p, sites.Resolve(p.Hostname()))
	require.Len(t, cards, 2)

	second := cards[1].Record
	assert.Equal(t, "Data Engineer", second.Title)
	assert.Equal(t, domain.UnknownCompany, second.Company)
	assert.Equal(t, domain.UnknownLocation, second.Location)
}

func TestScanLinkFallsBackToPageURL(t *testing.T) {
	p, err := page.FromHTML("https://www.linkedin.com/jobs/search", `<div class="base-card"><span>nothing useful</span></div>`)
	require.NoError(t, err)

	cards := NewScanner(nil).Scan(p, sites.Resolve(p.Hostname()))
	require.Len(t, cards, 1)
	assert.Equal(t, "https://www.linkedin.com/jobs/search", cards[0].Record.URL)
	assert.Equal(t, domain.UnknownTitle, cards[0].Record.Title)
}

func TestScanNoCards(t *testing.T) {
	p, err := page.FromHTML("https://uk.indeed.com/", `<p>no jobs here</p>`)
	require.NoError(t, err)

	cards := NewScanner(nil).Scan(p, sites.Resolve(p.Hostname()))
	assert.Empty(t, cards)
	assert.Empty(t, Records(cards))
}

func TestScanSkipsBadSelector(t *testing.T) {
	p, err := page.FromHTML("", `<div class="card"><h2>Role</h2></div>`)
	require.NoError(t, err)

	profile := domain.SiteProfile{
		SiteID:        "custom",
		CardSelectors: []string{"div[", ".card"},
		FieldSelectors: domain.FieldSelectors{
			Title: "h2",
		},
	}
	cards := NewScanner(nil).Scan(p, profile)
	require.Len(t, cards, 1)
	assert.Equal(t, "Role", cards[0].Record.Title)
}

func TestOutermostKeepsDocumentOrder(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="a"><div id="b"></div></div><div id="c"></div>`))
	require.NoError(t, err)

	a := doc.Find("#a").Get(0)
	b := doc.Find("#b").Get(0)
	c := doc.Find("#c").Get(0)

	got := outermost([]*html.Node{c, b, a})
	assert.Equal(t, []*html.Node{a, c}, got)
}

func contains(outer, inner *html.Node) bool {
	for n := inner.Parent; n != nil; n = n.Parent {
		if n == outer {
			return true
		}
	}
	return false
}
