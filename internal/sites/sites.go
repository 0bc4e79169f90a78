// Package sites maps a page host to the selectors used to read its job cards.
package sites

import (
	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/rules"
)

const Unknown = "unknown"

var profiles = map[string]domain.SiteProfile{
	"linkedin": {
		SiteID: "linkedin",
		CardSelectors: []string{
			".jobs-search-results__list-item",
			".job-card-container",
			".base-card",
			"[data-job-id]",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    ".job-card-list__title, .base-search-card__title, .job-card-container__link strong",
			Company:  ".job-card-container__primary-description, .artdeco-entity-lockup__subtitle, .base-search-card__subtitle",
			Location: ".job-card-container__metadata-item, .job-search-card__location",
			Link:     "a.job-card-container__link, a.base-card__full-link, a[href*='/jobs/view/']",
		},
		CompanySelector: ".job-card-container__primary-description, .artdeco-entity-lockup__subtitle, .base-search-card__subtitle",
	},
	"indeed": {
		SiteID: "indeed",
		CardSelectors: []string{
			".job_seen_beacon",
			".jobsearch-ResultsList > li",
			".tapItem",
			"[data-jk]",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    "h2.jobTitle, .jobTitle, [data-testid='jobTitle']",
			Company:  "[data-testid='company-name'], .companyName",
			Location: "[data-testid='text-location'], .companyLocation",
			Link:     "h2.jobTitle a, a.jcs-JobTitle, a[href*='/viewjob'], a[href*='/rc/clk']",
		},
		CompanySelector: "[data-testid='company-name'], .companyName",
	},
	"glassdoor": {
		SiteID: "glassdoor",
		CardSelectors: []string{
			"[data-test='jobListing']",
			".JobsList_jobListItem__wjTHv",
			".react-job-listing",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    "[data-test='job-title'], .JobCard_jobTitle__GLyJ1",
			Company:  ".EmployerProfile_compactEmployerName__9MGcV, [data-test='employer-name']",
			Location: "[data-test='emp-location'], .JobCard_location__Ds1fM",
			Link:     "a[data-test='job-title'], a[href*='/job-listing/']",
		},
		CompanySelector: ".EmployerProfile_compactEmployerName__9MGcV, [data-test='employer-name']",
	},
	"reed": {
		SiteID: "reed",
		CardSelectors: []string{
			"article.job-card_jobCard__MkcJD",
			"article.job-result",
			"[data-qa='job-card']",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    "[data-qa='job-card-title'], h2.job-result-heading__title",
			Company:  "[data-qa='job-posted-by'] a, .job-result-heading__posted-by a",
			Location: "[data-qa='job-metadata-location'], .job-metadata__item--location",
			Link:     "a[data-qa='job-card-title'], h2 a",
		},
		CompanySelector: "[data-qa='job-posted-by'] a, .job-result-heading__posted-by a",
	},
	"totaljobs": {
		SiteID: "totaljobs",
		CardSelectors: []string{
			"article[data-testid='job-item']",
			".job",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    "[data-testid='job-item-title'], h2",
			Company:  "[data-at='job-item-company-name'], .company",
			Location: "[data-at='job-item-location'], .location",
			Link:     "a[data-testid='job-item-title'], h2 a",
		},
		CompanySelector: "[data-at='job-item-company-name'], .company",
	},
	"monster": {
		SiteID: "monster",
		CardSelectors: []string{
			"[data-testid='svx_jobCard']",
			".job-cardstyle__JobCardComponent",
			"section.card-content",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    "[data-testid='jobTitle'], h2.title",
			Company:  "[data-testid='company'], .company .name",
			Location: "[data-testid='jobDetailLocation'], .location .name",
			Link:     "a[data-testid='jobTitle'], h2.title a",
		},
		CompanySelector: "[data-testid='company'], .company .name",
	},
	Unknown: {
		SiteID: Unknown,
		CardSelectors: []string{
			"[class*='job-card']",
			"[class*='jobCard']",
			"[class*='job-listing']",
			"[class*='job-result']",
			"article",
		},
		FieldSelectors: domain.FieldSelectors{
			Title:    "h1, h2, h3, [class*='title']",
			Company:  "[class*='company'], [class*='employer']",
			Location: "[class*='location']",
			Link:     "a[href]",
		},
		CompanySelector: "[class*='company'], [class*='employer']",
	},
}

var hosts = rules.New(
	rules.P("linkedin", `(?i)linkedin`),
	rules.P("indeed", `(?i)indeed`),
	rules.P("glassdoor", `(?i)glassdoor`),
	rules.P("reed", `(?i)reed\.co`),
	rules.P("totaljobs", `(?i)totaljobs`),
	rules.P("monster", `(?i)monster`),
)

// Resolve never fails: hosts that match no known board get the broad
// "unknown" profile.
func Resolve(hostname string) domain.SiteProfile {
	id, ok := hosts.First(hostname)
	if !ok {
		id = Unknown
	}
	return clone(profiles[id])
}

// Known lists the site ids with dedicated selectors.
func Known() []string {
	out := make([]string, 0, len(hosts))
	for _, r := range hosts {
		out = append(out, r.Tag)
	}
	return out
}

func clone(p domain.SiteProfile) domain.SiteProfile {
	p.CardSelectors = append([]string(nil), p.CardSelectors...)
	return p
}
