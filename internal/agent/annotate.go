package agent

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/scan"
)

// Attributes and classes the agent writes into the page.
const (
	AttrProcessed = "data-jobagent-processed"
	AttrAdd       = "data-jobagent-add"
	AttrBadge     = "data-jobagent-badge"
	AttrHighlight = "data-jobagent-highlight"

	ClassBadge       = "jobagent-badge"
	ClassCompanyInfo = "jobagent-company-info"
	ClassAdd         = "jobagent-add"
	ClassHighlight   = "jobagent-highlight"
)

// Badge variants.
const (
	BadgeSponsored       = "sponsored"
	BadgeRouteIneligible = "route-ineligible"
	BadgeNone            = "none"
	BadgeUnknown         = "unknown"
	BadgeAgency          = "agency"
)

// variant picks the badge for a result. Throttled and failed lookups are
// "unknown", never "none".
func variant(res domain.SponsorshipResult, accepted []string) string {
	if res.Source != domain.SourceLive && res.Source != "" {
		return BadgeUnknown
	}
	if !res.IsSponsored {
		return BadgeNone
	}
	if len(accepted) > 0 && !routeAccepted(res.Type(), accepted) {
		return BadgeRouteIneligible
	}
	return BadgeSponsored
}

func routeAccepted(typ string, accepted []string) bool {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		return false
	}
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" && (strings.Contains(typ, a) || strings.Contains(a, typ)) {
			return true
		}
	}
	return false
}

func badgeText(v string, res domain.SponsorshipResult) string {
	switch v {
	case BadgeSponsored, BadgeRouteIneligible:
		label := "Visa sponsor"
		if t := res.Type(); t != "" {
			label += ": " + t
		}
		if v == BadgeRouteIneligible {
			label += " (route not accepted)"
		}
		return label
	case BadgeNone:
		return "No sponsorship"
	case BadgeAgency:
		return "Recruitment agency"
	}
	switch res.Source {
	case domain.SourceRateLimited, domain.SourceServerRateLimited, domain.SourceConvexRateLimited:
		return "Sponsorship check rate limited"
	}
	return "Sponsorship unknown"
}

func badgeHTML(v string, res domain.SponsorshipResult) string {
	return fmt.Sprintf(`<span class="%s %s-%s" %s="%s">%s</span>`,
		ClassBadge, ClassBadge, v, AttrBadge, v, html.EscapeString(badgeText(v, res)))
}

func companyInfoHTML(res domain.SponsorshipResult) string {
	var b strings.Builder
	b.WriteString(`<div class="` + ClassCompanyInfo + `">`)
	name := res.MatchedName
	if name == "" {
		name = res.Company
	}
	b.WriteString(html.EscapeString(name))
	if res.IsSponsored {
		b.WriteString(" &middot; licensed sponsor")
		if t := res.Type(); t != "" {
			b.WriteString(" &middot; " + html.EscapeString(t))
		}
	}
	if res.Source != "" && res.Source != domain.SourceLive {
		b.WriteString(" &middot; " + html.EscapeString(string(res.Source)))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func addButtonHTML(key string) string {
	return fmt.Sprintf(`<button type="button" class="%s" %s="%s">Add to board</button>`,
		ClassAdd, AttrAdd, html.EscapeString(key))
}

// strip removes everything a previous annotation of card added.
func strip(card *goquery.Selection) {
	card.Find("." + ClassBadge).Remove()
	card.Find("." + ClassCompanyInfo).Remove()
	card.Find("." + ClassAdd).Remove()
	card.RemoveAttr(AttrProcessed)
}

// annotate writes badges, company info and the add button into card. final
// sets the processed marker; cards whose lookup was throttled or failed are
// left unmarked so a later pass retries them.
func (s *Session) annotate(card scan.Card, key string, res domain.SponsorshipResult, final bool) {
	strip(card.Sel)

	card.Sel.AppendHtml(badgeHTML(variant(res, s.settings.UKEligibilityCriteria.AcceptedRoutes), res))
	if card.Record.IsRecruitmentAgency {
		card.Sel.AppendHtml(badgeHTML(BadgeAgency, res))
	}
	if ce := s.companyElement(card.Sel); ce != nil {
		ce.AfterHtml(companyInfoHTML(res))
	}
	card.Sel.AppendHtml(addButtonHTML(key))

	if final {
		card.Sel.SetAttr(AttrProcessed, "true")
	}
}

// highlightCard is the manual-scan style: one class on the whole card plus
// the add button.
func (s *Session) highlightCard(card scan.Card, key string, res domain.SponsorshipResult) {
	v := variant(res, s.settings.UKEligibilityCriteria.AcceptedRoutes)
	if card.Record.IsRecruitmentAgency {
		v = BadgeAgency
	}
	card.Sel.AddClass(ClassHighlight, ClassHighlight+"-"+v)
	card.Sel.SetAttr(AttrHighlight, v)
	card.Sel.Find("." + ClassAdd).Remove()
	card.Sel.AppendHtml(addButtonHTML(key))
}

func clearHighlights(doc *goquery.Document) {
	doc.Find("[" + AttrHighlight + "]").Each(func(_ int, sel *goquery.Selection) {
		v := sel.AttrOr(AttrHighlight, "")
		sel.RemoveClass(ClassHighlight, ClassHighlight+"-"+v)
		sel.RemoveAttr(AttrHighlight)
	})
}

func (s *Session) companyElement(card *goquery.Selection) *goquery.Selection {
	for _, css := range []string{s.profile.CompanySelector, s.profile.FieldSelectors.Company} {
		if css == "" {
			continue
		}
		if m := card.Find(css).First(); m.Length() > 0 {
			return m
		}
	}
	return nil
}
