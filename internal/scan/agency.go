package scan

import (
	"strings"

	"jobagent-engine/internal/rules"
)

// AgencySignal names the pattern family that flagged a posting.
type AgencySignal string

const (
	SignalCompanyWord   AgencySignal = "company_word"
	SignalCompanySuffix AgencySignal = "company_suffix"
	SignalTitlePhrase   AgencySignal = "title_phrase"
	SignalClientPhrase  AgencySignal = "client_phrase"
)

var (
	agencyCompanyWords = rules.New(
		rules.P(SignalCompanyWord, `(?i)\b(recruit(s|ing|ment|ers?)?|staffing|headhunt(ers?|ing)?|personnel|resourcing|talent\s+(solutions|search|group|partners)|employment\s+(agency|services)|executive\s+search|search\s+firm|manpower|appointments)\b`),
	)
	agencySuffixes = rules.New(
		rules.P(SignalCompanySuffix, `(?i)\b(recruiting|recruitment|staffing|resourcing|talent|search|personnel|selection|appointments)\s+(partners|group|solutions|services|agency|associates|consultants|consultancy|international|global|uk|ltd|limited|llc|inc)\.?\s*$`),
	)
	agencyTitles = rules.New(
		rules.P(SignalTitlePhrase, `(?i)\b(recruiter|recruitment\s+(consultant|specialist|manager|partner|coordinator|advisor|resourcer)|talent\s+(acquisition|partner|sourcer|scout)|sourcer|resourcer|staffing\s+(specialist|consultant|coordinator|manager|partner)|headhunter)\b`),
	)
	agencyClientPhrases = rules.New(
		rules.P(SignalClientPhrase, `(?i)\b(on\s+behalf\s+of|our\s+client|confidential\s+client|client\s+of\s+ours|my\s+client|we\s+are\s+recruiting\s+for)\b`),
	)
)

// IsRecruitmentAgency is a union over four independent pattern families:
// agency words in the company name, agency suffixes, recruiter job titles and
// "on behalf of"-style phrases in the card text. Any single hit flags the
// posting.
func IsRecruitmentAgency(title, company, cardText string) bool {
	if _, ok := agencyCompanyWords.First(company); ok {
		return true
	}
	if _, ok := agencySuffixes.First(company); ok {
		return true
	}
	if _, ok := agencyTitles.First(title); ok {
		return true
	}
	_, ok := agencyClientPhrases.First(cardText)
	return ok
}

// AgencySignals reports every family that matched, for logging and tests.
func AgencySignals(title, company, cardText string) []AgencySignal {
	company = strings.TrimSpace(company)
	var out []AgencySignal
	out = append(out, agencyCompanyWords.All(company)...)
	out = append(out, agencySuffixes.All(company)...)
	out = append(out, agencyTitles.All(title)...)
	out = append(out, agencyClientPhrases.All(cardText)...)
	return out
}

// Classify sets IsRecruitmentAgency on every card record.
func Classify(cards []Card) {
	for i := range cards {
		r := &cards[i].Record
		r.IsRecruitmentAgency = IsRecruitmentAgency(r.Title, r.Company, cards[i].Text)
	}
}
