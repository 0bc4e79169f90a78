// Package peoplesearch builds recruiter/people search queries for a job's
// company. Searches share the session's rate limiter with sponsorship
// lookups.
package peoplesearch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/ratelimit"
)

const searchBase = "https://www.linkedin.com/search/results/people/"

var ErrRateLimited = errors.New("people search rate limited")

type RateLimitError struct {
	Cooldown time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("people search rate limited, retry in %s", e.Cooldown.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

type Query struct {
	Company         string `json:"company"`
	Role            string `json:"role,omitempty"`
	Keywords        string `json:"keywords"`
	ConnectionLevel string `json:"connectionLevel"`
	URL             string `json:"url"`
}

type Builder struct {
	Keywords        string
	ConnectionLevel string
}

func NewBuilder(s domain.Settings) Builder {
	d := domain.DefaultSettings()
	b := Builder{Keywords: s.DefaultKeywords, ConnectionLevel: s.DefaultConnectionLevel}
	if strings.TrimSpace(b.Keywords) == "" {
		b.Keywords = d.DefaultKeywords
	}
	if strings.TrimSpace(b.ConnectionLevel) == "" {
		b.ConnectionLevel = d.DefaultConnectionLevel
	}
	return b
}

// Build forms `"<company>" (<keywords>) <role>` and the search URL for it.
func (b Builder) Build(company, role string) Query {
	company = strings.TrimSpace(company)
	role = strings.TrimSpace(role)

	parts := make([]string, 0, 3)
	if company != "" && company != domain.UnknownCompany {
		parts = append(parts, fmt.Sprintf("%q", company))
	}
	if kw := strings.TrimSpace(b.Keywords); kw != "" {
		parts = append(parts, "("+kw+")")
	}
	if role != "" && role != domain.UnknownTitle {
		parts = append(parts, role)
	}
	keywords := strings.Join(parts, " ")

	q := url.Values{}
	q.Set("keywords", keywords)
	if code := networkCode(b.ConnectionLevel); code != "" {
		q.Set("network", fmt.Sprintf(`["%s"]`, code))
	}
	q.Set("origin", "FACETED_SEARCH")

	return Query{
		Company:         company,
		Role:            role,
		Keywords:        keywords,
		ConnectionLevel: b.ConnectionLevel,
		URL:             searchBase + "?" + q.Encode(),
	}
}

func networkCode(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "1st", "1":
		return "F"
	case "2nd", "2":
		return "S"
	case "3rd", "3", "3rd+":
		return "O"
	}
	return ""
}

type Searcher struct {
	b       Builder
	limiter *ratelimit.Window
	log     *logging.Logger
}

func NewSearcher(b Builder, limiter *ratelimit.Window, log *logging.Logger) *Searcher {
	return &Searcher{b: b, limiter: limiter, log: log.Component("peoplesearch")}
}

// Search counts against the shared window. When the window is full it
// returns a *RateLimitError carrying the cooldown.
func (s *Searcher) Search(company, role string) (Query, error) {
	if !s.limiter.Allow() {
		cd := s.limiter.Cooldown()
		s.log.Warn("people search rate limited", "cooldown", cd)
		return Query{}, &RateLimitError{Cooldown: cd}
	}
	s.limiter.RecordRequest()
	q := s.b.Build(company, role)
	s.log.Debug("people search", "company", q.Company, "keywords", q.Keywords)
	return q, nil
}
