// Package sponsorship checks company names against the remote sponsor
// register. Every call returns exactly one result per distinct requested
// company; failures are encoded in Result.Source, never returned as errors.
package sponsorship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/store"
)

const (
	DefaultEndpointPath = "/api/action"
	DefaultMaxCompanies = 50
	FunctionPath        = "sponsorship:checkCompanySponsorship"

	rateLimitPhrase = "Rate limit exceeded"
	maxBody         = 4 << 20
)

type Options struct {
	BaseURL      string
	EndpointPath string
	MaxCompanies int
	Timeout      time.Duration
	ClientID     string
	Token        string
	HTTPClient   *http.Client
}

type Client struct {
	hc       *http.Client
	url      string
	max      int
	clientID string
	token    string
	limiter  *ratelimit.Window
	log      *logging.Logger
}

func New(opts Options, limiter *ratelimit.Window, log *logging.Logger) *Client {
	if opts.EndpointPath == "" {
		opts.EndpointPath = DefaultEndpointPath
	}
	if opts.MaxCompanies <= 0 {
		opts.MaxCompanies = DefaultMaxCompanies
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultMaxPerWindow, ratelimit.DefaultWindow)
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u := ""
	if base != "" {
		u = base + "/" + strings.TrimLeft(opts.EndpointPath, "/")
	}
	return &Client{
		hc:       hc,
		url:      u,
		max:      opts.MaxCompanies,
		clientID: opts.ClientID,
		token:    opts.Token,
		limiter:  limiter,
		log:      log.Component("sponsorship"),
	}
}

type request struct {
	Path   string      `json:"path"`
	Args   requestArgs `json:"args"`
	Format string      `json:"format"`
}

type requestArgs struct {
	Companies []string `json:"companies"`
	ClientID  string   `json:"clientId"`
}

type remoteResult struct {
	Company         string  `json:"company"`
	IsSponsored     bool    `json:"isSponsored"`
	SponsorshipType *string `json:"sponsorshipType"`
	MatchedName     string  `json:"matchedName"`
}

type envelope struct {
	Status       string          `json:"status"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
	Error        string          `json:"error"`
}

// CheckCompanies deduplicates companies (case-insensitively, first spelling
// wins) and returns one result per distinct name in that order. Names past
// the per-call cap are not sent and come back as rate_limited.
func (c *Client) CheckCompanies(ctx context.Context, companies []string) []domain.SponsorshipResult {
	unique := Unique(companies)
	if len(unique) == 0 {
		return nil
	}

	if !c.limiter.Allow() {
		c.log.Warn("client rate limit reached, skipping lookup", "companies", len(unique), "cooldown", c.limiter.Cooldown())
		return synthesize(unique, domain.SourceRateLimited)
	}

	batch, overflow := unique, []string(nil)
	if len(unique) > c.max {
		batch, overflow = unique[:c.max], unique[c.max:]
		c.log.Warn("company batch truncated", "requested", len(unique), "sent", c.max)
	}

	out := c.lookup(ctx, batch)
	return append(out, synthesize(overflow, domain.SourceRateLimited)...)
}

func (c *Client) lookup(ctx context.Context, batch []string) []domain.SponsorshipResult {
	if c.url == "" {
		c.log.Warn("enrichment endpoint not configured")
		return synthesize(batch, domain.SourceError)
	}

	body, err := json.Marshal(request{
		Path:   FunctionPath,
		Args:   requestArgs{Companies: batch, ClientID: c.clientID},
		Format: "json",
	})
	if err != nil {
		return synthesize(batch, domain.SourceError)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.Warn("build enrichment request", "err", err)
		return synthesize(batch, domain.SourceError)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.limiter.RecordRequest()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("enrichment request failed", "err", err)
		return synthesize(batch, domain.SourceError)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.log.Warn("enrichment endpoint rate limited", "status", resp.StatusCode)
		return synthesize(batch, domain.SourceServerRateLimited)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.log.Warn("read enrichment response", "err", err)
		return synthesize(batch, domain.SourceError)
	}

	items, src, err := decode(raw)
	if err != nil {
		if src == domain.SourceConvexRateLimited {
			c.log.Warn("enrichment backend rate limited", "err", err)
		} else {
			c.log.Warn("enrichment response rejected", "status", resp.StatusCode, "err", err)
		}
		return synthesize(batch, src)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("enrichment endpoint error", "status", resp.StatusCode)
		return synthesize(batch, domain.SourceError)
	}

	return associate(batch, items)
}

// decode accepts either a bare result array or a {status, value,
// errorMessage} envelope. On failure the returned source says which
// sentinel to use.
func decode(raw []byte) ([]remoteResult, domain.Source, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, domain.SourceError, fmt.Errorf("empty response")
	}

	if trimmed[0] == '[' {
		var items []remoteResult
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, domain.SourceError, fmt.Errorf("parse results: %w", err)
		}
		return items, domain.SourceLive, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, domain.SourceError, fmt.Errorf("parse envelope: %w", err)
	}
	msg := env.ErrorMessage
	if msg == "" {
		msg = env.Error
	}
	if strings.Contains(msg, rateLimitPhrase) {
		return nil, domain.SourceConvexRateLimited, fmt.Errorf("%s", msg)
	}
	if msg != "" || strings.EqualFold(env.Status, "error") {
		return nil, domain.SourceError, fmt.Errorf("remote error: %q", msg)
	}

	var items []remoteResult
	if len(env.Value) > 0 && string(env.Value) != "null" {
		if err := json.Unmarshal(env.Value, &items); err != nil {
			return nil, domain.SourceError, fmt.Errorf("parse value: %w", err)
		}
	}
	return items, domain.SourceLive, nil
}

// associate matches remote rows back to the requested names by company,
// not position. A requested name with no row gets source error.
func associate(batch []string, items []remoteResult) []domain.SponsorshipResult {
	byKey := make(map[string]remoteResult, len(items))
	for _, it := range items {
		k := store.NormalizeCompanyKey(it.Company)
		if _, ok := byKey[k]; !ok {
			byKey[k] = it
		}
	}

	out := make([]domain.SponsorshipResult, 0, len(batch))
	for _, name := range batch {
		it, ok := byKey[store.NormalizeCompanyKey(name)]
		if !ok {
			out = append(out, domain.SponsorshipResult{Company: name, Source: domain.SourceError})
			continue
		}
		out = append(out, domain.SponsorshipResult{
			Company:         name,
			IsSponsored:     it.IsSponsored,
			SponsorshipType: it.SponsorshipType,
			Source:          domain.SourceLive,
			MatchedName:     it.MatchedName,
		})
	}
	return out
}

func synthesize(names []string, src domain.Source) []domain.SponsorshipResult {
	out := make([]domain.SponsorshipResult, 0, len(names))
	for _, n := range names {
		out = append(out, domain.SponsorshipResult{Company: n, Source: src})
	}
	return out
}

// Unique trims names and drops blanks and case-insensitive repeats,
// keeping first-seen order and spelling.
func Unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		k := store.NormalizeCompanyKey(n)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Index maps the normalized company key to its result.
func Index(results []domain.SponsorshipResult) map[string]domain.SponsorshipResult {
	m := make(map[string]domain.SponsorshipResult, len(results))
	for _, r := range results {
		m[store.NormalizeCompanyKey(r.Company)] = r
	}
	return m
}
