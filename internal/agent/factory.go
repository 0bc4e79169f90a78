package agent

import (
	"net/url"
	"strings"
	"time"

	"jobagent-engine/internal/config"
	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/secrets"
	"jobagent-engine/internal/sponsorship"
)

// Factory builds sessions, each with a sponsorship client bound to the
// session's rate-limit window. Sessions get a fresh window unless Shared is
// set, in which case every session draws from it.
type Factory struct {
	// Enrichment.Token belongs to Enrichment.BaseURL and is never sent
	// anywhere else.
	Enrichment sponsorship.Options
	RateMax    int
	RateWindow time.Duration
	Shared     *ratelimit.Window
	Board      Persister
	Notifier   events.Notifier
	Timings    Timings
	Log        *logging.Logger

	// Config, when set, is read on every New: the enrichment endpoint,
	// rate-limit window and scan timings follow a reloaded config.
	Config func() config.Config
	// Keyring supplies the token for an endpoint other than
	// Enrichment.BaseURL.
	Keyring secrets.Store
}

// New starts a session for p. A convexUrl in settings overrides the
// configured endpoint.
func (f *Factory) New(p *page.Page, settings domain.Settings) *Session {
	opts, timings, rateMax, rateWindow := f.current()

	limiter := f.Shared
	if limiter == nil {
		limiter = ratelimit.New(rateMax, rateWindow)
	} else if f.Config != nil {
		limiter.SetLimits(rateMax, rateWindow)
	}

	if u := strings.TrimSpace(settings.ConvexURL); u != "" {
		opts.BaseURL = u
	}
	opts.Token = f.tokenFor(opts.BaseURL)

	return NewSession(p, Options{
		Settings: settings,
		Enricher: sponsorship.New(opts, limiter, f.Log),
		Board:    f.Board,
		Notifier: f.Notifier,
		Limiter:  limiter,
		Timings:  timings,
		Log:      f.Log,
	})
}

func (f *Factory) current() (sponsorship.Options, Timings, int, time.Duration) {
	opts := f.Enrichment
	if f.Config == nil {
		return opts, f.Timings, f.RateMax, f.RateWindow
	}
	cfg := f.Config()
	opts.BaseURL = cfg.Enrichment.ConvexURL
	opts.EndpointPath = cfg.Enrichment.EndpointPath
	opts.MaxCompanies = cfg.Enrichment.MaxCompanies
	opts.Timeout = cfg.EnrichmentTimeout()
	t := Timings{
		Debounce:     cfg.Debounce(),
		InitialDelay: cfg.InitialDelay(),
		BatchSize:    cfg.Scan.BatchSize,
		BatchPause:   cfg.BatchPause(),
	}
	return opts, t, cfg.Enrichment.RateLimit.MaxPerWindow, cfg.RateWindow()
}

// tokenFor returns the bearer token for endpoint: the keychain entry for its
// host when a keyring is set, else the static token only if endpoint is the
// host that token was issued for.
func (f *Factory) tokenFor(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	if f.Keyring != nil {
		tok, err := secrets.GetEnrichmentToken(f.Keyring, secrets.EnrichmentAccount(endpoint))
		if err == nil {
			return tok
		}
	}
	if sameHost(endpoint, f.Enrichment.BaseURL) {
		return f.Enrichment.Token
	}
	return ""
}

func sameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host) && strings.EqualFold(ua.Scheme, ub.Scheme)
}
