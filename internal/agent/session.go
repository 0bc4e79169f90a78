// Package agent runs the job agent against one page: the incremental scan
// coordinator, the manual highlight scan and the add-to-board affordance.
package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/peoplesearch"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/scan"
	"jobagent-engine/internal/sites"
)

var (
	ErrNoJobsFound = errors.New("no job listings found on this page")
	ErrUnknownCard = errors.New("unknown card")
)

// Enricher looks up sponsorship for company names. It must return one
// result per distinct name and never fail.
type Enricher interface {
	CheckCompanies(ctx context.Context, companies []string) []domain.SponsorshipResult
}

// Persister writes a job to the board, reporting whether it was inserted.
type Persister interface {
	Add(ctx context.Context, rec domain.JobRecord, res *domain.SponsorshipResult) bool
}

type Timings struct {
	Debounce     time.Duration
	InitialDelay time.Duration
	BatchSize    int
	BatchPause   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Debounce:     1000 * time.Millisecond,
		InitialDelay: 2000 * time.Millisecond,
		BatchSize:    10,
		BatchPause:   500 * time.Millisecond,
	}
}

type Options struct {
	Settings domain.Settings
	Enricher Enricher
	Board    Persister
	Notifier events.Notifier
	// Limiter is the session's window, shared with people search. It should
	// be the same Window the Enricher consults.
	Limiter *ratelimit.Window
	Timings Timings
	Log     *logging.Logger
}

// processed is what the session remembers about an annotated card.
type processed struct {
	Record domain.JobRecord
	Result domain.SponsorshipResult
}

// Session is the per-page agent state: site profile, rate limiter, the
// highlight-mode flag and what has been annotated so far. One Session per
// page load.
type Session struct {
	ID       string
	page     *page.Page
	profile  domain.SiteProfile
	settings domain.Settings
	timings  Timings

	scanner  *scan.Scanner
	enricher Enricher
	board    Persister
	notify   events.Notifier
	limiter  *ratelimit.Window
	people   *peoplesearch.Searcher
	log      *logging.Logger

	// scanMu serializes passes: a manual scan and a coordinator pass never
	// interleave.
	scanMu    sync.Mutex
	highlight atomic.Bool

	mu    sync.Mutex
	cards map[string]processed
	order []string
}

func NewSession(p *page.Page, opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	t := opts.Timings
	d := DefaultTimings()
	if t.BatchSize <= 0 {
		t.BatchSize = d.BatchSize
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(ratelimit.DefaultMaxPerWindow, ratelimit.DefaultWindow)
	}
	if opts.Notifier == nil {
		opts.Notifier = events.Discard{}
	}

	id := uuid.NewString()
	profile := sites.Resolve(p.Hostname())
	log = log.Component("agent").With("session", id, "site", profile.SiteID)

	return &Session{
		ID:       id,
		page:     p,
		profile:  profile,
		settings: opts.Settings,
		timings:  t,
		scanner:  scan.NewScanner(log),
		enricher: opts.Enricher,
		board:    opts.Board,
		notify:   opts.Notifier,
		limiter:  opts.Limiter,
		people:   peoplesearch.NewSearcher(peoplesearch.NewBuilder(opts.Settings), opts.Limiter, log),
		log:      log,
		cards:    make(map[string]processed),
	}
}

func (s *Session) Page() *page.Page            { return s.page }
func (s *Session) Profile() domain.SiteProfile { return s.profile }
func (s *Session) Limiter() *ratelimit.Window  { return s.limiter }
func (s *Session) Highlighting() bool          { return s.highlight.Load() }

// People returns the people-search gate bound to this session's limiter.
func (s *Session) People() *peoplesearch.Searcher { return s.people }

// Records returns every card annotated so far, in first-seen order.
func (s *Session) Records() []domain.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.JobRecord, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.cards[k].Record)
	}
	return out
}

// AddFromAffordance is the "add to board" button: key is the card's
// data-jobagent-add value.
func (s *Session) AddFromAffordance(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	pc, ok := s.cards[key]
	s.mu.Unlock()
	if !ok {
		return false, ErrUnknownCard
	}
	if s.board == nil {
		return false, nil
	}
	res := pc.Result
	return s.board.Add(ctx, pc.Record, &res), nil
}

func (s *Session) remember(key string, pc processed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[key]; !ok {
		s.order = append(s.order, key)
	}
	s.cards[key] = pc
}

func (s *Session) lookup(key string) (processed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.cards[key]
	return pc, ok
}

// cardKey is stable for the same title, company and link across re-renders.
func cardKey(r domain.JobRecord) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(r.Title+"\x00"+r.Company+"\x00"+r.URL)).String()
}
