package agent

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/scan"
	"jobagent-engine/internal/sponsorship"
	"jobagent-engine/internal/store"
)

// Pass summarizes one scan over the page.
type Pass struct {
	Cards     int                `json:"cards"`
	Processed int                `json:"processed"`
	Added     int                `json:"added"`
	Records   []domain.JobRecord `json:"records"`
}

// Run is the incremental coordinator. It scans once after the initial
// delay, then once per debounced burst of page mutations, until ctx is
// done. With UK filters disabled in settings it returns immediately.
func (s *Session) Run(ctx context.Context) error {
	if !s.settings.UKFiltersEnabled {
		s.log.Info("uk filters disabled, coordinator not started")
		return nil
	}

	changes, unsubscribe := s.page.Subscribe()
	defer unsubscribe()

	s.log.Info("coordinator started", "url", s.page.URL())
	Debouncer{Wait: s.timings.Debounce, Initial: s.timings.InitialDelay}.Loop(ctx, changes, func(ctx context.Context) {
		if _, err := s.ScanIncremental(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("incremental scan failed", "err", err)
		}
	})
	s.log.Info("coordinator stopped")
	return nil
}

// ScanIncremental processes the cards that do not yet carry the processed
// marker, in batches with a pause between them. It is skipped while
// highlight mode is on.
func (s *Session) ScanIncremental(ctx context.Context) (Pass, error) {
	if s.highlight.Load() {
		s.log.Debug("highlight mode on, incremental pass skipped")
		return Pass{}, nil
	}

	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	cards := s.scanner.Scan(s.page, s.profile)
	var fresh []scan.Card
	s.page.Read(func(*goquery.Document) {
		for _, c := range cards {
			if _, done := c.Sel.Attr(AttrProcessed); !done {
				fresh = append(fresh, c)
			}
		}
	})

	pass := Pass{Cards: len(cards)}
	err := s.batches(ctx, fresh, func(ctx context.Context, batch []scan.Card) {
		s.processBatch(ctx, batch, &pass, false)
	})
	s.finish("incremental", pass)
	return pass, err
}

// ScanNow is the manual "check now" scan: every card on the page is
// classified, enriched and highlighted. Nothing is persisted automatically.
func (s *Session) ScanNow(ctx context.Context) (Pass, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	cards := s.scanner.Scan(s.page, s.profile)
	if len(cards) == 0 {
		return Pass{}, ErrNoJobsFound
	}

	pass := Pass{Cards: len(cards)}
	err := s.batches(ctx, cards, func(ctx context.Context, batch []scan.Card) {
		s.processBatch(ctx, batch, &pass, true)
	})
	s.finish("manual", pass)
	return pass, err
}

// ToggleHighlight flips highlight mode. Turning it on runs ScanNow; if that
// fails the flag is restored. Turning it off strips highlight styling.
func (s *Session) ToggleHighlight(ctx context.Context) (bool, Pass, error) {
	if s.highlight.Load() {
		s.highlight.Store(false)
		s.page.Apply(clearHighlights)
		return false, Pass{}, nil
	}

	s.highlight.Store(true)
	pass, err := s.ScanNow(ctx)
	if err != nil {
		s.highlight.Store(false)
		return false, pass, err
	}
	return true, pass, nil
}

// batches runs fn over consecutive slices of BatchSize cards, pausing
// BatchPause between them. Batches are strictly sequential.
func (s *Session) batches(ctx context.Context, cards []scan.Card, fn func(context.Context, []scan.Card)) error {
	size := s.timings.BatchSize
	for start := 0; start < len(cards); start += size {
		if start > 0 {
			if err := sleep(ctx, s.timings.BatchPause); err != nil {
				return err
			}
		}
		end := start + size
		if end > len(cards) {
			end = len(cards)
		}
		fn(ctx, cards[start:end])
	}
	return nil
}

// processBatch classifies, enriches and annotates one batch. Cards already
// seen with a live result reuse it without another lookup.
func (s *Session) processBatch(ctx context.Context, batch []scan.Card, pass *Pass, highlight bool) {
	keys := make([]string, len(batch))
	cached := make([]bool, len(batch))
	var companies []string

	for i := range batch {
		rec := &batch[i].Record
		rec.IsRecruitmentAgency = scan.IsRecruitmentAgency(rec.Title, rec.Company, batch[i].Text)
		keys[i] = cardKey(*rec)
		if pc, ok := s.lookup(keys[i]); ok && pc.Result.Source == domain.SourceLive {
			cached[i] = true
			continue
		}
		companies = append(companies, rec.Company)
	}

	var index map[string]domain.SponsorshipResult
	if len(companies) > 0 && s.enricher != nil {
		index = sponsorship.Index(s.enricher.CheckCompanies(ctx, companies))
	}

	for i := range batch {
		card := batch[i]
		var res domain.SponsorshipResult
		if cached[i] {
			pc, _ := s.lookup(keys[i])
			res = pc.Result
		} else if r, ok := index[store.NormalizeCompanyKey(card.Record.Company)]; ok {
			res = r
		} else {
			res = domain.SponsorshipResult{Company: card.Record.Company, Source: domain.SourceError}
		}

		card.Record.IsSponsored = res.IsSponsored
		card.Record.SponsorshipType = res.Type()

		final := res.Source == domain.SourceLive
		s.page.Apply(func(*goquery.Document) {
			if highlight {
				s.highlightCard(card, keys[i], res)
			} else {
				s.annotate(card, keys[i], res, final)
			}
		})
		s.remember(keys[i], processed{Record: card.Record, Result: res})

		pass.Processed++
		pass.Records = append(pass.Records, card.Record)

		if highlight || cached[i] || s.board == nil {
			continue
		}
		if card.Record.IsSponsored || card.Record.IsRecruitmentAgency {
			r := res
			if s.board.Add(ctx, card.Record, &r) {
				pass.Added++
			}
		}
	}
}

func (s *Session) finish(kind string, pass Pass) {
	if pass.Processed == 0 {
		s.log.Debug("scan pass found nothing new", "kind", kind, "cards", pass.Cards)
		return
	}
	s.log.Info("scan pass complete", "kind", kind, "cards", pass.Cards, "processed", pass.Processed, "added", pass.Added)
	s.notify.Notify(events.TypeScanComplete, map[string]any{
		"session":   s.ID,
		"url":       s.page.URL(),
		"kind":      kind,
		"cards":     pass.Cards,
		"processed": pass.Processed,
		"added":     pass.Added,
	})
}
