// Package board persists discovered jobs to the job board collection after
// a fuzzy duplicate check.
package board

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/store"
)

// similarityRatio is the edit-distance threshold, as a share of the shorter
// normalized title.
const similarityRatio = 0.3

type Board struct {
	kv     store.KV
	notify events.Notifier
	log    *logging.Logger
	now    func() time.Time
}

func New(kv store.KV, notify events.Notifier, log *logging.Logger) *Board {
	if notify == nil {
		notify = events.Discard{}
	}
	return &Board{kv: kv, notify: notify, log: log.Component("board"), now: time.Now}
}

// Entries returns the stored board; a missing collection is empty.
func (b *Board) Entries(ctx context.Context) ([]domain.JobBoardEntry, error) {
	var entries []domain.JobBoardEntry
	if _, err := b.kv.Get(ctx, domain.KeyJobBoardData, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Add inserts rec unless the board already holds a similar job at the same
// company. It reports whether an entry was written; store failures are
// logged and read as false.
func (b *Board) Add(ctx context.Context, rec domain.JobRecord, res *domain.SponsorshipResult) bool {
	entry, ok, err := b.add(ctx, rec, res)
	if err != nil {
		b.log.Warn("add to board failed", "company", rec.Company, "title", rec.Title, "err", err)
		return false
	}
	if !ok {
		b.log.Debug("duplicate job skipped", "company", rec.Company, "title", rec.Title)
		return false
	}

	b.log.Info("job added to board", "id", entry.ID, "company", entry.Company)
	b.notify.Notify(events.TypeJobAdded, map[string]any{"action": "addJob", "job": entry})
	return true
}

func (b *Board) add(ctx context.Context, rec domain.JobRecord, res *domain.SponsorshipResult) (domain.JobBoardEntry, bool, error) {
	unlock, err := b.kv.Lock(ctx)
	if err != nil {
		return domain.JobBoardEntry{}, false, err
	}
	defer unlock()

	entries, err := b.Entries(ctx)
	if err != nil {
		return domain.JobBoardEntry{}, false, fmt.Errorf("load board: %w", err)
	}
	if IsDuplicate(entries, rec.Company, rec.Title) {
		return domain.JobBoardEntry{}, false, nil
	}

	now := b.now()
	entry := domain.JobBoardEntry{
		ID:                  EntryID(rec.Company, rec.Title, now),
		Company:             rec.Company,
		Title:               rec.Title,
		Location:            rec.Location,
		URL:                 rec.URL,
		DateAdded:           now,
		Status:              domain.StatusInterested,
		IsRecruitmentAgency: rec.IsRecruitmentAgency,
	}
	if res != nil {
		entry.SponsorshipInfo = &domain.SponsorshipInfo{
			IsSponsored:     res.IsSponsored,
			SponsorshipType: res.Type(),
		}
	}

	entries = append(entries, entry)
	if err := b.kv.Put(ctx, domain.KeyJobBoardData, entries); err != nil {
		return domain.JobBoardEntry{}, false, fmt.Errorf("save board: %w", err)
	}
	return entry, true, nil
}

// IsDuplicate reports whether any entry has the same company (ignoring
// case) and a similar title.
func IsDuplicate(entries []domain.JobBoardEntry, company, title string) bool {
	ck := store.NormalizeCompanyKey(company)
	for _, e := range entries {
		if store.NormalizeCompanyKey(e.Company) != ck {
			continue
		}
		if SimilarTitles(e.Title, title) {
			return true
		}
	}
	return false
}

// SimilarTitles compares normalized titles: either contains the other, or
// the edit distance is under 30% of the shorter one.
func SimilarTitles(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return na == nb
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	shorter := len([]rune(na))
	if n := len([]rune(nb)); n < shorter {
		shorter = n
	}
	return float64(levenshtein.ComputeDistance(na, nb)) < similarityRatio*float64(shorter)
}

var (
	nonAlnum  = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	unsafeKey = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeTitle lowercases, strips punctuation and collapses whitespace.
func NormalizeTitle(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// EntryID is company-title-unixmillis reduced to [a-z0-9-].
func EntryID(company, title string, at time.Time) string {
	raw := fmt.Sprintf("%s-%s-%d", company, title, at.UnixMilli())
	return strings.Trim(unsafeKey.ReplaceAllString(strings.ToLower(raw), "-"), "-")
}
