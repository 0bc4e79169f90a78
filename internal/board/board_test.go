package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/store"
)

type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) Notify(typ string, _ any) {
	r.mu.Lock()
	r.types = append(r.types, typ)
	r.mu.Unlock()
}

func newBoard(kv store.KV, n *recorder) *Board {
	b := New(kv, n, logging.Nop())
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return b
}

func job(company, title string) domain.JobRecord {
	return domain.JobRecord{Company: company, Title: title, Location: "London", URL: "https://example.com/j"}
}

func TestAddDedupsExactAndNearTitles(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	n := &recorder{}
	b := newBoard(kv, n)

	assert.True(t, b.Add(ctx, job("Acme Corp", "Software Engineer"), nil))
	assert.False(t, b.Add(ctx, job("Acme Corp", "Software Engineer"), nil))
	assert.False(t, b.Add(ctx, job("acme corp", "Software Engineers"), nil))

	entries, err := b.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"jobAddedToBoard"}, n.types)

	e := entries[0]
	assert.Equal(t, "acme-corp-software-engineer-1700000000000", e.ID)
	assert.Equal(t, domain.StatusInterested, e.Status)
	assert.Nil(t, e.SponsorshipInfo)
}

func TestAddDifferentCompanyOrTitle(t *testing.T) {
	ctx := context.Background()
	b := newBoard(store.NewMemory(), &recorder{})

	require.True(t, b.Add(ctx, job("Acme Corp", "Software Engineer"), nil))
	assert.True(t, b.Add(ctx, job("Globex", "Software Engineer"), nil))
	assert.True(t, b.Add(ctx, job("Acme Corp", "Product Manager"), nil))

	entries, err := b.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAddCarriesSponsorshipAndAgency(t *testing.T) {
	ctx := context.Background()
	b := newBoard(store.NewMemory(), &recorder{})

	typ := "Skilled Worker"
	rec := job("Apex Recruiting Partners", "Staffing Specialist")
	rec.IsRecruitmentAgency = true
	require.True(t, b.Add(ctx, rec, &domain.SponsorshipResult{Company: rec.Company, IsSponsored: true, SponsorshipType: &typ}))

	entries, _ := b.Entries(ctx)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].SponsorshipInfo)
	assert.True(t, entries[0].SponsorshipInfo.IsSponsored)
	assert.Equal(t, "Skilled Worker", entries[0].SponsorshipInfo.SponsorshipType)
	assert.True(t, entries[0].IsRecruitmentAgency)
}

func TestAddStoreFailureIsFalse(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	n := &recorder{}
	b := newBoard(kv, n)

	kv.FailPut = assert.AnError
	assert.False(t, b.Add(ctx, job("Acme", "Engineer"), nil))

	kv.FailPut = nil
	kv.FailGet = assert.AnError
	assert.False(t, b.Add(ctx, job("Acme", "Engineer"), nil))
	assert.Empty(t, n.types)
}

func TestSimilarTitles(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Software Engineer", "Software Engineer", true},
		{"Software Engineer", "Senior Software Engineer", true},
		{"Software Engineer", "Sofware Engneer", true},
		{"Software Engineer (Go)", "software engineer - go", true},
		{"Data Analyst", "Data Engineer", false},
		{"Backend Developer", "Frontend Designer", false},
		{"", "", true},
		{"", "Engineer", false},
		{"!!!", "Engineer", false},
	}
	for _, tc := range cases {
		t.Run(tc.a+"|"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.want, SimilarTitles(tc.a, tc.b))
		})
	}
}

func TestEntryIDIsSafe(t *testing.T) {
	id := EntryID("Bob's Café & Co.", "C++ Dev / Lead", time.UnixMilli(42))
	assert.Regexp(t, `^[a-z0-9-]+$`, id)
	assert.Equal(t, "bob-s-caf-co-c-dev-lead-42", id)
}

func TestAddWithSQLite(t *testing.T) {
	ctx := context.Background()
	kv, err := store.Open(t.TempDir() + "/agent.db")
	require.NoError(t, err)
	defer kv.Close()

	b := newBoard(kv, &recorder{})
	assert.True(t, b.Add(ctx, job("Acme Corp", "Software Engineer"), nil))
	assert.False(t, b.Add(ctx, job("Acme Corp", "Software Engineer"), nil))

	entries, err := b.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
