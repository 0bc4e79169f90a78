package sponsorship

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/ratelimit"
)

type captured struct {
	calls int32
	last  request
	auth  string
}

func newServer(t *testing.T, c *captured, respond func(w http.ResponseWriter, req request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/action", r.URL.Path)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		atomic.AddInt32(&c.calls, 1)
		c.last = req
		c.auth = r.Header.Get("Authorization")
		respond(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(url string, limiter *ratelimit.Window) *Client {
	return New(Options{BaseURL: url, ClientID: "client_test", Token: "tok"}, limiter, logging.Nop())
}

func str(s string) *string { return &s }

func TestCheckCompaniesLive(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		// Out of order and differently cased; matched by company.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"value": []remoteResult{
				{Company: "globex", IsSponsored: false},
				{Company: "ACME CORP", IsSponsored: true, SponsorshipType: str("Skilled Worker"), MatchedName: "Acme Corporation Ltd"},
			},
		})
	})

	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), []string{"Acme Corp", "Globex", "acme corp", " "})
	require.Len(t, got, 2)

	assert.Equal(t, "sponsorship:checkCompanySponsorship", c.last.Path)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, c.last.Args.Companies)
	assert.Equal(t, "client_test", c.last.Args.ClientID)
	assert.Equal(t, "Bearer tok", c.auth)

	assert.Equal(t, "Acme Corp", got[0].Company)
	assert.True(t, got[0].IsSponsored)
	assert.Equal(t, "Skilled Worker", got[0].Type())
	assert.Equal(t, "Acme Corporation Ltd", got[0].MatchedName)
	assert.Equal(t, domain.SourceLive, got[0].Source)

	assert.False(t, got[1].IsSponsored)
	assert.Equal(t, domain.SourceLive, got[1].Source)
}

func TestCheckCompaniesBareArrayAndMissingRow(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		_ = json.NewEncoder(w).Encode([]remoteResult{{Company: "Acme Corp", IsSponsored: true}})
	})

	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), []string{"Acme Corp", "Initech"})
	require.Len(t, got, 2)
	assert.Equal(t, domain.SourceLive, got[0].Source)
	assert.Equal(t, "Initech", got[1].Company)
	assert.Equal(t, domain.SourceError, got[1].Source)
}

func TestCheckCompaniesServer429(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), []string{"A", "B", "C"})
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, domain.SourceServerRateLimited, r.Source)
		assert.False(t, r.IsSponsored)
	}
}

func TestCheckCompaniesConvexRateLimitPhrase(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":       "error",
			"errorMessage": "Uncaught Error: Rate limit exceeded for client",
		})
	})

	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), []string{"A", "B"})
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, domain.SourceConvexRateLimited, r.Source)
	}
}

func TestCheckCompaniesErrorField(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
	})
	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), []string{"A"})
	require.Len(t, got, 1)
	assert.Equal(t, domain.SourceConvexRateLimited, got[0].Source)
}

func TestCheckCompaniesTransportAndParseErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), []string{"A", "B"})
	require.Len(t, got, 2)
	assert.Equal(t, domain.SourceError, got[0].Source)

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	got = newClient(dead.URL, nil).CheckCompanies(context.Background(), []string{"A"})
	require.Len(t, got, 1)
	assert.Equal(t, domain.SourceError, got[0].Source)
}

func TestCheckCompaniesUnconfigured(t *testing.T) {
	got := newClient("", nil).CheckCompanies(context.Background(), []string{"A"})
	require.Len(t, got, 1)
	assert.Equal(t, domain.SourceError, got[0].Source)
}

func TestCheckCompaniesBatchCap(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		rows := make([]remoteResult, 0, len(req.Args.Companies))
		for _, name := range req.Args.Companies {
			rows = append(rows, remoteResult{Company: name})
		}
		_ = json.NewEncoder(w).Encode(rows)
	})

	names := make([]string, 120)
	for i := range names {
		names[i] = fmt.Sprintf("Company %03d", i)
	}

	got := newClient(srv.URL, nil).CheckCompanies(context.Background(), names)
	require.Len(t, got, 120)
	assert.LessOrEqual(t, len(c.last.Args.Companies), 50)
	assert.Equal(t, int32(1), atomic.LoadInt32(&c.calls))

	for i, r := range got {
		assert.Equal(t, names[i], r.Company)
		if i < 50 {
			assert.Equal(t, domain.SourceLive, r.Source)
		} else {
			assert.Equal(t, domain.SourceRateLimited, r.Source)
		}
	}
}

func TestCheckCompaniesClientLimiter(t *testing.T) {
	var c captured
	srv := newServer(t, &c, func(w http.ResponseWriter, req request) {
		_, _ = w.Write([]byte(`[]`))
	})

	now := time.Unix(0, 0)
	lim := ratelimit.New(2, time.Minute, ratelimit.WithClock(func() time.Time { return now }))
	cl := newClient(srv.URL, lim)

	for i := 0; i < 2; i++ {
		cl.CheckCompanies(context.Background(), []string{"A"})
	}
	got := cl.CheckCompanies(context.Background(), []string{"A", "B"})
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, domain.SourceRateLimited, r.Source)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&c.calls))

	now = now.Add(time.Minute + time.Second)
	got = cl.CheckCompanies(context.Background(), []string{"A"})
	assert.Equal(t, domain.SourceError, got[0].Source) // empty array: row missing
	assert.Equal(t, int32(3), atomic.LoadInt32(&c.calls))
}

func TestUniqueAndIndex(t *testing.T) {
	assert.Equal(t, []string{"Acme", "Globex"}, Unique([]string{" Acme ", "ACME", "", "Globex"}))
	idx := Index([]domain.SponsorshipResult{{Company: "Acme Corp", IsSponsored: true}})
	assert.True(t, idx["acme corp"].IsSponsored)
}
