package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent-engine/internal/config"
	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/secrets"
)

// authRecorder is an enrichment endpoint that remembers the Authorization
// header of each call.
type authRecorder struct {
	mu    sync.Mutex
	auths []string
}

func (a *authRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.auths = append(a.auths, r.Header.Get("Authorization"))
		a.mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (a *authRecorder) seen() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.auths...)
}

type mapKeyring map[string]string

func (m mapKeyring) Get(service, user string) (string, error) {
	v, ok := m[service+"/"+user]
	if !ok {
		return "", secrets.ErrNotFound
	}
	return v, nil
}
func (m mapKeyring) Set(service, user, pw string) error { m[service+"/"+user] = pw; return nil }
func (m mapKeyring) Delete(service, user string) error  { delete(m, service+"/"+user); return nil }

func scanOnce(t *testing.T, f *Factory, settings domain.Settings) {
	t.Helper()
	s := f.New(indeedPage(t, indeedCard(1, "Backend Engineer", "Acme Corp")), settings)
	_, err := s.ScanIncremental(context.Background())
	require.NoError(t, err)
}

func TestFactoryTokenStaysWithConfiguredHost(t *testing.T) {
	var configured, other authRecorder
	cfgSrv := configured.server(t)
	otherSrv := other.server(t)

	f := &Factory{Timings: fastTimings()}
	f.Enrichment.BaseURL = cfgSrv.URL
	f.Enrichment.Token = "secret-for-configured"

	scanOnce(t, f, domain.DefaultSettings())
	assert.Equal(t, []string{"Bearer secret-for-configured"}, configured.seen())

	settings := domain.DefaultSettings()
	settings.ConvexURL = otherSrv.URL
	scanOnce(t, f, settings)
	assert.Equal(t, []string{""}, other.seen(), "configured token must not reach another host")
}

func TestFactoryTokenFromKeyringForSettingsHost(t *testing.T) {
	var other authRecorder
	otherSrv := other.server(t)

	ks := mapKeyring{}
	require.NoError(t, secrets.SetEnrichmentToken(ks, secrets.EnrichmentAccount(otherSrv.URL), "secret-for-other"))

	f := &Factory{Timings: fastTimings(), Keyring: ks}
	f.Enrichment.BaseURL = "https://configured.example.com"
	f.Enrichment.Token = "secret-for-configured"

	settings := domain.DefaultSettings()
	settings.ConvexURL = otherSrv.URL
	scanOnce(t, f, settings)
	assert.Equal(t, []string{"Bearer secret-for-other"}, other.seen())
}

func TestFactoryFollowsReloadedConfig(t *testing.T) {
	var first, second authRecorder
	firstSrv := first.server(t)
	secondSrv := second.server(t)

	cfg := config.Default()
	cfg.Enrichment.ConvexURL = firstSrv.URL
	cfg.Scan.BatchPauseMs = 1
	var mu sync.Mutex
	current := func() config.Config {
		mu.Lock()
		defer mu.Unlock()
		return cfg
	}

	shared := ratelimit.New(10, time.Minute)
	f := &Factory{Config: current, Shared: shared}
	scanOnce(t, f, domain.DefaultSettings())
	assert.Len(t, first.seen(), 1)

	mu.Lock()
	cfg.Enrichment.ConvexURL = secondSrv.URL
	cfg.Enrichment.RateLimit.MaxPerWindow = 3
	cfg.Scan.BatchSize = 7
	mu.Unlock()

	s := f.New(indeedPage(t, indeedCard(1, "Backend Engineer", "Acme Corp")), domain.DefaultSettings())
	_, err := s.ScanIncremental(context.Background())
	require.NoError(t, err)

	assert.Len(t, first.seen(), 1)
	assert.Len(t, second.seen(), 1)
	assert.Equal(t, 3, shared.Status().MaxPerWindow)
	assert.Equal(t, 7, s.timings.BatchSize)
}

func TestRegistryEvictsOldest(t *testing.T) {
	r := NewRegistry(2)
	f := &Factory{Timings: fastTimings()}
	a := f.New(indeedPage(t), domain.DefaultSettings())
	b := f.New(indeedPage(t), domain.DefaultSettings())
	c := f.New(indeedPage(t), domain.DefaultSettings())

	r.Put(a)
	r.Put(b)
	r.Put(b)
	assert.Equal(t, 2, r.Len())

	r.Put(c)
	_, ok := r.Get(a.ID)
	assert.False(t, ok)
	got, ok := r.Get(c.ID)
	require.True(t, ok)
	assert.Same(t, c, got)
}
