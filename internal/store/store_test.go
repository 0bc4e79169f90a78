package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent-engine/internal/domain"
)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteGetPut(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	var got []string
	found, err := s.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put(ctx, "k", []string{"a", "b"}))
	require.NoError(t, s.Put(ctx, "k", []string{"c"}))

	found, err = s.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"c"}, got)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "agent.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", 42))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var n int
	found, err := s.Get(ctx, "k", &n)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, n)
}

func TestSQLiteLockSerializes(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.Put(ctx, "n", 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := s.Lock(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			var n int
			_, _ = s.Get(ctx, "n", &n)
			_ = s.Put(ctx, "n", n+1)
		}()
	}
	wg.Wait()

	var n int
	_, err := s.Get(ctx, "n", &n)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestLoadSettingsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	s, err := LoadSettings(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().DefaultConnectionLevel, s.DefaultConnectionLevel)

	// A partial blob keeps defaults for missing fields.
	require.NoError(t, kv.Put(ctx, domain.KeySettings, map[string]any{"convexUrl": "https://x.convex.cloud"}))
	s, err = LoadSettings(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, "https://x.convex.cloud", s.ConvexURL)
	assert.True(t, s.UKFiltersEnabled)
	assert.Nil(t, s.AutofillProfile)
}

func TestLoadSettingsGetErrorFallsBack(t *testing.T) {
	kv := NewMemory()
	kv.FailGet = assert.AnError

	s, err := LoadSettings(context.Background(), kv)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, domain.DefaultSettings().DefaultKeywords, s.DefaultKeywords)
}

func TestClientIDStable(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	a, err := ClientID(ctx, kv)
	require.NoError(t, err)
	b, err := ClientID(ctx, kv)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "client_"))
	assert.Equal(t, a, b)
}

func TestNormalizeCompanyKey(t *testing.T) {
	assert.Equal(t, "acme corp", NormalizeCompanyKey("  ACME   Corp "))
}
