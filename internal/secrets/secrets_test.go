package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type mockStore struct{}

func (mockStore) Get(s, u string) (string, error) { return keyring.Get(s, u) }
func (mockStore) Set(s, u, p string) error         { return keyring.Set(s, u, p) }
func (mockStore) Delete(s, u string) error         { return keyring.Delete(s, u) }

func TestEnrichmentTokenRoundTrip(t *testing.T) {
	keyring.MockInit()
	ks := mockStore{}
	acct := EnrichmentAccount("https://happy-otter-123.convex.cloud")
	assert.Equal(t, "jobagent:enrichment:happy-otter-123.convex.cloud", acct)

	_, err := GetEnrichmentToken(ks, acct)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SetEnrichmentToken(ks, acct, " tok "))
	tok, err := GetEnrichmentToken(ks, acct)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, DeleteEnrichmentToken(ks, acct))
	_, err = GetEnrichmentToken(ks, acct)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetEnrichmentToken(mockStore{}, "", "x"))
	assert.Error(t, SetEnrichmentToken(mockStore{}, "a", " "))
}
