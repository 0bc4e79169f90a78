package secrets

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the agent's secrets in the OS keychain.
	KeyringService = "jobagent"
)

var ErrNotFound = errors.New("enrichment token not found in keychain")

// Store is the subset of go-keyring the engine uses; tests swap in
// keyring.MockInit or a fake.
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(s, u string) (string, error) { return keyring.Get(s, u) }
func (osKeyring) Set(s, u, p string) error         { return keyring.Set(s, u, p) }
func (osKeyring) Delete(s, u string) error         { return keyring.Delete(s, u) }

var Default Store = osKeyring{}

func GetEnrichmentToken(ks Store, account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", ErrNotFound
	}
	tok, err := ks.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", ErrNotFound
	}
	return strings.TrimSpace(tok), nil
}

func SetEnrichmentToken(ks Store, account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return ks.Set(KeyringService, account, token)
}

func DeleteEnrichmentToken(ks Store, account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return ks.Delete(KeyringService, account)
}

// EnrichmentAccount names the keychain entry for one enrichment deployment.
func EnrichmentAccount(convexURL string) string {
	host := convexURL
	if u, err := url.Parse(convexURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("jobagent:enrichment:%s", strings.ToLower(host))
}
