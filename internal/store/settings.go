package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"jobagent-engine/internal/domain"
)

// LoadSettings is best-effort: a missing or unreadable blob yields the
// defaults, and fields absent from a stored blob keep their default values.
// The error is returned for logging only.
func LoadSettings(ctx context.Context, kv KV) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if kv == nil {
		return s, nil
	}
	if _, err := kv.Get(ctx, domain.KeySettings, &s); err != nil {
		return domain.DefaultSettings(), err
	}
	return s, nil
}

func SaveSettings(ctx context.Context, kv KV, s domain.Settings) error {
	return kv.Put(ctx, domain.KeySettings, s)
}

// ClientID returns the stable per-installation id sent with enrichment
// requests, generating and persisting it on first use.
func ClientID(ctx context.Context, kv KV) (string, error) {
	unlock, err := kv.Lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	var id string
	found, err := kv.Get(ctx, domain.KeyClientID, &id)
	if err == nil && found && strings.TrimSpace(id) != "" {
		return id, nil
	}

	id = "client_" + uuid.NewString()
	if err := kv.Put(ctx, domain.KeyClientID, id); err != nil {
		return id, err
	}
	return id, nil
}

// NormalizeCompanyKey is the case- and space-insensitive form used when
// comparing company names.
func NormalizeCompanyKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}
