package storage

import (
	"context"

	"github.com/dmitrijs2005/fleetconsole/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fleetconsole/internal/common"
)

// CredentialStore persists the bearer token under common.TokenStorageKey.
// It holds nothing else.
type CredentialStore struct {
	repo metadata.Repository
}

func NewCredentialStore(repo metadata.Repository) *CredentialStore {
	return &CredentialStore{repo: repo}
}

// Load returns the stored token, or "" when none is stored.
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *CredentialStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.TokenStorageKey, []byte(token))
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *CredentialStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenStorageKey)
}
