package storage

import (
	"context"

	"github.com/dmitrijs2005/fleetconsole/internal/client/repositories/metadata"
)

// LocalState is the console's view of everything kept in its data directory,
// used to inspect and discard it as a whole.
type LocalState struct {
	repo metadata.Repository
}

func NewLocalState(repo metadata.Repository) *LocalState {
	return &LocalState{repo: repo}
}

// Keys names the stored entries in key order.
func (l *LocalState) Keys(ctx context.Context) ([]string, error) {
	entries, err := l.repo.Entries(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// Wipe drops every entry, the stored credential included.
func (l *LocalState) Wipe(ctx context.Context) (int64, error) {
	return l.repo.Purge(ctx)
}
