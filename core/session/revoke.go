package session

import (
	"context"
	"sync"
	"time"
)

// Revoker remembers token ids that must no longer be accepted.
type Revoker interface {
	// Revoke rejects the token id until `until` (its natural expiry).
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ Revoker = (*memoryRevoker)(nil)

func NewMemoryRevoker() Revoker {
	return &memoryRevoker{revoked: make(map[string]time.Time)}
}

func (r *memoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := nowFunc()
	for id, exp := range r.revoked { // drop what has expired anyway
		if now.After(exp) {
			delete(r.revoked, id)
		}
	}
	if until.After(now) {
		r.revoked[tokenID] = until
	}
	return nil
}

func (r *memoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[tokenID]
	return ok && nowFunc().Before(exp), nil
}
