package auth

import (
	"context"
	"sync"
	"time"
)

type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocations для режима без Redis; записи чистятся при проверке.
type MemoryRevocations struct {
	mtx     sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !expiresAt.After(m.now()) {
		return nil
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}

	_, ok := m.revoked[tokenID]
	return ok, nil
}
