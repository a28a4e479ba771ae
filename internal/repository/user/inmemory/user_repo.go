package inmemory

import (
	"context"
	"strings"
	"sync"
	"taskBurst/internal/models/user"
	repo "taskBurst/internal/repository"
	"time"

	"github.com/google/uuid"
)

type UserStorage struct {
	mtx     sync.RWMutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *UserStorage) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := normalizeEmail(email)
	if _, ok := s.byEmail[key]; ok {
		return nil, repo.ErrAlreadyExists
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byEmail[key] = u.ID

	res := *u
	return &res, nil
}

func (s *UserStorage) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *s.byID[id]
	return &res, nil
}

func (s *UserStorage) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *u
	return &res, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
