package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"alphabook/internal/auth"
	"alphabook/internal/rbac"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store for tests and local runs.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]auth.UserRecord
	clock  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]auth.UserRecord), clock: time.Now}
}

// Add stores u, assigning an ID when it has none, and returns the stored copy.
func (s *MemoryStore) Add(u auth.UserRecord) auth.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextID++
		u.ID = s.nextID
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	now := s.clock().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u
}

func (s *MemoryStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (auth.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return auth.UserRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.UserRecord{}, auth.ErrUserNotFound
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (auth.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return auth.UserRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.UserRecord{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) ChangeRole(_ context.Context, id int64, role rbac.Role, authorize AuthorizeFunc) (auth.UserRecord, error) {
	return s.mutate(id, authorize, func(u *auth.UserRecord) { u.Role = role })
}

func (s *MemoryStore) BumpTokenVersion(_ context.Context, id int64, authorize AuthorizeFunc) (auth.UserRecord, error) {
	return s.mutate(id, authorize, func(u *auth.UserRecord) { u.TokenVersion++ })
}

func (s *MemoryStore) mutate(id int64, authorize AuthorizeFunc, apply func(*auth.UserRecord)) (auth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.UserRecord{}, auth.ErrUserNotFound
	}
	if authorize != nil {
		if err := authorize(u.Role); err != nil {
			return auth.UserRecord{}, err
		}
	}
	apply(&u)
	u.UpdatedAt = s.clock().UTC()
	s.users[id] = u
	return u, nil
}
