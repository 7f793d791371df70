// Package testutils provides in-memory repository implementations shared by
// package tests. They honor the same contracts as the SurrealDB-backed
// stores, including sentinel errors and conversation ordering.
package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nholden/beacon/internal/domain"
)

// MemoryUserStore is an in-memory domain.UserRepository.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*domain.User)}
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	s.seq++
	copied := *user
	if copied.ID == "" {
		copied.ID = fmt.Sprintf("user:%d", s.seq)
	}
	copied.CreatedAt = time.Now().UTC()
	s.users[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (s *MemoryUserStore) ListOthers(ctx context.Context, callerID string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.User
	for _, user := range s.users {
		if user.ID != callerID {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (s *MemoryUserStore) UpdateProfilePic(ctx context.Context, id, url string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user.ProfilePic = url
	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// MemoryMessageStore is an in-memory domain.MessageRepository. Messages keep
// insertion order, which equals createdAt ascending.
type MemoryMessageStore struct {
	mu       sync.Mutex
	messages []domain.Message
	seq      int

	// InsertErr, when set, makes the next Insert fail. Used to exercise the
	// media compensation path.
	InsertErr error
}

// NewMemoryMessageStore creates an empty MemoryMessageStore.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		err := s.InsertErr
		s.InsertErr = nil
		return nil, err
	}
	s.seq++
	copied := *msg
	copied.ID = fmt.Sprintf("message:%d", s.seq)
	copied.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
	s.messages = append(s.messages, copied)
	out := copied
	return &out, nil
}

func (s *MemoryMessageStore) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, msg := range s.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) || (msg.SenderID == userB && msg.ReceiverID == userA) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *MemoryMessageStore) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages {
		if msg.ID == id {
			copied := msg
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryMessageStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, msg := range s.messages {
		if msg.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
