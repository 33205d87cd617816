package store

import (
	"context"
	"sync"
	"time"
)

// Memory implements Store with in-process maps. Intended for tests and
// examples; nothing survives a restart.
type Memory struct {
	mu      sync.Mutex
	users   map[string]*UserRecord // by id
	byEmail map[string]string      // email -> id
	byReset map[string]string      // reset token hash -> id
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*UserRecord),
		byEmail: make(map[string]string),
		byReset: make(map[string]string),
	}
}

func (s *Memory) Create(_ context.Context, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[rec.Email]; exists {
		return ErrDuplicateEmail
	}

	clone := *rec
	s.users[rec.ID] = &clone
	s.byEmail[rec.Email] = rec.ID

	return nil
}

func (s *Memory) GetByEmail(_ context.Context, email string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}

	return s.cloneLocked(id)
}

func (s *Memory) GetByID(_ context.Context, id string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cloneLocked(id)
}

func (s *Memory) SetResetToken(_ context.Context, id, tokenHash string, expiresAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	if rec.ResetTokenHash != "" {
		delete(s.byReset, rec.ResetTokenHash)
	}
	rec.ResetTokenHash = tokenHash
	rec.ResetExpiresAt = expiresAt
	s.byReset[tokenHash] = id

	return nil
}

func (s *Memory) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byReset[tokenHash]
	if !ok {
		return "", ErrResetNotFound
	}
	rec, ok := s.users[id]
	if !ok || rec.ResetTokenHash != tokenHash {
		delete(s.byReset, tokenHash)
		return "", ErrResetNotFound
	}
	if time.Now().Unix() >= rec.ResetExpiresAt {
		rec.ResetTokenHash = ""
		rec.ResetExpiresAt = 0
		delete(s.byReset, tokenHash)
		return "", ErrResetNotFound
	}

	rec.PasswordHash = newPasswordHash
	rec.ResetTokenHash = ""
	rec.ResetExpiresAt = 0
	delete(s.byReset, tokenHash)

	return id, nil
}

func (s *Memory) MarkVerified(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Verified {
		return true, nil
	}
	rec.Verified = true

	return false, nil
}

func (s *Memory) cloneLocked(id string) (*UserRecord, error) {
	rec, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}
