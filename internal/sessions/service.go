package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Create stores a new session for the given account and returns its opaque ID.
func (s *Service) Create(ctx context.Context, userID, username, role string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	id := hex.EncodeToString(b)
	sess := &Session{
		ID:        id,
		UserID:    userID,
		Username:  username,
		Role:      role,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return id, nil
}

// Validate returns the session when the ID is known and not expired.
// Expired sessions are cleaned up on sight.
func (s *Service) Validate(ctx context.Context, id string) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		_ = s.repo.DeleteByID(ctx, id)
		return nil, nil
	}
	return sess, nil
}

// SessionActive reports whether a session ID is still live. Used by the
// access-guard middleware on every protected request.
func (s *Service) SessionActive(ctx context.Context, id string) (bool, error) {
	sess, err := s.Validate(ctx, id)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

// Delete tears down a session. Deleting an unknown ID is a no-op, which
// makes logout idempotent.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}
