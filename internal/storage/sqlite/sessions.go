// ABOUTME: Login session storage operations for SQLite
// ABOUTME: Opaque random tokens mapped to user IDs with an expiry
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/nutricoach/internal/storage"
)

// SessionStore handles session persistence
type SessionStore struct {
	db  *DB
	now func() time.Time
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

// Create issues a new session token for a user
func (s *SessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (*storage.Session, error) {
	if userID == "" {
		return nil, errors.New("session user ID cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session TTL must be positive")
	}

	now := s.now().UTC()
	session := &storage.Session{
		Token:     "ses_" + uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.Token, session.UserID, session.CreatedAt.UnixNano(), session.ExpiresAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// Lookup resolves an unexpired session token
func (s *SessionStore) Lookup(ctx context.Context, token string) (*storage.Session, error) {
	var (
		session   = storage.Session{Token: token}
		createdAt int64
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, created_at, expires_at FROM sessions WHERE token = ?
	`, token).Scan(&session.UserID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.CreatedAt = fromUnixNano(createdAt)
	session.ExpiresAt = fromUnixNano(expiresAt)
	if !s.now().Before(session.ExpiresAt) {
		return nil, storage.ErrNotFound
	}
	return &session, nil
}

// Delete revokes a session token
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
