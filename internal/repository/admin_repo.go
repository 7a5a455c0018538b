package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AdminUser is a management API account.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// AdminSession is an opaque-token login session for an admin user.
type AdminSession struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// AdminRepo persists management users and sessions.
type AdminRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAdminRepository creates a new AdminRepo.
func NewAdminRepository(db *sql.DB, logger *zap.Logger) *AdminRepo {
	return &AdminRepo{db: db, logger: logger}
}

// FindUserByUsername returns the user, or (nil, nil) when absent.
func (r *AdminRepo) FindUserByUsername(ctx context.Context, username string) (*AdminUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_active, created_at
		FROM admin_users WHERE username = ?
	`, username)

	var u AdminUser
	var active int
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &active, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	u.IsActive = active == 1
	u.CreatedAt = parseSQLTime(createdAt)
	return &u, nil
}

// InsertUser creates an admin user and returns its id.
func (r *AdminRepo) InsertUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_users (username, password_hash, is_active) VALUES (?, ?, 1)
	`, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("failed to insert admin user: %w", err)
	}
	return res.LastInsertId()
}

// CreateSession stores a new session token.
func (r *AdminRepo) CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (user_id, token, expires_at) VALUES (?, ?, ?)
	`, userID, token, expiresAt.UTC().Format(sqlTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindValidSession resolves an unexpired session token to its user.
// Returns (nil, "", nil) when the token is unknown or expired.
func (r *AdminRepo) FindValidSession(ctx context.Context, token string) (*AdminSession, string, error) {
	now := time.Now().UTC().Format(sqlTimeLayout)
	row := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.token, s.expires_at, u.username
		FROM admin_sessions s
		JOIN admin_users u ON u.id = s.user_id
		WHERE s.token = ? AND s.expires_at > ? AND u.is_active = 1
	`, token, now)

	var s AdminSession
	var expiresAt, username string
	if err := row.Scan(&s.ID, &s.UserID, &s.Token, &expiresAt, &username); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to look up session: %w", err)
	}
	s.ExpiresAt = parseSQLTime(expiresAt)
	return &s, username, nil
}

// DeleteSessionByToken removes a session.
func (r *AdminRepo) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and returns the count.
func (r *AdminRepo) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(sqlTimeLayout)
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return res.RowsAffected()
}
