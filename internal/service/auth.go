package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/user/llm-router-go/internal/repository"
	"github.com/user/llm-router-go/internal/routererrors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionExpireHours is the management session lifetime.
const SessionExpireHours = 24

// CurrentAdmin is the authenticated management user context.
type CurrentAdmin struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// AuthService handles management API authentication: password login and
// opaque session tokens.
type AuthService struct {
	admins *repository.AdminRepo
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(admins *repository.AdminRepo, logger *zap.Logger) *AuthService {
	return &AuthService{admins: admins, logger: logger}
}

// Login verifies credentials and creates a session, returning its token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.admins.FindUserByUsername(ctx, username)
	if err != nil {
		return "", routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to look up user", err)
	}
	if user == nil || !user.IsActive || !verifyPassword(password, user.PasswordHash) {
		return "", routererrors.New(routererrors.ErrorTypeUnauthorized, "invalid credentials")
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to generate session token", err)
	}
	expiresAt := time.Now().UTC().Add(SessionExpireHours * time.Hour)
	if err := s.admins.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return "", routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to create session", err)
	}

	s.logger.Info("admin login", zap.String("username", username))
	return token, nil
}

// ValidateSession resolves a session token to its admin user.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*CurrentAdmin, error) {
	session, username, err := s.admins.FindValidSession(ctx, token)
	if err != nil {
		return nil, routererrors.Wrap(routererrors.ErrorTypeInternal, "failed to look up session", err)
	}
	if session == nil {
		return nil, routererrors.New(routererrors.ErrorTypeUnauthorized, "invalid or expired session")
	}
	return &CurrentAdmin{UserID: session.UserID, Username: username}, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.admins.DeleteSessionByToken(ctx, token)
}

// CleanupExpiredSessions removes expired sessions.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.admins.CleanupExpiredSessions(ctx)
}

// CreateDefaultAdmin creates the bootstrap admin user if it does not exist.
func (s *AuthService) CreateDefaultAdmin(ctx context.Context, username, password string) error {
	existing, err := s.admins.FindUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.admins.InsertUser(ctx, username, hash); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	s.logger.Info("default admin created", zap.String("username", username))
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
