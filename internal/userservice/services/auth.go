// Package services contains the user-service business logic: the
// authentication orchestration (login, refresh, logout), user management,
// and the expired-token cleanup worker.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/dmitrijs2005/chatapp/internal/dbx"
	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/token"
	"github.com/dmitrijs2005/chatapp/internal/userservice/config"
	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
	"github.com/dmitrijs2005/chatapp/internal/userservice/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult bundles the credentials minted for an authenticated user.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService implements the authentication flows.
//
//   - Login: verify credentials, mint an access/refresh pair, rotate the
//     stored refresh token (at most one live record per user).
//   - Refresh: validate a refresh token against both its signature and the
//     stored record, then mint a new access token. The refresh token itself
//     is NOT rotated on use: rotation happens only at login. A leaked
//     refresh token therefore stays valid for its full TTL; this mirrors
//     the session model the rest of the system is built around and is an
//     accepted tradeoff, not an oversight.
//   - Logout: revoke the stored record.
type AuthService struct {
	db              *sql.DB
	repos           repomanager.RepositoryManager
	codec           *token.Codec
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	logger          logging.Logger
}

// NewAuthService constructs an AuthService from repositories and config.
func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:              db,
		repos:           repos,
		codec:           token.NewCodec(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		logger:          logger.With("module", "auth_service"),
	}
}

// Login verifies the password for the user identified by login (username
// or email) and returns a fresh token pair. Both unknown users and wrong
// passwords fail with common.ErrInvalidCredentials so the caller cannot
// tell which identities exist; neither case mutates the store.
func (s *AuthService) Login(ctx context.Context, login string, password string) (*AuthResult, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUsername(ctx, login)
	if errors.Is(err, common.ErrorNotFound) {
		user, err = repo.GetByEmail(ctx, login)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	accessToken, err := s.codec.Issue(user.Username, s.accessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshToken, err := s.codec.Issue(user.Username, s.refreshTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// Rotation: drop every prior record for this user, then persist the new
	// one. Running both inside one transaction keeps the
	// one-live-token-per-user invariant even under concurrent logins.
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repos.RefreshTokens(tx)
		if _, err := repoTx.DeleteAllForUser(ctx, user.ID); err != nil {
			return err
		}
		return repoTx.Create(ctx, &models.RefreshToken{
			ID:        uuid.NewString(),
			Token:     refreshToken,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(s.refreshTokenTTL),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user", user.Username)

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

// Refresh validates refreshToken and mints a new access token.
//
// Validation is two-layered and both layers must hold:
//  1. the token signature/structure/expiry (before any store access),
//  2. the stored record: present, unexpired, and owned by the token subject.
//
// The store-level expiry is authoritative: an expired record is deleted
// and the call fails with common.ErrTokenExpired even though the signature
// check already embeds its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if !s.codec.Verify(refreshToken) {
		return nil, common.ErrTokenInvalid
	}

	repo := s.repos.RefreshTokens(s.db)

	record, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if record.Expired(time.Now()) {
		if err := repo.Delete(ctx, record.Token); err != nil {
			return nil, fmt.Errorf("error deleting expired refresh token: %w", err)
		}
		return nil, common.ErrTokenExpired
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Owner row gone while the token record survived.
			return nil, common.ErrSubjectMismatch
		}
		return nil, fmt.Errorf("error loading token owner: %w", err)
	}

	subject, err := s.codec.Subject(refreshToken)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}
	if subject != user.Username {
		s.logger.Warn(ctx, "refresh token subject mismatch", "subject", subject, "owner", user.Username)
		return nil, common.ErrSubjectMismatch
	}

	accessToken, err := s.codec.Issue(subject, s.accessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// Same refresh token echoed back: no rotation on use.
	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

// Logout revokes refreshToken by deleting its stored record. A second
// logout with the same token fails with common.ErrTokenNotFound: the
// "already logged out" signal is deliberate, not a silent no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if !s.codec.Verify(refreshToken) {
		return common.ErrTokenInvalid
	}

	repo := s.repos.RefreshTokens(s.db)

	record, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrTokenNotFound
		}
		return fmt.Errorf("error searching refresh token: %w", err)
	}

	if err := repo.Delete(ctx, record.Token); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}

	s.logger.Info(ctx, "user logged out", "user_id", record.UserID)
	return nil
}
