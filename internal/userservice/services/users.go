package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
	"github.com/dmitrijs2005/chatapp/internal/userservice/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

// UserService handles user management: registration, retrieval, search.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "user_service"),
	}
}

// Register creates a new active user after checking username and email
// uniqueness. The password is stored as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	repo := s.repos.Users(s.db)

	taken, err := repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		return nil, common.ErrUsernameTaken
	}

	taken, err = repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, common.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := repo.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Status:       models.StatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user", user.Username)
	return user, nil
}

// GetByID returns the user with the given id or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// GetByUsername returns the user with the given username or
// common.ErrorNotFound. The gateway identifies callers by the token
// subject, which is the username, so handlers resolve identity through
// this lookup.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// SetAvatar records the avatar URL for the user identified by username.
// The caller identity arrives as the gateway-injected token subject, so
// the row is resolved by username before the id-keyed update.
func (s *UserService) SetAvatar(ctx context.Context, username string, avatarURL string) error {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := repo.UpdateAvatar(ctx, user.ID, avatarURL); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error updating avatar: %w", err)
	}
	return nil
}

// Search returns users matching the keyword against username, email, or
// full name.
func (s *UserService) Search(ctx context.Context, keyword string) ([]*models.User, error) {
	result, err := s.repos.Users(s.db).Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	return result, nil
}
