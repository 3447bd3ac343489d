// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
)

// Repository defines persistence operations for user accounts.
// Lookup methods return common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts a new user row.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername returns the user with the given username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail returns the user with the given email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByUsername reports whether a user with the username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Search returns users whose username, email, or full name contains
	// the keyword (case-insensitive).
	Search(ctx context.Context, keyword string) ([]*models.User, error)

	// UpdateAvatar sets the avatar URL of the given user.
	UpdateAvatar(ctx context.Context, id string, avatarURL string) error
}
