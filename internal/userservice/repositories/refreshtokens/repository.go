// Package refreshtokens declares the repository contract for the durable
// refresh-token records backing the authentication flows.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
)

// Repository defines operations for storing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Create inserts a new refresh-token row. The token string carries a
	// UNIQUE constraint; a violation is an internal error, not part of the
	// authentication taxonomy, since tokens are cryptographically derived.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a row by its exact token string and returns
	// common.ErrorNotFound when absent. Absence is a valid result the
	// caller interprets as an invalid session.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes the row with the given token string.
	Delete(ctx context.Context, token string) error

	// DeleteAllForUser removes every row owned by userID and returns the
	// number removed. Idempotent: deleting zero rows is not an error.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes every row whose expiry precedes now and
	// returns the number removed. Called by the maintenance scheduler,
	// never from the request path.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
