// Package handlers exposes the user-service HTTP surface: registration,
// login/refresh/logout, user lookup and search, and avatar upload. The
// gateway rewrites the public /api/auth/* paths to /api/users/* before
// requests land here.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
	"github.com/dmitrijs2005/chatapp/internal/userservice/services"
)

// AuthService is the slice of the auth orchestrator the handlers need.
type AuthService interface {
	Login(ctx context.Context, login string, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// UserService is the slice of the user management service the handlers need.
type UserService interface {
	Register(ctx context.Context, req *services.RegisterRequest) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, keyword string) ([]*models.User, error)
	SetAvatar(ctx context.Context, username string, avatarURL string) error
}

// AvatarStorage stores uploaded avatar files.
type AvatarStorage interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedGetURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	auth    AuthService
	users   UserService
	avatars AvatarStorage
	logger  logging.Logger
}

// New constructs the handler set.
func New(auth AuthService, users UserService, avatars AvatarStorage, logger logging.Logger) *Handlers {
	return &Handlers{
		auth:    auth,
		users:   users,
		avatars: avatars,
		logger:  logger.With("module", "http"),
	}
}

// Register attaches all routes to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/register", h.handleRegister)
	mux.HandleFunc("POST /api/users/login", h.handleLogin)
	mux.HandleFunc("POST /api/users/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/users/logout", h.handleLogout)
	mux.HandleFunc("GET /api/users/search", h.handleSearch)
	mux.HandleFunc("GET /api/users/{id}", h.handleGetByID)
	mux.HandleFunc("POST /api/upload/avatar", h.handleAvatarUpload)
	mux.HandleFunc("DELETE /api/upload/avatar", h.handleAvatarDelete)
	mux.HandleFunc("GET /api/upload/avatar/presigned-url", h.handleAvatarPresignedURL)
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
