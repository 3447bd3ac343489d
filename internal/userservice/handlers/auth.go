package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/dmitrijs2005/chatapp/internal/userservice/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authPayload struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *userPayload `json:"user"`
}

func toAuthPayload(res *services.AuthResult) *authPayload {
	return &authPayload{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         toUserPayload(res.User),
	}
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := h.users.Register(r.Context(), &services.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, "username is already taken")
		case errors.Is(err, common.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "email is already registered")
		default:
			h.logger.Error(r.Context(), "register failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeSuccess(w, "user registered", toUserPayload(user))
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid username or password")
			return
		}
		h.logger.Error(r.Context(), "login failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, "login successful", toAuthPayload(res))
}

func (h *Handlers) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	writeSuccess(w, "token refreshed", toAuthPayload(res))
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	writeSuccess(w, "logout successful", nil)
}

// writeAuthError maps refresh/logout failures to responses. Every token
// problem is a client error; only unexpected store failures are 500s.
func (h *Handlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrTokenInvalid):
		writeError(w, http.StatusBadRequest, "invalid refresh token")
	case errors.Is(err, common.ErrTokenNotFound):
		writeError(w, http.StatusBadRequest, "refresh token not found")
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "refresh token expired")
	case errors.Is(err, common.ErrSubjectMismatch):
		writeError(w, http.StatusBadRequest, "refresh token does not match its owner")
	default:
		h.logger.Error(r.Context(), "token operation failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
