package handlers

import (
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
	"github.com/google/uuid"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// presignTTL bounds how long a presigned avatar download link stays valid.
const presignTTL = 15 * time.Minute

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (h *Handlers) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(common.UserIDHeader)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+4096)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxAvatarSize {
		writeError(w, http.StatusBadRequest, "file exceeds the 5 MiB limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "only jpeg, png, gif and webp images are allowed")
		return
	}
	// Keep the original extension when it agrees with the declared type.
	if orig := strings.ToLower(filepath.Ext(header.Filename)); orig == ".jpeg" && ext == ".jpg" {
		ext = ".jpeg"
	}

	key := uuid.NewString() + ext

	url, err := h.avatars.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.logger.Error(r.Context(), "avatar upload failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.users.SetAvatar(r.Context(), userID, url); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error(r.Context(), "avatar update failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, "avatar uploaded", map[string]string{"avatarUrl": url})
}

func (h *Handlers) handleAvatarDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.avatarOwner(w, r)
	if !ok {
		return
	}
	if user.AvatarURL == "" {
		writeError(w, http.StatusNotFound, "no avatar set")
		return
	}

	if err := h.avatars.Delete(r.Context(), avatarKey(user.AvatarURL)); err != nil {
		h.logger.Error(r.Context(), "avatar delete failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.Username, ""); err != nil {
		h.logger.Error(r.Context(), "avatar clear failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, "avatar deleted", nil)
}

func (h *Handlers) handleAvatarPresignedURL(w http.ResponseWriter, r *http.Request) {
	user, ok := h.avatarOwner(w, r)
	if !ok {
		return
	}
	if user.AvatarURL == "" {
		writeError(w, http.StatusNotFound, "no avatar set")
		return
	}

	url, err := h.avatars.PresignedGetURL(r.Context(), avatarKey(user.AvatarURL), presignTTL)
	if err != nil {
		h.logger.Error(r.Context(), "avatar presign failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, "presigned url", map[string]string{"url": url})
}

// avatarOwner resolves the caller from the gateway-injected identity
// header and writes the error response itself when that fails.
func (h *Handlers) avatarOwner(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	username := r.Header.Get(common.UserIDHeader)
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing user identity")
		return nil, false
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return nil, false
		}
		h.logger.Error(r.Context(), "get user failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return user, true
}

// avatarKey extracts the object key from the stored gateway-relative URL
// ("/storage/<bucket>/<key>"). Keys are flat uuid-based names.
func avatarKey(avatarURL string) string {
	return path.Base(avatarURL)
}
