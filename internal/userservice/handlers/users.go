package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatapp/internal/common"
)

func (h *Handlers) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error(r.Context(), "get user failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, "user found", toUserPayload(user))
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	users, err := h.users.Search(r.Context(), keyword)
	if err != nil {
		h.logger.Error(r.Context(), "search failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]*userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, toUserPayload(u))
	}

	writeSuccess(w, "search results", payload)
}
