package handler

import (
	"net/http"
	"strconv"

	"github.com/hamstergame/platform/internal/domain"
	"github.com/hamstergame/platform/internal/service"
	"github.com/google/uuid"
)

// PlayerHandler handles player profile endpoints.
type PlayerHandler struct {
	profiles *service.ProfileService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(profiles *service.ProfileService) *PlayerHandler {
	return &PlayerHandler{profiles: profiles}
}

// GetMe handles GET /me.
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r, "")
	if err != nil {
		RespondError(w, err)
		return
	}

	profile, err := h.profiles.Me(r.Context(), identity)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// GetTransactions handles GET /me/transactions?limit=N&cursor=ID.
func (h *PlayerHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r, "")
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			RespondError(w, domain.ErrValidation("limit must be a positive integer"))
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	var cursor *uuid.UUID
	if c := r.URL.Query().Get("cursor"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid cursor"))
			return
		}
		cursor = &id
	}

	page, err := h.profiles.Transactions(r.Context(), identity, cursor, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, page)
}
