package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stojkeex/testaii/internal/domain"
)

type openerRequest struct {
	UserProfile domain.UserProfile `json:"userProfile"`
}

// HandleWelcome makes a freshly created companion greet the user once.
func (h *Handler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	h.handleOpener(w, r, h.openerWelcome)
}

// HandleAmbient makes a random group member start a conversation.
func (h *Handler) HandleAmbient(w http.ResponseWriter, r *http.Request) {
	h.handleOpener(w, r, h.openerAmbient)
}

type openerFunc func(r *http.Request, id uuid.UUID, user domain.UserProfile) (*domain.StoredMessage, error)

func (h *Handler) openerWelcome(r *http.Request, id uuid.UUID, user domain.UserProfile) (*domain.StoredMessage, error) {
	return h.opener.Welcome(r.Context(), id, user)
}

func (h *Handler) openerAmbient(r *http.Request, id uuid.UUID, user domain.UserProfile) (*domain.StoredMessage, error) {
	return h.opener.Ambient(r.Context(), id, user)
}

func (h *Handler) handleOpener(w http.ResponseWriter, r *http.Request, fn openerFunc) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}

	var req openerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	msg, err := fn(r, id, req.UserProfile)
	if err != nil {
		h.openerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageToPayload(msg))
}

func (h *Handler) openerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
	case errors.Is(err, domain.ErrNotGroupProfile),
		errors.Is(err, domain.ErrNotIndividual),
		errors.Is(err, domain.ErrGroupTooSmall),
		errors.Is(err, domain.ErrAlreadyGreeted),
		errors.Is(err, domain.ErrChatFull):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingAPIKey):
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Response: missingKeyMessage,
			Error:    "MISSING_API_KEY",
		})
	default:
		slog.Error("opener generation failed", "error", err)
		h.notifier.Error(err, "opener generation")
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: genericFallback})
	}
}
