package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stojkeex/testaii/internal/domain"
)

// chatRequest mirrors the client contract. Profile carries the persona the
// model impersonates for this turn; in group mode that is the responding
// member, not the group itself.
type chatRequest struct {
	Prompt      string             `json:"prompt"`
	Profile     personaPayload     `json:"profile"`
	UserProfile domain.UserProfile `json:"userProfile"`
	History     []domain.Turn      `json:"history"`
	IsGroup     bool               `json:"isGroup"`
	GroupTopic  string             `json:"groupTopic,omitempty"`
}

type personaPayload struct {
	ID string `json:"id,omitempty"`
	domain.Persona
}

// HandleChat runs one generation request end-to-end.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: genericFallback})
		return
	}

	mode := domain.ModeIndividual
	if req.IsGroup {
		mode = domain.ModeGroup
	}

	result, err := h.chat.Generate(r.Context(), &domain.GenerationRequest{
		Prompt:  req.Prompt,
		Persona: req.Profile.Persona,
		User:    req.UserProfile,
		History: req.History,
		Mode:    mode,
		Topic:   req.GroupTopic,
	})
	if err != nil {
		slog.Error("chat generation failed", "error", err, "persona", req.Profile.Name)
		h.notifier.Error(err, "chat generation")
		writeChatError(w, err)
		return
	}

	// Usage bookkeeping is best-effort and keyed to the profile when the
	// client sent a persisted one.
	profileID, _ := uuid.Parse(req.Profile.ID)
	h.usage.Record(r.Context(), profileID, result)

	writeJSON(w, http.StatusOK, chatResponse{Response: result.Text})
}
