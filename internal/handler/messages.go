package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/stojkeex/testaii/internal/domain"
)

// messagePayload is one stored transcript entry in the client's shape.
type messagePayload struct {
	ID        int64              `json:"id,omitempty"`
	Role      domain.Role        `json:"role"`
	Content   domain.TurnContent `json:"content"`
	CreatedAt string             `json:"createdAt,omitempty"`
}

func messageToPayload(m *domain.StoredMessage) messagePayload {
	return messagePayload{
		ID:   m.ID,
		Role: m.Role,
		Content: domain.TurnContent{
			Type:       "text",
			Text:       m.Text,
			SenderName: m.SenderName,
		},
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.GetByID(r.Context(), id); err != nil {
		h.profileError(w, err, "get profile")
		return
	}

	messages, err := h.messages.List(r.Context(), id)
	if err != nil {
		slog.Error("list messages", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
		return
	}

	out := make([]messagePayload, 0, len(messages))
	for i := range messages {
		out = append(out, messageToPayload(&messages[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleAppendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.GetByID(r.Context(), id); err != nil {
		h.profileError(w, err, "get profile")
		return
	}

	var in messagePayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.Role != domain.RoleUser && in.Role != domain.RoleModel {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be user or model"})
		return
	}
	if in.Content.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	msg := &domain.StoredMessage{
		ProfileID:  id,
		Role:       in.Role,
		Text:       in.Content.Text,
		SenderName: in.Content.SenderName,
	}
	if err := h.messages.Append(r.Context(), msg); err != nil {
		slog.Error("append message", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "append failed"})
		return
	}
	writeJSON(w, http.StatusCreated, messageToPayload(msg))
}

func (h *Handler) HandleClearMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.GetByID(r.Context(), id); err != nil {
		h.profileError(w, err, "get profile")
		return
	}

	if err := h.messages.Clear(r.Context(), id); err != nil {
		slog.Error("clear messages", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "clear failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
