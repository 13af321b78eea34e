package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stojkeex/testaii/internal/domain"
)

const (
	missingKeyMessage = "API key not configured. Please add GEMINI_API_KEY to your environment variables."
	genericFallback   = "ups nekaj se je zalomilo..."
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// chatResponse is the boundary contract: the UI always receives a renderable
// message, never a raw error.
type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// writeChatError maps any generation failure onto the chat-bubble contract.
// Only the missing credential case carries a machine-readable code, so the
// client can open its key-setup screen.
func writeChatError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrMissingAPIKey) {
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Response: missingKeyMessage,
			Error:    "MISSING_API_KEY",
		})
		return
	}

	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrMissingPrompt), errors.Is(err, domain.ErrMissingPersona):
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: genericFallback})
	case errors.As(err, &upstream), errors.Is(err, domain.ErrRateLimitExhausted):
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: genericFallback})
	default:
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: genericFallback})
	}
}
