package handler

import (
	"log/slog"
	"net/http"
)

type usagePayload struct {
	Requests         int64  `json:"requests"`
	PromptTokens     int64  `json:"promptTokens"`
	CompletionTokens int64  `json:"completionTokens"`
	EstimatedCost    string `json:"estimatedCost"`
}

// HandleUsage reports cumulative token usage and the estimated spend.
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	totals, err := h.usage.Totals(r.Context())
	if err != nil {
		slog.Error("usage totals", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "usage lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, usagePayload{
		Requests:         totals.Requests,
		PromptTokens:     totals.PromptTokens,
		CompletionTokens: totals.CompletionTokens,
		EstimatedCost:    totals.Cost.StringFixed(6),
	})
}
