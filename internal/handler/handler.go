package handler

import (
	"net/http"

	"github.com/stojkeex/testaii/internal/alert"
	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/repository"
	"github.com/stojkeex/testaii/internal/service"
)

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	cfg      *config.Config
	chat     *service.ChatService
	opener   *service.OpenerService
	usage    *service.UsageService
	profiles *repository.ProfileRepo
	messages *repository.MessageRepo
	notifier *alert.Notifier
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg      *config.Config
	Chat     *service.ChatService
	Opener   *service.OpenerService
	Usage    *service.UsageService
	Profiles *repository.ProfileRepo
	Messages *repository.MessageRepo
	Notifier *alert.Notifier
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:      deps.Cfg,
		chat:     deps.Chat,
		opener:   deps.Opener,
		usage:    deps.Usage,
		profiles: deps.Profiles,
		messages: deps.Messages,
		notifier: deps.Notifier,
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.HandleChat)

	mux.HandleFunc("GET /api/profiles", h.HandleListProfiles)
	mux.HandleFunc("POST /api/profiles", h.HandleCreateProfile)
	mux.HandleFunc("GET /api/profiles/{id}", h.HandleGetProfile)
	mux.HandleFunc("PUT /api/profiles/{id}", h.HandleUpdateProfile)
	mux.HandleFunc("DELETE /api/profiles/{id}", h.HandleDeleteProfile)

	mux.HandleFunc("GET /api/profiles/{id}/messages", h.HandleListMessages)
	mux.HandleFunc("POST /api/profiles/{id}/messages", h.HandleAppendMessage)
	mux.HandleFunc("DELETE /api/profiles/{id}/messages", h.HandleClearMessages)

	mux.HandleFunc("POST /api/profiles/{id}/welcome", h.HandleWelcome)
	mux.HandleFunc("POST /api/profiles/{id}/ambient", h.HandleAmbient)

	mux.HandleFunc("GET /api/usage", h.HandleUsage)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}
