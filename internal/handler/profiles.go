package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stojkeex/testaii/internal/domain"
)

// profilePayload mirrors the client's stored profile document.
type profilePayload struct {
	ID          string           `json:"id,omitempty"`
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Age         int              `json:"age,omitempty"`
	Gender      string           `json:"gender,omitempty"`
	Nationality string           `json:"nationality,omitempty"`
	Traits      []string         `json:"traits,omitempty"`
	Theme       string           `json:"theme,omitempty"`
	IsNew       bool             `json:"isNew,omitempty"`
	Members     []domain.Persona `json:"members,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

func profileToPayload(p *domain.Profile) profilePayload {
	return profilePayload{
		ID:          p.ID.String(),
		Type:        string(p.Kind),
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Nationality: p.Nationality,
		Traits:      p.Traits,
		Theme:       p.Theme,
		IsNew:       p.IsNew,
		Members:     p.Members,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func payloadToProfile(in *profilePayload) (*domain.Profile, error) {
	kind := domain.ProfileKind(in.Type)
	if kind != domain.ProfileIndividual && kind != domain.ProfileGroup {
		return nil, errors.New("type must be individual or group")
	}
	if in.Name == "" {
		return nil, errors.New("name is required")
	}
	return &domain.Profile{
		Kind:        kind,
		Name:        in.Name,
		Age:         in.Age,
		Gender:      in.Gender,
		Nationality: in.Nationality,
		Traits:      in.Traits,
		Theme:       in.Theme,
		IsNew:       in.IsNew,
		Members:     in.Members,
	}, nil
}

func (h *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in profilePayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	profile, err := payloadToProfile(&in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// New individual companions greet the user on first open.
	if profile.Kind == domain.ProfileIndividual {
		profile.IsNew = true
	}

	if err := h.profiles.Create(r.Context(), profile); err != nil {
		slog.Error("create profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		return
	}
	writeJSON(w, http.StatusCreated, profileToPayload(profile))
}

func (h *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		slog.Error("list profiles", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
		return
	}

	out := make([]profilePayload, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileToPayload(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		h.profileError(w, err, "get profile")
		return
	}
	writeJSON(w, http.StatusOK, profileToPayload(profile))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}

	var in profilePayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	profile, err := payloadToProfile(&in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	profile.ID = id

	if err := h.profiles.Update(r.Context(), profile); err != nil {
		h.profileError(w, err, "update profile")
		return
	}

	updated, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		h.profileError(w, err, "reload profile")
		return
	}
	writeJSON(w, http.StatusOK, profileToPayload(updated))
}

func (h *Handler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.profileID(w, r)
	if !ok {
		return
	}

	if err := h.profiles.Delete(r.Context(), id); err != nil {
		h.profileError(w, err, "delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// profileID parses the {id} path segment, answering 400 itself on garbage.
func (h *Handler) profileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid profile id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) profileError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, domain.ErrProfileNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	slog.Error(op, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
}
