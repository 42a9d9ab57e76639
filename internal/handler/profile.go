package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/conduit/internal/auth"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/service"
)

// ProfileHandler exposes public profiles and the follow/unfollow toggle.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

type profileEnvelope struct {
	Profile *model.Profile `json:"profile"`
}

// HandleGet serves GET /api/profiles/{username}. Anonymous viewers see
// following=false.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	username := r.PathValue("username")

	profile, err := h.profiles.Get(r.Context(), username, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileEnvelope{Profile: profile})
}

// HandleFollow serves POST /api/profiles/{username}/follow.
func (h *ProfileHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	username := r.PathValue("username")

	profile, err := h.profiles.Follow(r.Context(), userID, username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileEnvelope{Profile: profile})
}

// HandleUnfollow serves DELETE /api/profiles/{username}/follow.
func (h *ProfileHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	username := r.PathValue("username")

	profile, err := h.profiles.Unfollow(r.Context(), userID, username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileEnvelope{Profile: profile})
}
