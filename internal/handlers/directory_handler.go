package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"namegame/internal/directory"
	"namegame/internal/models"
)

// RosterCache serves the roster and says how long it may be cached
type RosterCache interface {
	Get(ctx context.Context) ([]models.Person, error)
	TTL() time.Duration
}

// DirectoryHandler proxies the people directory to logged-in players
type DirectoryHandler struct {
	roster RosterCache
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(roster RosterCache) *DirectoryHandler {
	return &DirectoryHandler{roster: roster}
}

// GetDirectory returns the roster as [{id, name, image_path, pronouns}]
func (h *DirectoryHandler) GetDirectory(w http.ResponseWriter, r *http.Request) {
	people, err := h.roster.Get(r.Context())
	if err != nil {
		status, msg := rosterErrorStatus(err)
		respondWithJSONError(w, status, msg, "Error fetching directory", err)
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.roster.TTL().Seconds())))
	respondWithJSON(w, http.StatusOK, people)
}

// rosterErrorStatus maps a roster fetch failure to a status and user message
func rosterErrorStatus(err error) (int, string) {
	var upstream *directory.UpstreamError
	switch {
	case errors.Is(err, directory.ErrNoToken):
		return http.StatusInternalServerError, "The directory is not configured on this server"
	case errors.Is(err, directory.ErrUnauthorized):
		return http.StatusUnauthorized, "The directory rejected this server's credentials"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "The directory is unavailable, try again shortly"
	default:
		return http.StatusBadGateway, "Failed to load the directory"
	}
}
