package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"namegame/internal/game"
)

// GamePlayer is the game surface the handlers drive
type GamePlayer interface {
	CurrentChallenge(ctx context.Context, playerID string) (*game.Challenge, error)
	Choose(ctx context.Context, playerID string, ev game.ChoiceEvent) (*game.Outcome, error)
	Stats(ctx context.Context, playerID string) (game.Stats, error)
}

// GameHandler serves challenges and grades choices over JSON and WebSocket
type GameHandler struct {
	game         GamePlayer
	middleware   *Middleware
	advanceDelay time.Duration
}

// NewGameHandler creates a new game handler
func NewGameHandler(g GamePlayer, middleware *Middleware) *GameHandler {
	return &GameHandler{game: g, middleware: middleware, advanceDelay: AdvanceDelay}
}

type challengeResponse struct {
	*game.Challenge
	CSRFToken string `json:"csrf_token"`
}

type choiceRequest struct {
	RoundID  string `json:"round_id"`
	OptionID string `json:"option_id"`
}

// GetChallenge returns the round in progress, or a new one
func (h *GameHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	player := GetPlayerFromContext(r.Context())
	if player == nil {
		respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	challenge, err := h.game.CurrentChallenge(r.Context(), player.ID)
	if err != nil {
		h.respondWithGameError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, challengeResponse{
		Challenge: challenge,
		CSRFToken: h.middleware.CSRFToken(GetSessionFromContext(r.Context())),
	})
}

// PostChoice grades {"round_id","option_id"} against the round in progress
func (h *GameHandler) PostChoice(w http.ResponseWriter, r *http.Request) {
	player := GetPlayerFromContext(r.Context())
	if player == nil {
		respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var req choiceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil || req.RoundID == "" || req.OptionID == "" {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	outcome, err := h.game.Choose(r.Context(), player.ID, game.ChoiceEvent{RoundID: req.RoundID, OptionID: req.OptionID})
	if err != nil {
		h.respondWithGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, outcome)
}

// GetStats summarises the player's progress
func (h *GameHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	player := GetPlayerFromContext(r.Context())
	if player == nil {
		respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	stats, err := h.game.Stats(r.Context(), player.ID)
	if err != nil {
		h.respondWithGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (h *GameHandler) respondWithGameError(w http.ResponseWriter, err error) {
	status, msg := gameErrorStatus(err)
	respondWithJSONError(w, status, msg, "Game request failed", err)
}

// gameErrorStatus maps an engine or roster error to a status and user message
func gameErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrRosterTooSmall):
		return http.StatusConflict, "Not enough people with a name and a photo to play"
	case errors.Is(err, game.ErrNoActiveChallenge):
		return http.StatusConflict, "There is no challenge in progress"
	case errors.Is(err, game.ErrStaleChoice):
		return http.StatusConflict, "That choice was for a round that is already over"
	case errors.Is(err, game.ErrOptionEliminated):
		return http.StatusConflict, "That choice was already ruled out"
	case errors.Is(err, game.ErrUnknownOption):
		return http.StatusBadRequest, "That is not one of the choices"
	default:
		return rosterErrorStatus(err)
	}
}
