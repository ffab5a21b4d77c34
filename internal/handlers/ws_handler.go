package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"namegame/internal/game"
)

const (
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
	wsMaxMessage   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and those whose
// Origin host matches the request host
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// wsClientMessage is sent by the browser: {"type":"next"} or
// {"type":"choice","round_id":...,"option_id":...}
type wsClientMessage struct {
	Type     string `json:"type"`
	RoundID  string `json:"round_id,omitempty"`
	OptionID string `json:"option_id,omitempty"`
}

// wsServerMessage is one of challenge, outcome or error
type wsServerMessage struct {
	Type      string          `json:"type"`
	Challenge *game.Challenge `json:"challenge,omitempty"`
	Outcome   *game.Outcome   `json:"outcome,omitempty"`
	Error     string          `json:"error,omitempty"`
	Status    int             `json:"status,omitempty"`
	// Code is "stale_choice" for a choice made for a finished round
	Code string `json:"code,omitempty"`
}

// ServeWS runs the game over a WebSocket. Events are read and answered one
// at a time on this goroutine; only pings are written from elsewhere.
func (h *GameHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	player := GetPlayerFromContext(r.Context())
	if player == nil {
		respondWithJSONError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go h.pingLoop(ctx, conn)

	if !h.sendChallenge(ctx, conn, player.ID) {
		return
	}

	for {
		var msg wsClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for player %s: %v", player.ID, err)
			}
			return
		}

		switch msg.Type {
		case "next":
			if !h.sendChallenge(ctx, conn, player.ID) {
				return
			}
		case "choice":
			outcome, err := h.game.Choose(ctx, player.ID, game.ChoiceEvent{RoundID: msg.RoundID, OptionID: msg.OptionID})
			if err != nil {
				if !h.sendError(conn, err) {
					return
				}
				continue
			}
			if !h.write(conn, wsServerMessage{Type: "outcome", Outcome: outcome}) {
				return
			}
			if outcome.RoundOver {
				if !h.pause(ctx) || !h.sendChallenge(ctx, conn, player.ID) {
					return
				}
			}
		default:
			// ignore unknown types
		}
	}
}

func (h *GameHandler) sendChallenge(ctx context.Context, conn *websocket.Conn, playerID string) bool {
	challenge, err := h.game.CurrentChallenge(ctx, playerID)
	if err != nil {
		return h.sendError(conn, err)
	}
	return h.write(conn, wsServerMessage{Type: "challenge", Challenge: challenge})
}

func (h *GameHandler) sendError(conn *websocket.Conn, err error) bool {
	status, msg := gameErrorStatus(err)
	reply := wsServerMessage{Type: "error", Error: msg, Status: status}
	if errors.Is(err, game.ErrStaleChoice) {
		reply.Code = "stale_choice"
	} else {
		log.Printf("Game event failed: %v", err)
	}
	return h.write(conn, reply)
}

func (h *GameHandler) write(conn *websocket.Conn, msg wsServerMessage) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		return false
	}
	return true
}

// pause waits the advance delay, returning false if the connection went away first
func (h *GameHandler) pause(ctx context.Context) bool {
	if h.advanceDelay <= 0 {
		return true
	}
	timer := time.NewTimer(h.advanceDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (h *GameHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
