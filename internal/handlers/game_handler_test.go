package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"namegame/internal/directory"
	"namegame/internal/game"
	"namegame/internal/security"
)

func newTestGameHandler(t *testing.T, g *fakeGame) (*GameHandler, *Middleware) {
	t.Helper()
	m := newTestMiddleware(t)
	h := NewGameHandler(g, m)
	h.advanceDelay = 0
	return h, m
}

func TestGetChallenge(t *testing.T) {
	h, m := newTestGameHandler(t, &fakeGame{})
	rec := httptest.NewRecorder()

	m.RequireSession(h.GetChallenge)(rec, withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/challenge", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		RoundID   string        `json:"round_id"`
		Mode      string        `json:"mode"`
		Choices   []game.Choice `json:"choices"`
		CSRFToken string        `json:"csrf_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RoundID != "round-1" || body.Mode != "face-to-name" || len(body.Choices) != 2 {
		t.Errorf("challenge = %+v", body)
	}
	if body.CSRFToken == "" {
		t.Error("expected a csrf_token")
	}
}

func TestPostChoice(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantChosen string
	}{
		{name: "correct", body: `{"round_id":"round-1","option_id":"1"}`, wantStatus: http.StatusOK, wantChosen: "1"},
		{name: "wrong", body: `{"round_id":"round-1","option_id":"2"}`, wantStatus: http.StatusOK, wantChosen: "2"},
		{name: "unknown option", body: `{"round_id":"round-1","option_id":"9"}`, wantStatus: http.StatusBadRequest},
		{name: "finished round", body: `{"round_id":"round-0","option_id":"1"}`, wantStatus: http.StatusConflict},
		{name: "missing round", body: `{"option_id":"1"}`, wantStatus: http.StatusBadRequest},
		{name: "missing option", body: `{"round_id":"round-1"}`, wantStatus: http.StatusBadRequest},
		{name: "not json", body: `option=1`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestGameHandler(t, &fakeGame{rounds: 1, open: true})
			req := withSessionCookie(httptest.NewRequest(http.MethodPost, "/api/choice", strings.NewReader(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			m.RequireSession(h.PostChoice)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantChosen == "" {
				return
			}
			var outcome game.Outcome
			if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if outcome.ChosenID != tt.wantChosen || outcome.Correct != (tt.wantChosen == "1") {
				t.Errorf("outcome = %+v", outcome)
			}
		})
	}
}

func TestGameErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrRosterTooSmall, http.StatusConflict},
		{game.ErrNoActiveChallenge, http.StatusConflict},
		{game.ErrOptionEliminated, http.StatusConflict},
		{game.ErrStaleChoice, http.StatusConflict},
		{game.ErrUnknownOption, http.StatusBadRequest},
		{fmt.Errorf("load roster: %w", directory.ErrUnauthorized), http.StatusUnauthorized},
		{&directory.UpstreamError{Status: 500}, http.StatusBadGateway},
		{directory.ErrNoToken, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, msg := gameErrorStatus(tt.err)
			if got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
			if msg == "" {
				t.Error("expected a user message")
			}
		})
	}
}

func TestGetChallengeRosterTooSmall(t *testing.T) {
	h, m := newTestGameHandler(t, &fakeGame{err: game.ErrRosterTooSmall})
	rec := httptest.NewRecorder()

	m.RequireSession(h.GetChallenge)(rec, withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/challenge", nil)))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not enough people") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	h, m := newTestGameHandler(t, &fakeGame{})
	rec := httptest.NewRecorder()

	m.RequireSession(h.GetStats)(rec, withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/stats", nil)))

	var stats game.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || stats.Cards != 4 {
		t.Errorf("status = %d, stats = %+v", rec.Code, stats)
	}
}

func dialGame(t *testing.T, h *GameHandler, m *Middleware) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(m.RequireSession(h.ServeWS))
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Cookie", security.SessionCookieName+"="+testToken)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestServeWSPlaysRounds(t *testing.T) {
	g := &fakeGame{}
	h, m := newTestGameHandler(t, g)
	conn := dialGame(t, h, m)

	first := readMessage(t, conn)
	if first.Type != "challenge" || first.Challenge == nil {
		t.Fatalf("first message = %+v, want a challenge", first)
	}
	round := first.Challenge.RoundID

	// wrong pick: outcome only, the round continues
	if err := conn.WriteJSON(wsClientMessage{Type: "choice", RoundID: round, OptionID: "2"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "outcome" || msg.Outcome.Correct {
		t.Fatalf("got %+v, want a wrong outcome", msg)
	}

	// right pick: outcome then the next challenge
	if err := conn.WriteJSON(wsClientMessage{Type: "choice", RoundID: round, OptionID: "1"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "outcome" || !msg.Outcome.RoundOver {
		t.Fatalf("got %+v, want a winning outcome", msg)
	}
	if msg := readMessage(t, conn); msg.Type != "challenge" {
		t.Fatalf("got %+v, want the next challenge", msg)
	}

	if g.roundCount() != 2 {
		t.Errorf("rounds = %d, want 2", g.roundCount())
	}
}

func TestServeWSReportsErrors(t *testing.T) {
	h, m := newTestGameHandler(t, &fakeGame{})
	conn := dialGame(t, h, m)
	readMessage(t, conn)

	if err := conn.WriteJSON(wsClientMessage{Type: "choice", RoundID: "round-1", OptionID: "nobody"}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "error" || msg.Status != http.StatusBadRequest {
		t.Errorf("got %+v, want a 400 error message", msg)
	}

	// the connection stays usable
	if err := conn.WriteJSON(wsClientMessage{Type: "next"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "challenge" {
		t.Errorf("got %+v, want a challenge", msg)
	}
}

func TestServeWSRepeatedPressDoesNotAnswerNextRound(t *testing.T) {
	g := &fakeGame{}
	h, m := newTestGameHandler(t, g)
	h.advanceDelay = 20 * time.Millisecond
	conn := dialGame(t, h, m)

	first := readMessage(t, conn)
	if first.Type != "challenge" {
		t.Fatalf("first message = %+v, want a challenge", first)
	}

	// the same key twice, the second arriving while the next round is pending
	press := wsClientMessage{Type: "choice", RoundID: first.Challenge.RoundID, OptionID: "1"}
	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(press); err != nil {
			t.Fatal(err)
		}
	}

	if msg := readMessage(t, conn); msg.Type != "outcome" || !msg.Outcome.RoundOver {
		t.Fatalf("got %+v, want the winning outcome", msg)
	}
	next := readMessage(t, conn)
	if next.Type != "challenge" || next.Challenge.RoundID == first.Challenge.RoundID {
		t.Fatalf("got %+v, want a new round", next)
	}
	msg := readMessage(t, conn)
	if msg.Type != "error" || msg.Status != http.StatusConflict || msg.Code != "stale_choice" {
		t.Fatalf("got %+v, want a stale_choice error", msg)
	}

	graded := g.gradedChoices()
	if len(graded) != 1 || graded[0] != "round-1:1" {
		t.Errorf("graded = %v, want only the first press", graded)
	}
}

func TestServeWSRequiresSession(t *testing.T) {
	h, m := newTestGameHandler(t, &fakeGame{})
	srv := httptest.NewServer(m.RequireSession(h.ServeWS))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v, want 401", resp)
	}
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://names.example.com", true},
		{"https://evil.example.com", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://names.example.com/api/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := sameOrigin(req); got != tt.want {
			t.Errorf("sameOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
