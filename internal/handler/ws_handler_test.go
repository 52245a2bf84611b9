package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepiq/quiz-backend/internal/config"
	"github.com/prepiq/quiz-backend/internal/model"
	"github.com/prepiq/quiz-backend/internal/repository"
	"github.com/prepiq/quiz-backend/internal/service"
	ws "github.com/prepiq/quiz-backend/internal/websocket"
)

type nopSink struct{}

func (nopSink) Deliver(_ context.Context, _ model.ResultRecord) error { return nil }

func newTimerStreamServer(t *testing.T) (*httptest.Server, *service.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{WarningThresholdSeconds: 300}
	svc := service.NewSessionService(cfg, repository.NewMemorySnapshotRepository(), nopSink{}, zerolog.Nop())
	h := NewWSHandler(svc, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/sessions/:session_id/timer", h.TimerStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(svc.Shutdown)
	return srv, svc
}

func dialTimerStream(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/sessions/" + sessionID + "/timer"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestTimerStreamUnknownSession(t *testing.T) {
	srv, _ := newTimerStreamServer(t)

	conn := dialTimerStream(t, srv, "nope")

	var resp ws.ErrorResponse
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if resp.Event != ws.EventError {
		t.Errorf("event = %q, want %q", resp.Event, ws.EventError)
	}
	if resp.Error == "" {
		t.Error("error event carried no message")
	}
}

func TestTimerStreamPingPong(t *testing.T) {
	srv, svc := newTimerStreamServer(t)

	req := &model.StartSessionRequest{
		SessionID:        "ws-session",
		TimeLimitMinutes: 10,
		Questions: []model.QuestionPayload{
			{Prompt: "q", Options: []string{"A", "B"}, CorrectOption: "A"},
		},
	}
	if _, err := svc.Start(context.Background(), req); err != nil {
		t.Fatalf("Start: %v", err)
	}

	conn := dialTimerStream(t, srv, "ws-session")

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	// Ticks may interleave with the pong; scan until it arrives.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var msg map[string]interface{}
		conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if msg["event"] == string(ws.EventPong) {
			return
		}
	}
	t.Fatal("no pong received")
}

func TestTimerStreamUnknownAction(t *testing.T) {
	srv, svc := newTimerStreamServer(t)

	req := &model.StartSessionRequest{
		SessionID:        "ws-session",
		TimeLimitMinutes: 10,
		Questions: []model.QuestionPayload{
			{Prompt: "q", Options: []string{"A", "B"}, CorrectOption: "A"},
		},
	}
	if _, err := svc.Start(context.Background(), req); err != nil {
		t.Fatalf("Start: %v", err)
	}

	conn := dialTimerStream(t, srv, "ws-session")

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: "bogus"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var msg map[string]interface{}
		conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if msg["event"] == string(ws.EventError) {
			return
		}
	}
	t.Fatal("no error event received")
}
