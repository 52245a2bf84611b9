package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepiq/quiz-backend/internal/quiz"
	"github.com/prepiq/quiz-backend/internal/service"
	ws "github.com/prepiq/quiz-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams timer and submission events to the exam page.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// TimerStream godoc
// WS /ws/v1/sessions/:session_id/timer
// Upgrades to WebSocket and pushes tick/warning/expired/submitted events
// so the page can render the countdown and dialogs without polling.
func (h *WSHandler) TimerStream(c *gin.Context) {
	sessionID := c.Param("session_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID).Logger()

	events, unsubscribe, err := h.sessions.Subscribe(sessionID)
	if err != nil {
		// The handshake already succeeded, so report over the socket.
		_ = ws.WriteError(conn, "no active session for this identifier")
		return
	}
	defer unsubscribe()

	wsLog.Info().Msg("Timer stream connected")

	// Read pump: forwards client actions so every write stays on this
	// goroutine, and notices the peer going away.
	actions := make(chan ws.Action, 4)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case actions <- msg.Action:
			default:
				// Writer is saturated; dropping a keepalive is harmless.
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case action := <-actions:
			switch action {
			case ws.ActionPing:
				_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			default:
				_ = ws.WriteError(conn, "unknown action")
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ev); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping stream")
				return
			}
			if ev.Type == quiz.EventSubmitted {
				// Terminal event; the session has no further ticks.
				return
			}
		}
	}
}
