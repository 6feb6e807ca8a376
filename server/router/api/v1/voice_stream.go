package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/buddylabs/buddy/internal/ambient"
	apierr "github.com/buddylabs/buddy/server/internal/errors"
	"github.com/buddylabs/buddy/internal/observability"
)

const (
	// streamWriteWait bounds how long one outbound frame may take.
	streamWriteWait = 10 * time.Second
	// streamPongWait is how long we tolerate a silent device.
	streamPongWait = 60 * time.Second
	// streamPingPeriod must be shorter than streamPongWait.
	streamPingPeriod = 50 * time.Second
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Devices connect from their own firmware, not a browser.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamInbound is one frame from the device.
type streamInbound struct {
	Transcript string `json:"transcript"`
}

// StreamVoiceSession upgrades to a websocket and runs the same turn pipeline
// as the REST utterance endpoint, one frame per utterance. The device gets
// outcomes pushed back on the same connection.
func (s *APIV1Service) StreamVoiceSession(c echo.Context) error {
	sessionID := c.Param("sessionId")

	if _, err := s.Tracker.Status(sessionID); err != nil {
		return writeError(c, apierr.NotFound("session not found"))
	}

	conn, err := streamUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return writeError(c, apierr.Internal("websocket upgrade failed", err))
	}
	defer conn.Close()

	rc := observability.NewRequestContext(slog.Default(), sessionID, "")
	rc.Info("voice stream opened")

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})

	done := make(chan struct{})
	go s.streamPinger(conn, done)
	defer close(done)

	ctx := c.Request().Context()
	for {
		inbound := &streamInbound{}
		if err := conn.ReadJSON(inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				rc.Warn("voice stream read failed", slog.String("error", err.Error()))
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(streamPongWait))

		if !s.deviceLimiter.Allow(sessionID) {
			s.writeStreamError(conn, apierr.RateLimitExceeded("too many requests"))
			continue
		}

		response, err := s.handleUtterance(ctx, rc, sessionID, inbound.Transcript, time.Now())
		if err != nil {
			s.writeStreamError(conn, err)
			if apiErr, ok := err.(*apierr.APIError); ok && apiErr.Code == apierr.ErrCodeNotFound {
				break
			}
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(response); err != nil {
			rc.Warn("voice stream write failed", slog.String("error", err.Error()))
			break
		}

		// A closed conversation keeps the stream open: the session is back
		// to ambient listening, not gone.
		if response.Outcome == string(ambient.OutcomeConversationEnded) {
			rc.Info("conversation ended on stream")
		}
	}

	rc.Info("voice stream closed", slog.Int64(observability.LogFieldDuration, rc.DurationMs()))
	return nil
}

func (s *APIV1Service) streamPinger(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *APIV1Service) writeStreamError(conn *websocket.Conn, err error) {
	code := string(apierr.ErrCodeInternal)
	message := "internal error"
	if apiErr, ok := err.(*apierr.APIError); ok {
		code = string(apiErr.Code)
		message = apiErr.Message
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	_ = conn.WriteJSON(errorResponse{Code: code, Message: message})
}
