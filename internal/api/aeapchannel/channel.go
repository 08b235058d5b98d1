// Package aeapchannel implements the WebSocket side channel the telephony
// relay dials for its external application protocol. Transcription itself
// flows over the HTTP endpoints; this channel only carries protocol chatter
// so a relay pointed at us does not error out.
package aeapchannel

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	maxFrameSize = 1 << 20
)

// message is the generic protocol frame. Every frame carries a type; the
// rest of the payload is type specific and passed through untouched.
type message struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Channel upgrades HTTP requests into protocol sessions.
type Channel struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewChannel creates the side channel handler.
func NewChannel(logger *zap.Logger) *Channel {
	return &Channel{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The relay is a trusted peer on the same network segment.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle upgrades the connection and runs the session read loop until the
// peer disconnects.
func (ch *Channel) Handle(c *gin.Context) {
	conn, err := ch.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		ch.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	remote := conn.RemoteAddr().String()
	ch.logger.Info("relay channel connected", zap.String("remote", remote))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ch.logger.Warn("relay channel closed unexpectedly",
					zap.String("remote", remote), zap.Error(err))
			} else {
				ch.logger.Info("relay channel disconnected", zap.String("remote", remote))
			}
			return
		}

		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed frames are logged and skipped, never fatal.
			ch.logger.Warn("discarding malformed frame",
				zap.String("remote", remote), zap.Error(err))
			continue
		}

		ch.handleFrame(conn, remote, &msg)
	}
}

func (ch *Channel) handleFrame(conn *websocket.Conn, remote string, msg *message) {
	switch msg.Type {
	case "setup":
		ch.logger.Info("relay setup frame", zap.String("remote", remote))
		ch.reply(conn, remote, gin.H{"type": "setup", "id": msg.ID})
	case "speech_to_text":
		// Streaming recognition over this channel is not implemented;
		// the relay falls back to the HTTP transcription endpoint.
		ch.logger.Info("relay speech_to_text frame",
			zap.String("remote", remote), zap.String("id", msg.ID))
		ch.reply(conn, remote, gin.H{
			"type":  "speech_to_text",
			"id":    msg.ID,
			"error": "streaming recognition not supported, use the HTTP endpoint",
		})
	default:
		ch.logger.Debug("ignoring unknown frame type",
			zap.String("remote", remote), zap.String("frame_type", msg.Type))
	}
}

func (ch *Channel) reply(conn *websocket.Conn, remote string, payload interface{}) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		ch.logger.Warn("relay channel write failed",
			zap.String("remote", remote), zap.Error(err))
	}
}
