package transport

import (
	"time"

	"github.com/dmitrijs2005/gophterm/internal/logging"
	"github.com/gorilla/websocket"
)

// NewWebSocket returns a Transport sending every chunk as one text message
// on conn. writeTimeout of 0 means no deadline.
func NewWebSocket(conn *websocket.Conn, size int, writeTimeout time.Duration, logger logging.Logger) *Transport {
	return New(func(text string) error {
		if writeTimeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		}
		return conn.WriteMessage(websocket.TextMessage, []byte(text))
	}, size, logger)
}

// CloseWebSocket sends a normal closure frame and closes conn.
func CloseWebSocket(conn *websocket.Conn) error {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return conn.Close()
}
