package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"servctl/pkg/logging"
)

// LogStream is an open websocket carrying a server's console output.
// Each text frame is one log line.
type LogStream struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// OpenLogStream dials ws(s)://host/ws/log/{id}?token=T.
func (c *Client) OpenLogStream(ctx context.Context, serverID string) (*LogStream, error) {
	if c.streamURL == "" {
		return nil, fmt.Errorf("no stream URL configured")
	}
	wsURL := c.streamURL + "/ws/log/" + url.PathEscape(serverID) + "?token=" + url.QueryEscape(c.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			body, _ := readResponseBody(resp)
			return nil, fmt.Errorf("failed to connect to log stream: %w", newAPIError(resp.StatusCode, body))
		}
		return nil, fmt.Errorf("failed to connect to log stream: %w", err)
	}

	logging.Debug("Panel", "connected to log stream of %s", serverID)
	return &LogStream{conn: conn}, nil
}

// ReadLine blocks until the next line arrives. It returns io.EOF when the
// panel closed the stream normally and any other error otherwise.
func (s *LogStream) ReadLine() (string, error) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			return string(data), nil
		}
	}
}

// Close sends a close frame and releases the connection. Safe to call more
// than once and concurrently with ReadLine.
func (s *LogStream) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := s.conn.WriteMessage(websocket.CloseMessage, msg); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			logging.Debug("Panel", "log stream close frame: %v", err)
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
