package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amire/crewboard/internal/domain/entities"
)

// ChangeEvent is a change notification pushed over /ws.
type ChangeEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	At   time.Time       `json:"at"`
}

// Watch subscribes to the server's change feed and calls fn for every
// event until ctx is cancelled (which returns nil) or the connection fails.
func (c *Client) Watch(ctx context.Context, fn func(ChangeEvent)) error {
	const op = "GET /ws"

	token, err := c.tokens.Load()
	if err != nil {
		return &entities.RequestError{Op: op, Err: err}
	}
	if token == "" {
		return &entities.RequestError{Op: op, Status: http.StatusUnauthorized, Err: entities.ErrNotAuthenticated}
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.timeout,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := dialer.DialContext(ctx, c.websocketURL(), header)
	if err != nil {
		re := &entities.RequestError{Op: op, Err: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
		if resp != nil {
			re.Status = resp.StatusCode
			resp.Body.Close()
			if re.Unauthorized() {
				if clearErr := c.tokens.Clear(); clearErr != nil {
					c.logger.Warnw("Failed to clear rejected token", "error", clearErr)
				}
			}
		}
		return re
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	c.logger.Infow("Watching change feed", "url", c.websocketURL())
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &entities.RequestError{Op: op, Err: err}
		}
		var ev ChangeEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			c.logger.Warnw("Ignoring malformed event", "error", err)
			continue
		}
		fn(ev)
	}
}

func (c *Client) websocketURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}
