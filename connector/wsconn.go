package connector

import (
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// TwitchWSAddress and TwitchWSAddressTLS are Twitch's WebSocket IRC
// endpoints.
const (
	TwitchWSAddress    = "ws://irc-ws.chat.twitch.tv:80"
	TwitchWSAddressTLS = "wss://irc-ws.chat.twitch.tv:443"
)

// wsHandshakeTimeout bounds the WebSocket upgrade handshake.
const wsHandshakeTimeout = 10 * time.Second

// wsConn adapts a *websocket.Conn to io.ReadWriteCloser so it can back a
// tmi.AsyncRunner the same way a plain TLS connection does, grounded on
// kappopher's helix IRCClient (helix-irc.go), which reads with
// conn.ReadMessage and writes with conn.WriteMessage(TextMessage, ...)
// against the same Twitch WebSocket gateway.
type wsConn struct {
	conn *websocket.Conn
	buf  []byte // unread remainder of the last inbound text frame
}

// DialWS connects to a Twitch IRC WebSocket endpoint (url is one of
// TwitchWSAddress/TwitchWSAddressTLS, or a custom gateway for testing)
// and returns an io.ReadWriteCloser a runner can be built over.
func DialWS(url string) (io.ReadWriteCloser, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// Read implements io.Reader. Each WebSocket text frame usually carries
// one or more complete IRC lines; bytes left over after a short Read are
// buffered and returned before the next ReadMessage call.
func (c *wsConn) Read(p []byte) (int, error) {
	for len(c.buf) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		c.buf = data
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

// Write implements io.Writer, sending p as a single WebSocket text frame
// (gorilla/websocket.WriteMessage), the same framing kappopher's helix
// IRCClient uses for outbound IRC lines (helix-irc.go: "conn.WriteMessage(
// websocket.TextMessage, ...)").
func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (c *wsConn) Close() error {
	return c.conn.Close()
}
