// Package connector supplies io.ReadWriteCloser implementations for the
// two transports Twitch IRC is reachable over: plain TLS and WebSocket.
// A runner built with tmi.NewAsyncRunner is transport-agnostic; dialing is
// left to the caller, and this package is the reference implementation of
// that dial step.
package connector

import (
	"crypto/tls"
	"net"
	"time"
)

// DialTimeout is the default deadline for establishing the TCP+TLS
// handshake.
const DialTimeout = 10 * time.Second

// DialTLS dials addr ("host:port") over TLS, the only transport a plain
// net.Conn-backed runner supports; use DialWS for the WebSocket gateway.
func DialTLS(addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: DialTimeout}
	return tls.DialWithDialer(d, "tcp", addr, nil)
}
