package tmi

// pongFor builds the Pong reply for an incoming Ping: intercepts the
// server's keepalive probe and replies with the matching PONG.
func pongFor(p *Ping) Encodable {
	return PongReply(p.Token)
}

// capHandshake tracks outstanding CAP REQ negotiations during the
// handshake: one CAP REQ per capability, three for Twitch's tags,
// commands, and membership capabilities. This is a simpler
// REQ-then-ACK/NAK-only flow than IRCv3's general CAP LS/LIST negotiation.
type capHandshake struct {
	pending map[string]bool
}

// newCapHandshake returns a capHandshake waiting on an ACK/NAK for each of requested.
func newCapHandshake(requested []string) *capHandshake {
	pending := make(map[string]bool, len(requested))
	for _, c := range requested {
		pending[c] = true
	}
	return &capHandshake{pending: pending}
}

// resolve marks c's capability as answered (ACK or NAK both count: a NAK
// is still a resolution, just not a successful one) and reports whether
// every requested capability has now been resolved.
func (h *capHandshake) resolve(c *Cap) (done bool) {
	delete(h.pending, c.Capability)
	return len(h.pending) == 0
}

// done reports whether every requested capability has already been resolved.
func (h *capHandshake) done() bool {
	return len(h.pending) == 0
}
