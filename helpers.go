package tmi

import "strings"

// normalizeChannel lower-cases channel and ensures a leading '#', the form
// Twitch channels are joined and addressed by on the wire.
func normalizeChannel(channel string) string {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		return channel
	}
	if channel[0] != '#' {
		channel = "#" + channel
	}
	return channel
}

// normalizeLogin lower-cases a login name; Twitch logins are case-insensitive
// and conventionally compared and stored lower-case.
func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
