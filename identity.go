package tmi

import "sync"

// Identity tracks the client's own login identity as reported by the
// server, populated from GLOBALUSERSTATE at registration and refreshed by
// USERSTATE on every channel join and send. It's safe for concurrent reads
// while the runner updates it from the event loop.
type Identity struct {
	mu sync.RWMutex

	login       string
	userID      string
	displayName string
	color       string
	badges      []Badge
	emoteSets   []string
}

// Login returns the client's registered login name.
func (id *Identity) Login() string {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.login
}

// UserID returns the client's numeric Twitch user ID, or "" before
// GLOBALUSERSTATE has been seen.
func (id *Identity) UserID() string {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.userID
}

// DisplayName returns the client's display name.
func (id *Identity) DisplayName() string {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.displayName
}

// Color returns the client's configured username color.
func (id *Identity) Color() string {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.color
}

// Badges returns the badges from the most recent GLOBALUSERSTATE or
// USERSTATE, whichever was applied last.
func (id *Identity) Badges() []Badge {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return append([]Badge(nil), id.badges...)
}

// EmoteSets returns the IDs of the emote sets available to the client.
func (id *Identity) EmoteSets() []string {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return append([]string(nil), id.emoteSets...)
}

// applyGlobaluserstate updates id from a decoded GLOBALUSERSTATE.
func (id *Identity) applyGlobaluserstate(g *Globaluserstate) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.userID = g.UserID
	id.displayName = g.DisplayName
	id.color = g.Color
	id.badges = g.Badges
	id.emoteSets = g.EmoteSets
}

// applyUserstate refreshes id's color/display-name/badges from a
// per-channel USERSTATE. It does not touch UserID, which USERSTATE doesn't
// carry, or EmoteSets, which keep the GLOBALUSERSTATE value even though
// Userstate has its own EmoteSets field.
func (id *Identity) applyUserstate(u *Userstate) {
	id.mu.Lock()
	defer id.mu.Unlock()
	if u.DisplayName != "" {
		id.displayName = u.DisplayName
	}
	if u.Color != "" {
		id.color = u.Color
	}
	id.badges = u.Badges
}

// setLogin records the login the runner registered with, before any
// server confirmation has arrived.
func (id *Identity) setLogin(login string) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.login = login
}
