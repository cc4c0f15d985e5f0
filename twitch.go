package tmi

import (
	"strings"
)

// UserConfig holds the identity a runner registers with. It is a plain
// struct with a validating constructor, struct-of-public-fields rather
// than a flag/env-parsing layer; config loading from files or environment
// variables is left to the caller.
type UserConfig struct {
	// Login is the Twitch account's login name (lower-case, no display casing).
	Login string
	// Token is the OAuth token, including the "oauth:" prefix.
	Token string
	// Capabilities lists the IRCv3 capabilities to request; defaults to
	// CapTags, CapCommands, CapMembership when empty.
	Capabilities []string
}

// AnonymousConfig returns a UserConfig for Twitch's documented read-only
// anonymous login (original_source/src/lib.rs ANONYMOUS_LOGIN).
func AnonymousConfig() UserConfig {
	return UserConfig{
		Login: AnonymousLogin,
		Token: AnonymousTokenLiteral,
	}
}

// Validate checks that c's Login and Token are well-formed, per the
// constraints Twitch's IRC server itself enforces: Login must be
// lowercase ASCII, and Token must begin with "oauth:" (the anonymous
// login's literal token is accepted as a special case).
func (c UserConfig) Validate() error {
	if c.Token != AnonymousTokenLiteral {
		if !strings.HasPrefix(c.Token, "oauth:") {
			return ErrInvalidToken
		}
	}
	if !isLowerASCII(c.Login) {
		return ErrInvalidName
	}
	return nil
}

// capabilities returns c.Capabilities, or the default set when unset.
func (c UserConfig) capabilities() []string {
	if len(c.Capabilities) > 0 {
		return c.Capabilities
	}
	return []string{CapTags, CapCommands, CapMembership}
}

func isLowerASCII(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || c >= 0x80 {
			return false
		}
	}
	return true
}
