package tmi

import (
	"fmt"
	"io"
	"strings"
)

// rateLimited is implemented by the two Encodable kinds the rate limiter
// governs: outbound JOIN and PRIVMSG. Everything else (handshake commands,
// PING/PONG, PART) bypasses it.
type rateLimited interface {
	rateKind() (kind, channel string)
}

// Pass builds the PASS command sent at the start of the handshake with the
// OAuth token.
func Pass(token string) Encodable { return rawLine("PASS " + token) }

// Nick builds the NICK command naming the login the client registers as.
func Nick(login string) Encodable { return rawLine("NICK " + normalizeLogin(login)) }

// CapReq requests a single capability be enabled, e.g. "twitch.tv/tags".
// The handshake sends one CAP REQ per capability.
func CapReq(capability string) Encodable { return rawLine("CAP REQ :" + capability) }

// PingServer builds a PING with an arbitrary token the server is expected
// to echo back in a PONG.
func PingServer(token string) Encodable { return rawLine("PING :" + token) }

// PongReply replies to a server PING with the same token.
func PongReply(token string) Encodable { return rawLine("PONG :" + token) }

// PartChannel builds a PART for channel. PART is not rate-limited: only
// JOIN and PRIVMSG are.
func PartChannel(channel string) Encodable { return rawLine("PART " + normalizeChannel(channel)) }

// joinCommand is JOIN's Encodable, split out from the generic rawLine so
// the runner can recognize and rate-limit it.
type joinCommand struct{ channel string }

func (c joinCommand) Encode(w io.Writer) error {
	return writeLine(w, "JOIN "+normalizeChannel(c.channel))
}

func (c joinCommand) rateKind() (string, string) { return "join", normalizeChannel(c.channel) }

// JoinChannel builds a JOIN for channel, normalizing it to a leading '#'.
// JOINs are rate-limited connection-wide.
func JoinChannel(channel string) Encodable { return joinCommand{channel: channel} }

// privmsgCommand is PRIVMSG's Encodable, with an optional leading
// client-only tags section (used by ReplyTo). Split out from rawLine so
// the runner can recognize and rate-limit it.
type privmsgCommand struct {
	channel string
	body    string
	tag     string // optional "key=value", written as a leading "@key=value " section
}

func (c privmsgCommand) Encode(w io.Writer) error {
	line := "PRIVMSG " + normalizeChannel(c.channel) + " :" + c.body
	if c.tag != "" {
		line = "@" + c.tag + " " + line
	}
	return writeLine(w, line)
}

func (c privmsgCommand) rateKind() (string, string) { return "privmsg", normalizeChannel(c.channel) }

// Say builds a plain chat PRIVMSG to channel. PRIVMSGs are rate-limited
// per-channel, by the channel's current RateClass.
func Say(channel, message string) Encodable {
	return privmsgCommand{channel: channel, body: message}
}

// Me builds a CTCP ACTION PRIVMSG ("/me"), displayed by Twitch clients in
// the sender's color.
func Me(channel, message string) Encodable {
	return privmsgCommand{channel: channel, body: "\x01ACTION " + message + "\x01"}
}

// ReplyTo builds a PRIVMSG threaded as a reply to parentMsgID, using the
// client-tag form Twitch's reply feature expects.
func ReplyTo(channel, parentMsgID, message string) Encodable {
	return privmsgCommand{
		channel: channel,
		body:    message,
		tag:     "reply-parent-msg-id=" + escapeTagValue(parentMsgID),
	}
}

// WhisperTo sends a whisper via the legacy "/w" PRIVMSG convention
// (Twitch historically required these to be sent to the "#jtv" channel;
// kept for parity with the typed Whisper projection in typed.go).
func WhisperTo(login, message string) Encodable {
	return newCommand("jtv", "w", login, message)
}

// twitchCommand is the generalized shape of every Twitch chat command
// ("/mod", "/timeout", "/raid", ...): each is a PRIVMSG to a channel whose
// body is a slash-command and arguments, per original_source/commands/*.rs
// (give_mod.rs, raid.rs, unmod.rs, unvip.rs), which this module collapses
// into one wire type instead of one Rust struct per command.
type twitchCommand struct {
	channel    string
	subcommand string
	args       []string
}

// Encode implements Encodable.
func (c twitchCommand) Encode(w io.Writer) error {
	body := "/" + c.subcommand
	if len(c.args) > 0 {
		body += " " + strings.Join(c.args, " ")
	}
	return writeLine(w, "PRIVMSG "+normalizeChannel(c.channel)+" :"+body)
}

// rateKind implements rateLimited: a slash command is a PRIVMSG on the wire.
func (c twitchCommand) rateKind() (string, string) { return "privmsg", normalizeChannel(c.channel) }

func newCommand(channel, subcommand string, args ...string) Encodable {
	return twitchCommand{channel: channel, subcommand: subcommand, args: args}
}

// Chat moderation and channel-configuration commands, each a
// thin builder over newCommand/twitchCommand above.
func Mod(channel, login string) Encodable   { return newCommand(channel, "mod", login) }
func Unmod(channel, login string) Encodable { return newCommand(channel, "unmod", login) }
func VIP(channel, login string) Encodable   { return newCommand(channel, "vip", login) }
func Unvip(channel, login string) Encodable { return newCommand(channel, "unvip", login) }

func Ban(channel, login, reason string) Encodable {
	if reason == "" {
		return newCommand(channel, "ban", login)
	}
	return newCommand(channel, "ban", login, reason)
}

func Unban(channel, login string) Encodable { return newCommand(channel, "unban", login) }

func Timeout(channel, login, duration, reason string) Encodable {
	args := []string{login}
	if duration != "" {
		args = append(args, duration)
	}
	if reason != "" {
		args = append(args, reason)
	}
	return newCommand(channel, "timeout", args...)
}

func Untimeout(channel, login string) Encodable { return newCommand(channel, "untimeout", login) }
func Raid(channel, target string) Encodable     { return newCommand(channel, "raid", target) }
func Unraid(channel string) Encodable           { return newCommand(channel, "unraid") }
func Clear(channel string) Encodable            { return newCommand(channel, "clear") }
func Color(channel, color string) Encodable     { return newCommand(channel, "color", color) }

func Commercial(channel string, seconds int) Encodable {
	return newCommand(channel, "commercial", fmt.Sprintf("%d", seconds))
}

func EmoteOnly(channel string) Encodable    { return newCommand(channel, "emoteonly") }
func EmoteOnlyOff(channel string) Encodable { return newCommand(channel, "emoteonlyoff") }

func Followers(channel, duration string) Encodable {
	if duration == "" {
		return newCommand(channel, "followers")
	}
	return newCommand(channel, "followers", duration)
}

func FollowersOff(channel string) Encodable { return newCommand(channel, "followersoff") }

func Slow(channel string, seconds int) Encodable {
	return newCommand(channel, "slow", fmt.Sprintf("%d", seconds))
}

func SlowOff(channel string) Encodable        { return newCommand(channel, "slowoff") }
func Subscribers(channel string) Encodable    { return newCommand(channel, "subscribers") }
func SubscribersOff(channel string) Encodable { return newCommand(channel, "subscribersoff") }
func R9kBeta(channel string) Encodable        { return newCommand(channel, "r9kbeta") }
func R9kBetaOff(channel string) Encodable     { return newCommand(channel, "r9kbetaoff") }
func Host(channel, target string) Encodable   { return newCommand(channel, "host", target) }
func Unhost(channel string) Encodable         { return newCommand(channel, "unhost") }

func Marker(channel, description string) Encodable {
	if description == "" {
		return newCommand(channel, "marker")
	}
	return newCommand(channel, "marker", description)
}

func Announce(channel, message string) Encodable { return newCommand(channel, "announce", message) }
func Delete(channel, msgID string) Encodable     { return newCommand(channel, "delete", msgID) }
