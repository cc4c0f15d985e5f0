package tmi

import (
	"strconv"
	"strings"
)

// Message is implemented by every typed projection and by Unknown. It's
// the common surface the runner's Handler is called with, one interface
// over many concrete Twitch event types instead of a single generic
// message struct callers must switch on by command name.
type Message interface {
	// Raw returns the underlying parsed line every typed projection is a view over.
	Raw() *IrcMessage
}

// base is embedded by every typed projection to satisfy Message and to
// avoid repeating the raw-message plumbing in each type.
type base struct {
	raw *IrcMessage
}

// Raw implements Message.
func (b base) Raw() *IrcMessage { return b.raw }

// Badge is one entry of a badges/badge-info tag, e.g. "subscriber/12".
type Badge struct {
	Name    string
	Version string
}

// EmotePosition is one occurrence of an emote within a message body,
// given as a UTF-16 code-unit range per Twitch's emotes tag convention,
// e.g. "emotes=25:0-4,12-16/1902:6-10".
type EmotePosition struct {
	Start int
	End   int
}

// Emote is one distinct emote referenced by an emotes tag, with every
// position it occurs at in the message body.
type Emote struct {
	ID        string
	Positions []EmotePosition
}

// parseBadges parses a "name1/version1,name2/version2" badges tag,
// grounded on parseBadges in the kappopher Twitch IRC client
// (other_examples/bb8de397_Its-donkey-kappopher__helix-irc.go.go).
func parseBadges(raw string) []Badge {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]Badge, 0, len(parts))
	for _, p := range parts {
		name, version, _ := strings.Cut(p, "/")
		out = append(out, Badge{Name: name, Version: version})
	}
	return out
}

// parseEmotes parses an "id:start-end,start-end/id:start-end" emotes tag,
// grounded on parseEmotes in the same file.
func parseEmotes(raw string) []Emote {
	if raw == "" {
		return nil
	}
	groups := strings.Split(raw, "/")
	out := make([]Emote, 0, len(groups))
	for _, g := range groups {
		id, ranges, ok := strings.Cut(g, ":")
		if !ok {
			continue
		}
		e := Emote{ID: id}
		for _, r := range strings.Split(ranges, ",") {
			startStr, endStr, ok := strings.Cut(r, "-")
			if !ok {
				continue
			}
			start, err1 := strconv.Atoi(startStr)
			end, err2 := strconv.Atoi(endStr)
			if err1 != nil || err2 != nil {
				continue
			}
			e.Positions = append(e.Positions, EmotePosition{Start: start, End: end})
		}
		out = append(out, e)
	}
	return out
}

// hasBadge reports whether any parsed badge matches name (e.g. "moderator"
// or "broadcaster"), used to elevate a channel's rate class.
func hasBadge(badges []Badge, name string) bool {
	for _, b := range badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Privmsg is a channel chat message.
type Privmsg struct {
	base
	Channel     string
	User        string
	DisplayName string
	Body        string
	Badges      []Badge
	Emotes      []Emote
	Color       string
	IsAction    bool
	Bits        int
	RoomID      string
	UserID      string
	TMISentTS   int64
}

// PrivmsgFromRaw builds a Privmsg from a raw PRIVMSG message.
func PrivmsgFromRaw(m *IrcMessage) (*Privmsg, error) {
	if !m.Is("PRIVMSG") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "PRIVMSG", Field: "channel"}
	}
	body := m.Param(2)
	isAction := false
	if strings.HasPrefix(body, "\x01ACTION ") && strings.HasSuffix(body, "\x01") {
		body = strings.TrimSuffix(strings.TrimPrefix(body, "\x01ACTION "), "\x01")
		isAction = true
	}

	badges, _ := m.Tag("badges")
	emotes, _ := m.Tag("emotes")
	bits, _ := strconv.Atoi(m.Tags.GetDefault("bits", "0"))
	ts, _ := strconv.ParseInt(m.Tags.GetDefault("tmi-sent-ts", "0"), 10, 64)

	return &Privmsg{
		base:        base{raw: m},
		Channel:     channel,
		User:        m.NickName(),
		DisplayName: m.Tags.GetDefault("display-name", m.NickName()),
		Body:        body,
		Badges:      parseBadges(badges),
		Emotes:      parseEmotes(emotes),
		Color:       m.Tags.GetDefault("color", ""),
		IsAction:    isAction,
		Bits:        bits,
		RoomID:      m.Tags.GetDefault("room-id", ""),
		UserID:      m.Tags.GetDefault("user-id", ""),
		TMISentTS:   ts,
	}, nil
}

// Userstate carries the sender's per-channel state, sent after each
// message the client sends and on channel join.
type Userstate struct {
	base
	Channel     string
	Badges      []Badge
	Color       string
	DisplayName string
	EmoteSets   []string
	Mod         bool
}

// UserstateFromRaw builds a Userstate from a raw USERSTATE message.
func UserstateFromRaw(m *IrcMessage) (*Userstate, error) {
	if !m.Is("USERSTATE") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "USERSTATE", Field: "channel"}
	}
	badges := parseBadges(m.Tags.GetDefault("badges", ""))
	return &Userstate{
		base:        base{raw: m},
		Channel:     channel,
		Badges:      badges,
		Color:       m.Tags.GetDefault("color", ""),
		DisplayName: m.Tags.GetDefault("display-name", ""),
		EmoteSets:   splitCSV(m.Tags.GetDefault("emote-sets", "")),
		Mod:         m.Tags.GetDefault("mod", "0") == "1" || hasBadge(badges, "moderator"),
	}, nil
}

// Globaluserstate carries the client's identity, sent once after
// registration completes. The runner caches it on Identity.
type Globaluserstate struct {
	base
	UserID      string
	DisplayName string
	Color       string
	Badges      []Badge
	EmoteSets   []string
}

// GlobaluserstateFromRaw builds a Globaluserstate from a raw GLOBALUSERSTATE message.
func GlobaluserstateFromRaw(m *IrcMessage) (*Globaluserstate, error) {
	if !m.Is("GLOBALUSERSTATE") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	return &Globaluserstate{
		base:        base{raw: m},
		UserID:      m.Tags.GetDefault("user-id", ""),
		DisplayName: m.Tags.GetDefault("display-name", ""),
		Color:       m.Tags.GetDefault("color", ""),
		Badges:      parseBadges(m.Tags.GetDefault("badges", "")),
		EmoteSets:   splitCSV(m.Tags.GetDefault("emote-sets", "")),
	}, nil
}

// Roomstate describes a channel's chat settings.
type Roomstate struct {
	base
	Channel       string
	EmoteOnly     bool
	FollowersOnly int // -1 disabled, 0 all followers, n minutes
	R9K           bool
	Slow          int
	SubsOnly      bool
}

// RoomstateFromRaw builds a Roomstate from a raw ROOMSTATE message. Twitch
// sends ROOMSTATE both in full (on join) and as a partial update (a single
// changed tag); fields whose tag is absent keep their zero value, except
// FollowersOnly, which is -1 when its tag is absent, so callers merging
// partial updates should track EmoteOnly/FollowersOnly/etc.
// per-channel rather than assume every field is populated on every event.
func RoomstateFromRaw(m *IrcMessage) (*Roomstate, error) {
	if !m.Is("ROOMSTATE") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "ROOMSTATE", Field: "channel"}
	}
	followers := -1
	if v, ok := m.Tag("followers-only"); ok {
		followers, _ = strconv.Atoi(v)
	}
	slow, _ := strconv.Atoi(m.Tags.GetDefault("slow", "0"))
	return &Roomstate{
		base:          base{raw: m},
		Channel:       channel,
		EmoteOnly:     m.Tags.GetDefault("emote-only", "0") == "1",
		FollowersOnly: followers,
		R9K:           m.Tags.GetDefault("r9k", "0") == "1",
		Slow:          slow,
		SubsOnly:      m.Tags.GetDefault("subs-only", "0") == "1",
	}, nil
}

// Clearchat reports a ban, timeout, or full channel chat clear.
type Clearchat struct {
	base
	Channel     string
	Target      string // empty when the entire channel's chat was cleared
	BanDuration int     // seconds; 0 means a permanent ban (or no target)
}

// ClearchatFromRaw builds a Clearchat from a raw CLEARCHAT message.
func ClearchatFromRaw(m *IrcMessage) (*Clearchat, error) {
	if !m.Is("CLEARCHAT") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "CLEARCHAT", Field: "channel"}
	}
	dur, _ := strconv.Atoi(m.Tags.GetDefault("ban-duration", "0"))
	return &Clearchat{
		base:        base{raw: m},
		Channel:     channel,
		Target:      m.Param(2),
		BanDuration: dur,
	}, nil
}

// Clearmsg reports a single deleted message.
type Clearmsg struct {
	base
	Channel     string
	Login       string
	TargetMsgID string
}

// ClearmsgFromRaw builds a Clearmsg from a raw CLEARMSG message.
func ClearmsgFromRaw(m *IrcMessage) (*Clearmsg, error) {
	if !m.Is("CLEARMSG") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "CLEARMSG", Field: "channel"}
	}
	return &Clearmsg{
		base:        base{raw: m},
		Channel:     channel,
		Login:       m.Tags.GetDefault("login", ""),
		TargetMsgID: m.Tags.GetDefault("target-msg-id", ""),
	}, nil
}

// Notice is a server informational message, e.g. command feedback or a
// login error.
type Notice struct {
	base
	Channel string
	MsgID   string
	Message string
}

// NoticeFromRaw builds a Notice from a raw NOTICE message.
func NoticeFromRaw(m *IrcMessage) (*Notice, error) {
	if !m.Is("NOTICE") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	return &Notice{
		base:    base{raw: m},
		Channel: m.Param(1),
		MsgID:   m.Tags.GetDefault("msg-id", ""),
		Message: m.Param(2),
	}, nil
}

// UsernoticeKind identifies the msg-id of a USERNOTICE, classifying which
// Twitch event it carries (sub, resub, raid, ...). The per-kind
// msg-param-* tags go beyond Usernotice's generic fields but are common
// enough across Twitch clients to be worth decoding directly.
type UsernoticeKind string

const (
	UsernoticeSub             UsernoticeKind = "sub"
	UsernoticeResub           UsernoticeKind = "resub"
	UsernoticeSubgift         UsernoticeKind = "subgift"
	UsernoticeSubmysterygift  UsernoticeKind = "submysterygift"
	UsernoticeGiftPaidUpgrade UsernoticeKind = "giftpaidupgrade"
	UsernoticeRaid            UsernoticeKind = "raid"
	UsernoticeUnraid          UsernoticeKind = "unraid"
	UsernoticeRitual          UsernoticeKind = "ritual"
	UsernoticeBitsBadgeTier   UsernoticeKind = "bitsbadgetier"
	UsernoticeAnnouncement    UsernoticeKind = "announcement"
)

// Usernotice wraps subscription, raid, and similar channel-point-free
// celebratory events.
type Usernotice struct {
	base
	Channel   string
	MsgID     string
	SystemMsg string
	Login     string
	Message   string
	// Params holds every msg-param-* tag, keyed without the "msg-param-"
	// prefix, e.g. Params["months"], Params["sub-plan"], Params["viewerCount"].
	Params map[string]string
}

// Kind classifies u by its msg-id (see UsernoticeKind).
func (u *Usernotice) Kind() UsernoticeKind { return UsernoticeKind(u.MsgID) }

// UsernoticeFromRaw builds a Usernotice from a raw USERNOTICE message.
func UsernoticeFromRaw(m *IrcMessage) (*Usernotice, error) {
	if !m.Is("USERNOTICE") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "USERNOTICE", Field: "channel"}
	}
	params := make(map[string]string)
	for _, key := range m.Tags.Keys() {
		if rest, ok := strings.CutPrefix(key, "msg-param-"); ok {
			v, _ := m.Tag(key)
			params[rest] = v
		}
	}
	return &Usernotice{
		base:      base{raw: m},
		Channel:   channel,
		MsgID:     m.Tags.GetDefault("msg-id", ""),
		SystemMsg: m.Tags.GetDefault("system-msg", ""),
		Login:     m.Tags.GetDefault("login", ""),
		Message:   m.Param(2),
		Params:    params,
	}, nil
}

// Hosttarget reports a channel starting or stopping hosting another
// channel.
type Hosttarget struct {
	base
	Source     string
	Target     string // empty when hosting stopped
	Viewers    int
	hasViewers bool
}

// HasViewerCount reports whether the HOSTTARGET line included a viewer count.
func (h *Hosttarget) HasViewerCount() bool { return h.hasViewers }

// HosttargetFromRaw builds a Hosttarget from a raw HOSTTARGET message.
// Wire shape: "HOSTTARGET #source :target count" or "HOSTTARGET #source :- count" on unhost.
func HosttargetFromRaw(m *IrcMessage) (*Hosttarget, error) {
	if !m.Is("HOSTTARGET") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	source := m.Param(1)
	if source == "" {
		return nil, &InvalidMessageError{Command: "HOSTTARGET", Field: "source"}
	}
	fields := strings.Fields(m.Param(2))
	h := &Hosttarget{base: base{raw: m}, Source: source}
	if len(fields) > 0 && fields[0] != "-" {
		h.Target = fields[0]
	}
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			h.Viewers = n
			h.hasViewers = true
		}
	}
	return h, nil
}

// Whisper is a private message between two users.
type Whisper struct {
	base
	From   string
	To     string
	Body   string
	Badges []Badge
	Emotes []Emote
	Color  string
}

// WhisperFromRaw builds a Whisper from a raw WHISPER message.
func WhisperFromRaw(m *IrcMessage) (*Whisper, error) {
	if !m.Is("WHISPER") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	to := m.Param(1)
	if to == "" {
		return nil, &InvalidMessageError{Command: "WHISPER", Field: "to"}
	}
	return &Whisper{
		base:   base{raw: m},
		From:   m.NickName(),
		To:     to,
		Body:   m.Param(2),
		Badges: parseBadges(m.Tags.GetDefault("badges", "")),
		Emotes: parseEmotes(m.Tags.GetDefault("emotes", "")),
		Color:  m.Tags.GetDefault("color", ""),
	}, nil
}

// Ping is a server keepalive probe expecting a matching Pong in reply.
type Ping struct {
	base
	Token string
}

// PingFromRaw builds a Ping from a raw PING message.
func PingFromRaw(m *IrcMessage) (*Ping, error) {
	if !m.Is("PING") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	return &Ping{base: base{raw: m}, Token: m.Param(1)}, nil
}

// Pong replies to a Ping with the same token. The token is the last
// parameter, so both "PONG :tok" and "PONG tmi.twitch.tv :tok" yield "tok".
type Pong struct {
	base
	Token string
}

// PongFromRaw builds a Pong from a raw PONG message.
func PongFromRaw(m *IrcMessage) (*Pong, error) {
	if !m.Is("PONG") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	return &Pong{base: base{raw: m}, Token: m.Param(m.ParamCount())}, nil
}

// Cap is one line of IRCv3 capability negotiation.
type Cap struct {
	base
	Ack        bool // true for ACK, false for NAK
	Capability string
}

// CapFromRaw builds a Cap from a raw CAP message whose subcommand is ACK or NAK.
func CapFromRaw(m *IrcMessage) (*Cap, error) {
	if !m.Is("CAP") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	sub := strings.ToUpper(m.Param(2))
	if sub != "ACK" && sub != "NAK" {
		return nil, &InvalidMessageError{Command: "CAP", Field: "subcommand"}
	}
	return &Cap{base: base{raw: m}, Ack: sub == "ACK", Capability: strings.TrimSpace(m.Param(3))}, nil
}

// Join reports a user joining a channel.
type Join struct {
	base
	Channel string
	User    string
}

// JoinFromRaw builds a Join from a raw JOIN message.
func JoinFromRaw(m *IrcMessage) (*Join, error) {
	if !m.Is("JOIN") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "JOIN", Field: "channel"}
	}
	return &Join{base: base{raw: m}, Channel: channel, User: m.NickName()}, nil
}

// Part reports a user leaving a channel.
type Part struct {
	base
	Channel string
	User    string
}

// PartFromRaw builds a Part from a raw PART message.
func PartFromRaw(m *IrcMessage) (*Part, error) {
	if !m.Is("PART") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	channel := m.Param(1)
	if channel == "" {
		return nil, &InvalidMessageError{Command: "PART", Field: "channel"}
	}
	return &Part{base: base{raw: m}, Channel: channel, User: m.NickName()}, nil
}

// Ready reports numeric 001 (RPL_WELCOME): registration succeeded and the
// server has assigned the client's login.
type Ready struct {
	base
	Login string
}

// ReadyFromRaw builds a Ready from a raw 001 message.
func ReadyFromRaw(m *IrcMessage) (*Ready, error) {
	if !m.Is("001") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	login := m.Param(1)
	if login == "" {
		return nil, &InvalidMessageError{Command: "001", Field: "login"}
	}
	return &Ready{base: base{raw: m}, Login: login}, nil
}

// IrcReady reports numeric 376 (RPL_ENDOFMOTD), which Twitch sends to mark
// the end of the handshake after 001.
type IrcReady struct {
	base
	Login string
}

// IrcReadyFromRaw builds an IrcReady from a raw 376 message.
func IrcReadyFromRaw(m *IrcMessage) (*IrcReady, error) {
	if !m.Is("376") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	login := m.Param(1)
	if login == "" {
		return nil, &InvalidMessageError{Command: "376", Field: "login"}
	}
	return &IrcReady{base: base{raw: m}, Login: login}, nil
}

// Reconnect reports the server's RECONNECT directive. It carries no
// fields: the caller reconnects.
type Reconnect struct {
	base
}

// ReconnectFromRaw builds a Reconnect from a raw RECONNECT message.
func ReconnectFromRaw(m *IrcMessage) (*Reconnect, error) {
	if !m.Is("RECONNECT") {
		return nil, &InvalidMessageError{Command: m.CommandName(), Field: "command"}
	}
	return &Reconnect{base: base{raw: m}}, nil
}

// Unknown wraps any message whose command didn't match a known projection.
type Unknown struct {
	base
}

// Decode converts a raw IrcMessage into its typed projection, or Unknown
// if the command isn't one of the documented Twitch commands.
// Decode itself never fails: a malformed but recognized command returns
// Unknown rather than an error, so callers can always fall back to the raw
// message even when a server sends a line that looks like e.g. PRIVMSG but
// is missing its channel parameter.
func Decode(m *IrcMessage) Message {
	var (
		msg Message
		err error
	)
	switch strings.ToUpper(m.CommandName()) {
	case "PRIVMSG":
		msg, err = PrivmsgFromRaw(m)
	case "USERSTATE":
		msg, err = UserstateFromRaw(m)
	case "GLOBALUSERSTATE":
		msg, err = GlobaluserstateFromRaw(m)
	case "ROOMSTATE":
		msg, err = RoomstateFromRaw(m)
	case "CLEARCHAT":
		msg, err = ClearchatFromRaw(m)
	case "CLEARMSG":
		msg, err = ClearmsgFromRaw(m)
	case "NOTICE":
		msg, err = NoticeFromRaw(m)
	case "USERNOTICE":
		msg, err = UsernoticeFromRaw(m)
	case "HOSTTARGET":
		msg, err = HosttargetFromRaw(m)
	case "WHISPER":
		msg, err = WhisperFromRaw(m)
	case "PING":
		msg, err = PingFromRaw(m)
	case "PONG":
		msg, err = PongFromRaw(m)
	case "CAP":
		msg, err = CapFromRaw(m)
	case "JOIN":
		msg, err = JoinFromRaw(m)
	case "PART":
		msg, err = PartFromRaw(m)
	case "001":
		msg, err = ReadyFromRaw(m)
	case "376":
		msg, err = IrcReadyFromRaw(m)
	case "RECONNECT":
		msg, err = ReconnectFromRaw(m)
	default:
		return &Unknown{base: base{raw: m}}
	}
	if err != nil {
		return &Unknown{base: base{raw: m}}
	}
	return msg
}

// splitCSV splits a comma-separated tag value, returning nil for an empty
// string rather than a single empty-string element.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
