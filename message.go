package tmi

import "strings"

// PrefixIndices is the optional ":nick!user@host" (or ":server") section of
// a message, as indices into the message's Buffer. Any of Nick, User, Host
// may be empty; at least one is non-empty whenever PrefixIndices is present
// at all.
type PrefixIndices struct {
	Nick Index
	User Index
	Host Index
}

// IrcMessage is a single parsed IRC line: tags, prefix, command, and
// parameters, all expressed as Index ranges into a shared Buffer.
//
// An IrcMessage always owns its Buffer, whether it came from ParseMessage
// or from Decoder.ReadMessage (which copies each scanned line), so it
// stays valid for as long as it is referenced.
type IrcMessage struct {
	buf Buffer

	Tags    *TagIndices
	Prefix  *PrefixIndices
	Command Index
	Params  []Index
	// Trailing indexes the final ':'-prefixed parameter, if the line had
	// one. When present, it also appears as the last entry of Params, so
	// that positional parameter access (Param) does not need special
	// casing for the trailing argument.
	Trailing *Index
}

// Buffer returns the backing buffer m's indices are valid against.
func (m *IrcMessage) Buffer() Buffer { return m.buf }

// Raw returns the full original line (without the trailing CRLF) that m was parsed from.
func (m *IrcMessage) Raw() string { return string(m.buf) }

// CommandName returns the message's command/verb, e.g. "PRIVMSG" or "001".
func (m *IrcMessage) CommandName() string { return m.Command.Slice(m.buf) }

// Is reports whether m's command equals cmd, case-insensitively: commands
// are conventionally upper-case on the wire, but this matches regardless.
func (m *IrcMessage) Is(cmd string) bool {
	return strings.EqualFold(m.CommandName(), cmd)
}

// NickName returns the nick portion of the message prefix, or "" if the
// message had no prefix or the prefix had no nick. A bare server name
// (":tmi.twitch.tv") is stored as the nick and returned here.
func (m *IrcMessage) NickName() string {
	if m.Prefix == nil {
		return ""
	}
	return m.Prefix.Nick.Slice(m.buf)
}

// ParamCount returns the number of parameters, including the trailing
// parameter if present.
func (m *IrcMessage) ParamCount() int { return len(m.Params) }

// Param returns the nth parameter (1-indexed), or "" if n is out of range.
func (m *IrcMessage) Param(n int) string {
	if n < 1 || n > len(m.Params) {
		return ""
	}
	return m.Params[n-1].Slice(m.buf)
}

// Tag returns the unescaped value of tag key and whether it was present.
func (m *IrcMessage) Tag(key string) (string, bool) {
	return m.Tags.Get(key)
}

// Own returns a shallow copy of m that shares m's Buffer. Every IrcMessage
// already owns its Buffer, so the copy is no longer-lived than m itself.
func (m *IrcMessage) Own() *IrcMessage {
	// Go strings are immutable and Buffer is just a named string, so the
	// copy only needs a new *IrcMessage header: the backing bytes are
	// already safe to keep.
	cp := *m
	return &cp
}

// ParseMessage parses a single IRC line (without the trailing CRLF) into an
// owned IrcMessage. line must be valid UTF-8; the decoder is responsible
// for framing and UTF-8 validation before calling this.
func ParseMessage(line string) (*IrcMessage, error) {
	if len(line) == 0 {
		return nil, parseErr(StageEmpty, "empty line")
	}
	return parse(Buffer(line))
}

// parse runs the index-producing scanner over buf and assembles an
// IrcMessage. It copies no substrings: every field is an Index into buf.
// Besides the tag slice it allocates the IrcMessage itself, the prefix,
// and the params slice.
func parse(buf Buffer) (*IrcMessage, error) {
	s := scanner{buf: string(buf)}
	m := &IrcMessage{buf: buf}

	if s.peek() == startTags {
		tags, err := s.scanTags()
		if err != nil {
			return nil, err
		}
		m.Tags = &TagIndices{buf: buf, tags: tags}
	}

	if s.peek() == startPrefix {
		prefix, err := s.scanPrefix()
		if err != nil {
			return nil, err
		}
		m.Prefix = prefix
	}

	cmd, err := s.scanCommand()
	if err != nil {
		return nil, err
	}
	m.Command = cmd

	params, trailing, err := s.scanParams()
	if err != nil {
		return nil, err
	}
	m.Params = params
	m.Trailing = trailing

	return m, nil
}
