package tmi

import (
	"errors"
	"fmt"
)

// ParseStage names the stage of the IRC grammar that failed while
// parsing a line into an IrcMessage.
type ParseStage int

const (
	// StageTags failed while reading the leading '@tags' section.
	StageTags ParseStage = iota
	// StagePrefix failed while reading the ':prefix' section.
	StagePrefix
	// StageCommand failed while reading the command/verb.
	StageCommand
	// StageParams failed while reading the parameter list.
	StageParams
	// StageEmpty indicates the line had no content at all.
	StageEmpty
)

func (s ParseStage) String() string {
	switch s {
	case StageTags:
		return "Tags"
	case StagePrefix:
		return "Prefix"
	case StageCommand:
		return "Command"
	case StageParams:
		return "Params"
	case StageEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// ParseError reports a malformed IRC line, naming the grammar stage that
// rejected it.
type ParseError struct {
	Stage ParseStage
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("irc: parse error at stage %s: %s", e.Stage, e.Msg)
}

func parseErr(stage ParseStage, format string, args ...interface{}) *ParseError {
	return &ParseError{Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

// InvalidMessageError is returned when converting a raw IrcMessage into a
// typed projection and a required field was absent or malformed.
type InvalidMessageError struct {
	Command string
	Field   string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("tmi: %s: invalid or missing field %q", e.Command, e.Field)
}

// Decode errors. ErrTooLong, ErrInvalidUTF8, and io.EOF/io.ErrUnexpectedEOF
// are returned directly from the decoder; ParseError is returned by the
// message parser and does not, on its own, terminate a Decoder.
var (
	// ErrTooLong is returned when a line exceeds the decoder's maximum
	// line length, an implementation-chosen maximum of at least 8192 bytes.
	ErrTooLong = errors.New("tmi: line exceeds maximum length")

	// ErrInvalidUTF8 is returned when a framed line is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("tmi: line is not valid utf-8")
)

// Runner errors.
var (
	// ErrShouldReconnect is the terminal cause when the server sent RECONNECT.
	ErrShouldReconnect = errors.New("tmi: server requested reconnect")

	// ErrTimeout is the terminal cause when the server did not answer the
	// runner's keepalive PING within pongGrace. Shutdown has no deadline of
	// its own and never produces it.
	ErrTimeout = errors.New("tmi: timed out")

	// ErrCancelled is the terminal cause when the caller raised quit.
	ErrCancelled = errors.New("tmi: cancelled")

	// ErrClosed is returned by writer Sends after quit has been raised.
	ErrClosed = errors.New("tmi: writer closed")

	// ErrUnexpectedEOF is the terminal cause when the connection closed
	// without a RECONNECT or caller-initiated quit.
	ErrUnexpectedEOF = errors.New("tmi: unexpected eof")
)

// HandshakeError reports a fatal failure during the Connecting/Registering
// transition. Handshake failures are always fatal.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("tmi: handshake failed: %s", e.Reason)
}

// ErrInvalidToken is returned by UserConfig validation when the token
// doesn't begin with "oauth:" and isn't the anonymous login.
var ErrInvalidToken = errors.New("tmi: token must begin with \"oauth:\" (or be the anonymous login)")

// ErrInvalidName is returned by UserConfig validation when the login name
// is not lowercase ASCII.
var ErrInvalidName = errors.New("tmi: name must be lowercase ascii")
