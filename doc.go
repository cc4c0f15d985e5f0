/*
Package tmi is a Twitch IRC chat client core: a zero-copy IRCv3 message
parser, a typed decoder for Twitch's chat dialect, and an async runner
that drives the connection lifecycle.

API

These are the main types you will interact with:

	// IrcMessage is a parsed IRC line; its fields index back into the
	// original line rather than copying substrings out of it.
	type IrcMessage struct {
		// ...
	}

	// Decode projects a parsed IrcMessage onto a typed Message such as
	// *Privmsg, *Usernotice, or *Join.
	func Decode(m *IrcMessage) Message

	// AsyncRunner performs the PASS/NICK/CAP handshake, answers PING with
	// PONG, honors RECONNECT, tracks the authenticated identity, and
	// rate-limits outbound JOIN/PRIVMSG.
	type AsyncRunner struct {
		// ...
	}

	func NewAsyncRunner(conn io.ReadWriteCloser, config UserConfig, logger *logrus.Logger) (*AsyncRunner, Sender)
	func (r *AsyncRunner) Run(ctx context.Context) (Status, error)

Parsing

ParseMessage and the Decoder type turn raw IRC lines into IrcMessage
values. Decode then turns an IrcMessage into one of the typed message
structs (Privmsg, Userstate, Roomstate, Usernotice, and so on), each
carrying only the tags and params that command actually sends.

Encoding

Encodable values (built with Say, JoinChannel, Ban, Timeout, and the
rest of the command builders in commands.go) know how to write their
own wire form. Encoder and AsyncEncoder write them to an io.Writer.

Connection lifecycle

	- A caller dials a connection (see the connector subpackage) and
	passes it to NewAsyncRunner along with a UserConfig.
	- Run performs the handshake, then loops: decoded messages update
	state and identity, outbound frames from the returned Sender are
	rate-limited and written, and idle periods trigger a keepalive PING.
	- Run returns once the connection closes, the caller cancels the
	context, the server sends RECONNECT, or Shutdown is called, along
	with a Status classifying why.
*/
package tmi
