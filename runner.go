package tmi

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is one stage of the runner's connection lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateRegistering
	StateReady
	StateRunning
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRegistering:
		return "registering"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Status classifies a runner's terminal outcome: Eof, Cancelled, Timeout,
// Reconnect, or Error.
type Status int

const (
	StatusEOF Status = iota
	StatusCancelled
	StatusTimeout
	StatusReconnect
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEOF:
		return "eof"
	case StatusCancelled:
		return "cancelled"
	case StatusTimeout:
		return "timeout"
	case StatusReconnect:
		return "reconnect"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// idleKeepalive is how long the runner waits without any inbound traffic
// before proactively sending a PING, shortened from a plain IRC server's
// usual multi-minute idle timer to match Twitch's more talkative PING
// cadence.
const idleKeepalive = 4 * time.Minute

// pongGrace is how long the runner waits for a PONG after its own
// keepalive PING before treating the connection as dead.
const pongGrace = 10 * time.Second

// drainDeadline bounds how long terminate spends emptying the outbound
// queue. Frames still queued at that point are not written: each is
// resolved with ErrClosed.
const drainDeadline = 2 * time.Second

// NotifyHandle is a one-shot awaitable a caller uses to observe a specific
// runner event — join completion, shutdown completion.
type NotifyHandle struct {
	ch <-chan error
}

// Wait blocks until the observed event resolves or ctx is done, whichever
// comes first. A nil error means the event completed successfully; a
// non-nil error means the runner terminated (or ctx expired) before it did.
func (h *NotifyHandle) Wait(ctx context.Context) error {
	select {
	case err := <-h.ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newNotifyHandle() (*NotifyHandle, chan error) {
	ch := make(chan error, 1)
	return &NotifyHandle{ch: ch}, ch
}

// AsyncRunner is the connection-lifecycle state machine: it performs the
// handshake, multiplexes inbound decoded messages against the outbound
// MPSC queue, answers PING with PONG, honors RECONNECT, tracks identity,
// and exposes cooperative shutdown. Dialing is left to the caller; the
// runner takes an already-connected io.ReadWriteCloser and drives
// handshake writes → goroutine-fed decode channel → select loop,
// registering with Twitch's PASS/NICK/CAP REQ sequence instead of plain
// RFC1459 registration.
type AsyncRunner struct {
	conn   io.ReadWriteCloser
	config UserConfig
	logger *logrus.Logger

	identity   *Identity
	limiter    *RateLimiter
	dispatcher *Dispatcher

	quit     *quitSignal
	receiver Receiver

	stateMu sync.RWMutex
	state   State

	mu              sync.Mutex
	joinWaiters     map[string][]chan error
	shutdownWaiters []chan error

	status      Status
	statusCause error
}

// NewAsyncRunner constructs a runner over conn (already connected; dialing
// is left to the caller, see the connector package) and returns it along
// with the Sender every writer handle is cloned from. logger may be nil,
// in which case a default logrus logger is installed.
func NewAsyncRunner(conn io.ReadWriteCloser, config UserConfig, logger *logrus.Logger) (*AsyncRunner, Sender) {
	if logger == nil {
		logger = newDefaultLogger()
	}
	quit := newQuitSignal()
	sender, receiver := newChannel(64, quit)

	r := &AsyncRunner{
		conn:        conn,
		config:      config,
		logger:      logger,
		identity:    &Identity{},
		limiter:     NewRateLimiter(),
		dispatcher:  NewDispatcher(),
		quit:        quit,
		receiver:    receiver,
		joinWaiters: make(map[string][]chan error),
	}
	r.identity.setLogin(normalizeLogin(config.Login))
	r.setState(StateConnecting)
	return r, sender
}

// State reports the runner's current lifecycle state.
func (r *AsyncRunner) State() State {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

func (r *AsyncRunner) setState(s State) {
	r.stateMu.Lock()
	r.state = s
	r.stateMu.Unlock()
	r.logger.WithField("state", s.String()).Debug("tmi: state transition")
}

// Identity returns the runner's tracked identity, live-updated as
// GLOBALUSERSTATE/USERSTATE arrive.
func (r *AsyncRunner) Identity() *Identity { return r.identity }

// Dispatcher returns the Dispatcher every inbound typed Message is handed
// to after the runner's own handshake/keepalive/identity reactions run.
// Register handlers on it (OnPrivmsg, OnUsernotice, ...) before calling Run.
func (r *AsyncRunner) Dispatcher() *Dispatcher { return r.dispatcher }

// Shutdown raises the quit signal with a cancelled cause and returns a
// handle that resolves once the runner has finished terminating.
func (r *AsyncRunner) Shutdown() *NotifyHandle {
	h, resolve := newNotifyHandle()
	r.mu.Lock()
	r.shutdownWaiters = append(r.shutdownWaiters, resolve)
	r.mu.Unlock()
	r.quit.Raise(ErrCancelled)
	return h
}

// WaitForJoin returns a handle that resolves once the runner observes a
// JOIN for channel from its own login, or resolves with the runner's
// terminal error if it shuts down first.
func (r *AsyncRunner) WaitForJoin(channel string) *NotifyHandle {
	channel = normalizeChannel(channel)
	h, resolve := newNotifyHandle()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State() >= StateShuttingDown {
		resolve <- r.statusCause
		return h
	}
	r.joinWaiters[channel] = append(r.joinWaiters[channel], resolve)
	return h
}

// handshake sends PASS/NICK/CAP REQ and advances to Registering.
func (r *AsyncRunner) handshake() error {
	r.setState(StateRegistering)
	enc := NewEncoder(r.conn)

	if err := enc.Encode(Pass(r.config.Token)); err != nil {
		return &HandshakeError{Reason: fmt.Sprintf("PASS: %v", err)}
	}
	if err := enc.Encode(Nick(r.config.Login)); err != nil {
		return &HandshakeError{Reason: fmt.Sprintf("NICK: %v", err)}
	}
	for _, capName := range r.config.capabilities() {
		if err := enc.Encode(CapReq(capName)); err != nil {
			return &HandshakeError{Reason: fmt.Sprintf("CAP REQ %s: %v", capName, err)}
		}
	}
	return nil
}

// Run performs the handshake and then drives the event loop until a
// terminal condition (quit, RECONNECT, fatal I/O error, or EOF) is
// reached, returning the classifying Status and its underlying cause.
func (r *AsyncRunner) Run(ctx context.Context) (Status, error) {
	defer r.conn.Close()

	if err := r.handshake(); err != nil {
		return r.terminate(StatusError, err)
	}

	dec := NewAsyncDecoder(r.conn)
	caps := newCapHandshake(r.config.capabilities())
	enc := NewEncoder(r.conn)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go func() {
		select {
		case <-ctx.Done():
			r.quit.Raise(ErrCancelled)
		case <-watchCtx.Done():
		}
	}()

	idleTimer := time.NewTimer(idleKeepalive)
	defer idleTimer.Stop()
	var awaitingPong string
	var pongTimer *time.Timer
	defer func() {
		if pongTimer != nil {
			pongTimer.Stop()
		}
	}()

	for {
		var pongC <-chan time.Time
		if pongTimer != nil {
			pongC = pongTimer.C
		}

		select {
		case m, ok := <-dec.Messages():
			if !ok {
				continue
			}
			idleTimer.Reset(idleKeepalive)
			r.handleInbound(m, caps, enc, &awaitingPong, &pongTimer)

		case err := <-dec.Done():
			if err == io.EOF {
				return r.terminate(StatusEOF, ErrUnexpectedEOF)
			}
			return r.terminate(StatusError, err)

		case pe := <-dec.Errors():
			r.logger.WithError(pe).Warn("tmi: skipping malformed line")

		case fr, ok := <-r.receiver.Recv():
			if !ok {
				continue
			}
			r.writeFrame(enc, fr)

		case <-idleTimer.C:
			awaitingPong = "tmi-keepalive"
			if err := enc.Encode(PingServer(awaitingPong)); err != nil {
				return r.terminate(StatusError, err)
			}
			pongTimer = time.NewTimer(pongGrace)
			idleTimer.Reset(idleKeepalive)

		case <-pongC:
			return r.terminate(StatusTimeout, ErrTimeout)

		case <-r.quit.C():
			cause := r.quit.Cause()
			if cause == ErrShouldReconnect {
				return r.terminate(StatusReconnect, cause)
			}
			if cause == ErrCancelled {
				return r.terminate(StatusCancelled, cause)
			}
			return r.terminate(StatusError, cause)
		}
	}
}

// handleInbound reacts to one decoded message, advancing state as needed.
func (r *AsyncRunner) handleInbound(m *IrcMessage, caps *capHandshake, enc *Encoder, awaitingPong *string, pongTimer **time.Timer) {
	typed := Decode(m)
	r.dispatcher.Dispatch(typed)

	switch v := typed.(type) {
	case *Ping:
		// head-of-line priority: answer before anything else is written.
		if err := enc.Encode(pongFor(v)); err != nil {
			r.quit.Raise(err)
		}

	case *Pong:
		if *awaitingPong != "" && v.Token == *awaitingPong {
			*awaitingPong = ""
			if *pongTimer != nil {
				(*pongTimer).Stop()
				*pongTimer = nil
			}
		}

	case *Cap:
		// capability negotiation doesn't by itself move us to Ready; 001/376
		// do. The resolution is only tracked so a future caller could
		// surface a negotiation failure (a NAK'd required capability); see
		// caps.done().
		caps.resolve(v)

	case *Ready:
		r.identity.setLogin(v.Login)

	case *IrcReady:
		if r.State() == StateRegistering {
			r.setState(StateReady)
			r.setState(StateRunning)
		}

	case *Globaluserstate:
		r.identity.applyGlobaluserstate(v)

	case *Userstate:
		r.identity.applyUserstate(v)
		if hasBadge(v.Badges, "moderator") || hasBadge(v.Badges, "broadcaster") {
			r.limiter.SetClass(v.Channel, ModeratorClass)
		}

	case *Join:
		if normalizeLogin(v.User) == r.identity.Login() {
			r.resolveJoin(v.Channel, nil)
		}

	case *Reconnect:
		r.quit.Raise(ErrShouldReconnect)
	}
}

func (r *AsyncRunner) resolveJoin(channel string, err error) {
	channel = normalizeChannel(channel)
	r.mu.Lock()
	waiters := r.joinWaiters[channel]
	delete(r.joinWaiters, channel)
	r.mu.Unlock()
	for _, w := range waiters {
		w <- err
	}
}

// writeFrame applies rate limiting (for JOIN/PRIVMSG) and writes fr's
// command, reporting the outcome on fr.done if present.
func (r *AsyncRunner) writeFrame(enc *Encoder, fr frame) {
	if rl, ok := fr.cmd.(rateLimited); ok {
		kind, channel := rl.rateKind()
		for {
			var ok bool
			var sleepFor time.Duration
			if kind == "join" {
				ok, sleepFor = r.limiter.TakeJoin()
			} else {
				ok, sleepFor = r.limiter.TakePrivmsg(channel)
			}
			if ok {
				break
			}
			select {
			case <-time.After(sleepFor):
			case <-r.quit.C():
				if fr.done != nil {
					fr.done <- ErrClosed
				}
				return
			}
		}
	}

	err := enc.Encode(fr.cmd)
	if fr.done != nil {
		fr.done <- err
	}
	if err != nil {
		r.quit.Raise(err)
	}
}

// terminate drains the outbound queue best-effort, resolves every
// outstanding notify handle, advances to Terminated, and records the
// final Status/cause.
func (r *AsyncRunner) terminate(status Status, cause error) (Status, error) {
	// Record the cause before leaving Running, so a WaitForJoin that sees
	// StateShuttingDown resolves with it rather than with nil.
	r.mu.Lock()
	r.status = status
	r.statusCause = cause
	r.mu.Unlock()

	r.setState(StateShuttingDown)

	// Best-effort drain: resolve any already-queued frames with
	// ErrClosed instead of writing them, since the connection may already
	// be unusable by the time a terminal condition is reached.
	deadline := time.After(drainDeadline)
drain:
	for {
		select {
		case fr, ok := <-r.receiver.Recv():
			if !ok {
				break drain
			}
			if fr.done != nil {
				fr.done <- ErrClosed
			}
		case <-deadline:
			break drain
		default:
			break drain
		}
	}

	r.quit.Raise(cause)

	r.mu.Lock()
	for _, waiters := range r.joinWaiters {
		for _, w := range waiters {
			w <- cause
		}
	}
	r.joinWaiters = nil
	shutdownWaiters := r.shutdownWaiters
	r.shutdownWaiters = nil
	r.mu.Unlock()
	for _, w := range shutdownWaiters {
		w <- cause
	}

	r.setState(StateTerminated)
	return status, cause
}
