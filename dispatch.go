package tmi

import "sync"

// Middleware wraps a Handler: a function that accepts a handler and
// returns a handler, composed over already-typed Message values rather
// than raw lines.
type Middleware func(Handler) Handler

// Handler reacts to one decoded, typed Message.
type Handler func(Message)

func wrap(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Dispatcher fans a typed Message out to the handlers registered for its
// concrete type, keyed on Go's concrete type switch instead of a command
// string, since Decode already separates Twitch's dialect into distinct
// types rather than one generic Message with a Command field.
type Dispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]Handler
	middlewares []Middleware
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]Handler)}
}

// Use appends global middleware, run for every dispatched message
// regardless of whether a type-specific handler is registered, mirroring
// Router.Use's "even if there were no matching routes" guarantee.
func (d *Dispatcher) Use(mws ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, mws...)
}

// on registers h under key, the type name Dispatch uses to look handlers up.
func (d *Dispatcher) on(key string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[key] = append(d.handlers[key], h)
}

// Dispatch calls every handler registered for m's concrete type, each
// wrapped by the global middleware chain, then runs the middleware chain
// once more around a no-op if nothing matched (so middleware still sees
// every message, per Router.SpeakIRC).
func (d *Dispatcher) Dispatch(m Message) {
	d.mu.RLock()
	hs := d.handlers[typeKey(m)]
	mws := d.middlewares
	d.mu.RUnlock()

	if len(hs) == 0 {
		wrap(func(Message) {}, mws...)(m)
		return
	}
	for _, h := range hs {
		wrap(h, mws...)(m)
	}
}

func typeKey(m Message) string {
	switch m.(type) {
	case *Privmsg:
		return "privmsg"
	case *Whisper:
		return "whisper"
	case *Notice:
		return "notice"
	case *Usernotice:
		return "usernotice"
	case *Userstate:
		return "userstate"
	case *Globaluserstate:
		return "globaluserstate"
	case *Roomstate:
		return "roomstate"
	case *Clearchat:
		return "clearchat"
	case *Clearmsg:
		return "clearmsg"
	case *Hosttarget:
		return "hosttarget"
	case *Join:
		return "join"
	case *Part:
		return "part"
	case *Ready:
		return "ready"
	case *IrcReady:
		return "ircready"
	case *Reconnect:
		return "reconnect"
	case *Ping:
		return "ping"
	case *Pong:
		return "pong"
	case *Cap:
		return "cap"
	default:
		return "unknown"
	}
}

// OnPrivmsg registers h for chat messages.
func (d *Dispatcher) OnPrivmsg(h func(*Privmsg)) {
	d.on("privmsg", func(m Message) { h(m.(*Privmsg)) })
}

// OnWhisper registers h for whispers.
func (d *Dispatcher) OnWhisper(h func(*Whisper)) {
	d.on("whisper", func(m Message) { h(m.(*Whisper)) })
}

// OnNotice registers h for server NOTICEs.
func (d *Dispatcher) OnNotice(h func(*Notice)) {
	d.on("notice", func(m Message) { h(m.(*Notice)) })
}

// OnUsernotice registers h for subscription/raid/gift events.
func (d *Dispatcher) OnUsernotice(h func(*Usernotice)) {
	d.on("usernotice", func(m Message) { h(m.(*Usernotice)) })
}

// OnRoomstate registers h for channel configuration updates.
func (d *Dispatcher) OnRoomstate(h func(*Roomstate)) {
	d.on("roomstate", func(m Message) { h(m.(*Roomstate)) })
}

// OnClearchat registers h for bans/timeouts/chat-clear events.
func (d *Dispatcher) OnClearchat(h func(*Clearchat)) {
	d.on("clearchat", func(m Message) { h(m.(*Clearchat)) })
}

// OnClearmsg registers h for single deleted-message events.
func (d *Dispatcher) OnClearmsg(h func(*Clearmsg)) {
	d.on("clearmsg", func(m Message) { h(m.(*Clearmsg)) })
}

// OnHosttarget registers h for host start/stop events.
func (d *Dispatcher) OnHosttarget(h func(*Hosttarget)) {
	d.on("hosttarget", func(m Message) { h(m.(*Hosttarget)) })
}

// OnJoin registers h, called for every JOIN, including the runner's own
// (also observable via AsyncRunner.WaitForJoin).
func (d *Dispatcher) OnJoin(h func(*Join)) {
	d.on("join", func(m Message) { h(m.(*Join)) })
}

// OnPart registers h, called for every PART.
func (d *Dispatcher) OnPart(h func(*Part)) {
	d.on("part", func(m Message) { h(m.(*Part)) })
}

// OnReady registers h, called once registration succeeds (RPL_WELCOME).
func (d *Dispatcher) OnReady(h func(*Ready)) {
	d.on("ready", func(m Message) { h(m.(*Ready)) })
}

// OnIrcReady registers h, called once the MOTD completes and the
// connection is fully usable.
func (d *Dispatcher) OnIrcReady(h func(*IrcReady)) {
	d.on("ircready", func(m Message) { h(m.(*IrcReady)) })
}

// OnReconnect registers h, called when the server requests a reconnect.
func (d *Dispatcher) OnReconnect(h func(*Reconnect)) {
	d.on("reconnect", func(m Message) { h(m.(*Reconnect)) })
}
