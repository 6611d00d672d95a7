// Package events implements the deferred event queue. Events are queued
// during a command and drained afterwards, in order, to the handlers
// subscribed to their type.
package events

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nathoo/twoword/types"
)

// Names of the events raised by the interpreter itself.
const (
	GameInit    = "game.init"
	CommandExec = "command.exec"
)

// Type is an interned event type. TypeOf returns the same *Type for the
// same name for the lifetime of the process.
type Type struct {
	name string
}

var (
	typesMu  sync.Mutex
	typeByID = map[string]*Type{}
)

// TypeOf returns the event type named name, creating it on first use.
func TypeOf(name string) *Type {
	typesMu.Lock()
	defer typesMu.Unlock()
	if t, ok := typeByID[name]; ok {
		return t
	}
	t := &Type{name: name}
	typeByID[name] = t
	return t
}

// Name returns the type's name.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

// Event is a typed occurrence with a set-once property bag.
type Event struct {
	typ   *Type
	Props *types.Props
}

// New creates an event of type t with no properties.
func New(t *Type) *Event {
	return &Event{typ: t, Props: types.NewOnceProps()}
}

// Type returns the event's type.
func (e *Event) Type() *Type { return e.typ }

// HandlerFunc handles one event. A returned error aborts the drain.
type HandlerFunc func(*Event) error

// Handler subscribes Fn to events of Type. Handlers are compared by
// pointer, so the same *Handler must be passed to RemoveHandler.
type Handler struct {
	Name string // optional, for traces
	Type *Type
	Fn   HandlerFunc
}

// NewHandler creates a handler for events of type t.
func NewHandler(t *Type, fn HandlerFunc) *Handler {
	return &Handler{Type: t, Fn: fn}
}

// HandlerError wraps an error returned by a handler.
type HandlerError struct {
	Event   *Event
	Handler *Handler
	Err     error
}

func (e *HandlerError) Error() string {
	name := e.Handler.Name
	if name == "" {
		name = "handler"
	}
	return fmt.Sprintf("%s for event %s: %v", name, e.Event.Type(), e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// ErrReentrantDrain is returned when Drain is called from inside a handler.
var ErrReentrantDrain = errors.New("drain called while draining")

// Dispatcher owns the event queue and the subscriber list.
type Dispatcher struct {
	queue    []*Event
	handlers []*Handler
	draining bool

	// OnDispatch, if set, is called before each handler invocation.
	OnDispatch func(*Event, *Handler)
}

// NewDispatcher creates an idle dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Enqueue appends e to the tail of the queue. Legal at any time,
// including from inside a handler.
func (d *Dispatcher) Enqueue(e *Event) {
	d.queue = append(d.queue, e)
}

// AddHandler subscribes h. During a drain, h is first seen by the next
// Drain call.
func (d *Dispatcher) AddHandler(h *Handler) {
	d.handlers = append(d.handlers, h)
}

// RemoveHandler unsubscribes h. It reports whether h was subscribed.
// During a drain, h keeps receiving events until the drain finishes.
func (d *Dispatcher) RemoveHandler(h *Handler) bool {
	for i, x := range d.handlers {
		if x == h {
			d.handlers = append(d.handlers[:i:i], d.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Handlers returns the live subscriber list in registration order.
func (d *Dispatcher) Handlers() []*Handler {
	return append([]*Handler(nil), d.handlers...)
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int { return len(d.queue) }

// Draining reports whether a drain is in progress.
func (d *Dispatcher) Draining() bool { return d.draining }

// Drain pops events from the head of the queue until it is empty,
// including events enqueued by handlers along the way. Each event goes to
// every handler of its type, in registration order, taken from a single
// snapshot of the subscriber list made when Drain starts.
//
// A handler error stops the drain immediately; events still queued stay
// queued.
func (d *Dispatcher) Drain() error {
	if d.draining {
		return ErrReentrantDrain
	}
	d.draining = true
	defer func() { d.draining = false }()

	snapshot := d.Handlers()
	for len(d.queue) > 0 {
		e := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]

		for _, h := range snapshot {
			if h.Type != e.Type() {
				continue
			}
			if d.OnDispatch != nil {
				d.OnDispatch(e, h)
			}
			if err := h.Fn(e); err != nil {
				return &HandlerError{Event: e, Handler: h, Err: err}
			}
		}
	}
	return nil
}
