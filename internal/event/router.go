package event

import (
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/xproto"
)

// Sink is anything the router can deliver an encoded event to. *session.
// Session satisfies this without an adapter: it already exposes Sequence,
// Enqueue and ByteOrder for exactly this purpose.
type Sink interface {
	Sequence() uint16
	ByteOrder() wire.ByteOrder
	Enqueue(msg []byte) error
}

// pointerGrab and keyboardGrab record an active device grab (spec.md §4.7
// "if a grab is active ... deliver to the grab window instead"). The
// distilled spec states the propagation rule but leaves grab set/release to
// the implementation; GrabPointer/GrabKeyboard opcodes mutate these fields
// under the router's own lock rather than ServerState's, since grabs are
// purely an event-delivery concern.
type pointerGrab struct {
	Owner       resource.ClientID
	GrabWindow  resource.XID
	EventMask   uint32
}

type keyboardGrab struct {
	Owner      resource.ClientID
	GrabWindow resource.XID
}

// Router fans events out to the client(s) that selected them, per the
// propagation rule for the event's category (spec.md §4.7).
type Router struct {
	tree *window.Tree

	mu      sync.RWMutex
	clients map[resource.ClientID]Sink

	focus    resource.XID
	pointer  *pointerGrab
	keyboard *keyboardGrab
}

func NewRouter(tree *window.Tree) *Router {
	return &Router{
		tree:    tree,
		clients: make(map[resource.ClientID]Sink),
	}
}

// GrabPointer installs an active pointer grab, replacing any existing one.
func (r *Router) GrabPointer(owner resource.ClientID, win resource.XID, mask uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pointer = &pointerGrab{Owner: owner, GrabWindow: win, EventMask: mask}
}

// UngrabPointer releases any active pointer grab, regardless of owner
// (spec.md §12 UngrabPointer has no "only the owner may release" wording).
func (r *Router) UngrabPointer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pointer = nil
}

// GrabKeyboard installs an active keyboard grab.
func (r *Router) GrabKeyboard(owner resource.ClientID, win resource.XID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keyboard = &keyboardGrab{Owner: owner, GrabWindow: win}
}

// UngrabKeyboard releases any active keyboard grab.
func (r *Router) UngrabKeyboard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keyboard = nil
}

// SetInputFocus records the window KeyPress/KeyRelease propagation should
// target when no keyboard grab is active (spec.md §4.7 "the focus window for
// key events").
func (r *Router) SetInputFocus(win resource.XID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focus = win
}

// InputFocus returns the current focus window.
func (r *Router) InputFocus() resource.XID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focus
}

func (r *Router) activeGrabOwner(code xproto.EventCode) (resource.ClientID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch code {
	case xproto.EvKeyPress, xproto.EvKeyRelease:
		if r.keyboard != nil {
			return r.keyboard.Owner, true
		}
	default:
		if r.pointer != nil {
			return r.pointer.Owner, true
		}
	}
	return 0, false
}

// RegisterClient makes a client reachable for delivery, called once its
// session reaches Serving (spec.md §4.8).
func (r *Router) RegisterClient(id resource.ClientID, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = sink
}

// UnregisterClient drops a client from delivery, called on teardown.
func (r *Router) UnregisterClient(id resource.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

func (r *Router) sink(id resource.ClientID) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.clients[id]
	return s, ok
}

// deliver encodes ev once per recipient (the sequence number differs per
// client) and enqueues it, fanning concurrent recipients out with a
// conc.Pool the way the rest of this codebase parallelizes independent I/O.
func (r *Router) deliver(ev Event, recipients map[resource.ClientID]uint32) {
	if len(recipients) == 0 {
		return
	}
	p := pool.New().WithErrors()
	for clientID := range recipients {
		clientID := clientID
		sink, ok := r.sink(clientID)
		if !ok {
			continue
		}
		p.Go(func() error {
			msg := ev.Encode(sink.ByteOrder(), sink.Sequence())
			return sink.Enqueue(msg)
		})
	}
	_ = p.Wait()
}

// DeliverDevice walks up from origin through ancestors (spec.md §4.7 device
// event propagation), delivering to the first ancestor (inclusive) with a
// client selecting this event code, honoring an active grab's owner if set.
// For KeyPress/KeyRelease with no active keyboard grab, origin is overridden
// by the current input focus window.
func (r *Router) DeliverDevice(ev Event, origin resource.XID) {
	code := ev.Code()
	mask := deviceEventMask(code)
	if mask == 0 {
		return
	}
	if owner, ok := r.activeGrabOwner(code); ok {
		if sink, ok := r.sink(owner); ok {
			msg := ev.Encode(sink.ByteOrder(), sink.Sequence())
			_ = sink.Enqueue(msg)
		}
		return
	}
	if code == xproto.EvKeyPress || code == xproto.EvKeyRelease {
		if focus := r.InputFocus(); focus != 0 {
			origin = focus
		}
	}
	for id := origin; id != 0; {
		w, err := r.tree.Lookup(id)
		if err != nil {
			return
		}
		if selectors := r.tree.Selectors(id, mask); len(selectors) > 0 {
			r.deliver(ev, selectors)
			return
		}
		if w.IsRoot {
			return
		}
		id = w.Parent
	}
}

// DeliverStructure implements StructureNotify/SubstructureNotify split
// (spec.md §4.7): clients that selected StructureNotify on the window itself
// receive it, and clients that selected SubstructureNotify on its parent
// receive a copy stamped with their own sequence number too.
func (r *Router) DeliverStructure(ev Event, win resource.XID, structureMask, substructureMask uint32) {
	recipients := make(map[resource.ClientID]uint32)
	for cid, m := range r.tree.Selectors(win, structureMask) {
		recipients[cid] = m
	}
	if w, err := r.tree.Lookup(win); err == nil && !w.IsRoot {
		for cid, m := range r.tree.Selectors(w.Parent, substructureMask) {
			recipients[cid] = m
		}
	}
	r.deliver(ev, recipients)
}

// DeliverProperty implements PropertyNotify selection (spec.md §4.7): any
// client that selected EventMaskPropertyChange on the window.
func (r *Router) DeliverProperty(ev Event, win resource.XID) {
	r.deliver(ev, r.tree.Selectors(win, xproto.EventMaskPropertyChange))
}

// DeliverTargeted sends ev to exactly one client, used for ClientMessage and
// the Selection events, which bypass mask-based propagation entirely (spec.md
// §4.7 "delivered directly to the named client, with no propagation").
func (r *Router) DeliverTargeted(ev Event, client resource.ClientID) {
	sink, ok := r.sink(client)
	if !ok {
		return
	}
	msg := ev.Encode(sink.ByteOrder(), sink.Sequence())
	_ = sink.Enqueue(msg)
}
