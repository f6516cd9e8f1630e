// Package session implements the Client Session state machine (spec.md
// §4.8): per-connection byte order, sequence counter, receive/send
// buffers, and resource-ID range.
package session

import (
	"fmt"
	"sync"

	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
)

// State is one node of the session state machine in spec.md §4.8's diagram.
type State int

const (
	Uninitialized State = iota
	AwaitingSetup
	SetupReplying
	Serving
	SendingReply
	Closing
	Closed
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case AwaitingSetup:
		return "AwaitingSetup"
	case SetupReplying:
		return "SetupReplying"
	case Serving:
		return "Serving"
	case SendingReply:
		return "SendingReply"
	case Closing:
		return "Closing"
	case Closed:
		return "Closed"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ErrInvalidTransition reports an attempted state change the machine does
// not allow.
type ErrInvalidTransition struct{ From, To State }

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("session: invalid transition %s -> %s", e.From, e.To)
}

// ErrSendQueueOverflow is a fatal per-client error (spec.md §7 "send-queue
// overflow that cannot be relieved"): the caller must close the session.
type ErrSendQueueOverflow struct{ HighWaterMark int }

func (e *ErrSendQueueOverflow) Error() string {
	return fmt.Sprintf("session: send queue exceeded high water mark %d", e.HighWaterMark)
}

// validTransitions enumerates the edges of the diagram in spec.md §4.8.
var validTransitions = map[State][]State{
	Uninitialized: {AwaitingSetup, Failed},
	AwaitingSetup: {SetupReplying, Failed, Closing},
	SetupReplying: {Serving, Failed, Closing},
	Serving:       {SendingReply, Closing},
	SendingReply:  {Serving, Closing},
	Closing:       {Closed},
}

// Session owns everything specific to one connection (spec.md §4.8 "The
// session owns...").
type Session struct {
	mu sync.Mutex

	ID       resource.ClientID
	TraceID  string
	state    State
	Order    wire.ByteOrder
	sequence uint16

	IDRange resource.ClientRange

	recvBuf []byte

	sendQueue     [][]byte
	highWaterMark int
	paused        bool
	signal        chan struct{}

	owned map[resource.XID]struct{}
}

// New creates a session in the Uninitialized state.
func New(id resource.ClientID, traceID string, idRange resource.ClientRange, highWaterMark int) *Session {
	return &Session{
		ID:            id,
		TraceID:       traceID,
		state:         Uninitialized,
		IDRange:       idRange,
		highWaterMark: highWaterMark,
		owned:         make(map[resource.XID]struct{}),
		signal:        make(chan struct{}, 1),
	}
}

// Signal reports whenever Enqueue has added at least one message, so the
// connection's writer loop can wake up and flush without polling (spec.md
// §4.9's thread-per-session model: events from other clients' requests must
// reach this socket without this client sending anything of its own).
func (s *Session) Signal() <-chan struct{} {
	return s.signal
}

// State returns the current state under lock.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to `to`, rejecting edges not in the diagram.
func (s *Session) Transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range validTransitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	// Failed is reachable from any pre-Closing state as a fatal escape hatch
	// (spec.md §7 "Fatal errors (per-client)").
	if to == Failed && s.state != Closed && s.state != Closing {
		s.state = to
		return nil
	}
	return &ErrInvalidTransition{From: s.state, To: to}
}

// NextSequence pre-increments and returns the per-client sequence counter
// (spec.md §4.6 step 1, §3 "the server increments sequence before
// processing each request").
func (s *Session) NextSequence() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return s.sequence
}

// Sequence returns the current sequence value without advancing it, used to
// stamp events queued between requests.
func (s *Session) Sequence() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// ByteOrder reports the order negotiated at handshake, so the Event Router
// can encode a wire message correctly for this specific recipient.
func (s *Session) ByteOrder() wire.ByteOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Order
}

// AppendRecv grows the receive buffer with newly read bytes.
func (s *Session) AppendRecv(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvBuf = append(s.recvBuf, b...)
}

// ConsumeRecv drops the first n bytes of the receive buffer, called once a
// full request has been framed and parsed (spec.md §4.8 "reset after each
// consumed request").
func (s *Session) ConsumeRecv(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvBuf = append([]byte{}, s.recvBuf[n:]...)
}

// RecvBuf returns the unconsumed receive buffer.
func (s *Session) RecvBuf() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recvBuf
}

// Enqueue appends a framed reply/event/error to the send queue. It returns
// ErrSendQueueOverflow once the queue exceeds the configured high-water
// mark; per spec.md §4.7 events are never dropped silently, so the caller's
// only recourse on this error is to fail the connection, not discard data.
func (s *Session) Enqueue(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendQueue = append(s.sendQueue, msg)
	select {
	case s.signal <- struct{}{}:
	default:
	}
	if len(s.sendQueue) > s.highWaterMark {
		s.paused = true
		return &ErrSendQueueOverflow{HighWaterMark: s.highWaterMark}
	}
	return nil
}

// DrainSendQueue removes and returns everything queued so far, unpausing
// intake once the queue falls back under the high-water mark (spec.md §4.7
// backpressure).
func (s *Session) DrainSendQueue() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sendQueue
	s.sendQueue = nil
	s.paused = false
	return out
}

// Paused reports whether request intake should stop because the send queue
// is backpressured.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// TrackOwned records an id this session's client now owns, for teardown.
func (s *Session) TrackOwned(id resource.XID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[id] = struct{}{}
}

// UntrackOwned forgets an id, called once it has been destroyed.
func (s *Session) UntrackOwned(id resource.XID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owned, id)
}

// OwnedIDs snapshots the resource ids this session currently owns.
func (s *Session) OwnedIDs() []resource.XID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]resource.XID, 0, len(s.owned))
	for id := range s.owned {
		out = append(out, id)
	}
	return out
}
