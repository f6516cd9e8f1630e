package resource

import (
	"fmt"
	"sync"

	"github.com/rxserver/rxserver/internal/xproto"
)

// ErrKindMismatch wraps ErrorCode-bearing lookups where an id resolves to a
// different kind than the caller expected (spec.md §4.2).
type ErrKindMismatch struct {
	Want, Got Kind
}

func (e *ErrKindMismatch) Error() string {
	return fmt.Sprintf("resource: id is a %s, not a %s", e.Got, e.Want)
}

// ErrNotFound reports that no resource exists for an id.
type ErrNotFound struct{ ID XID }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("resource: no resource for id %d", e.ID) }

// ErrIDInUse reports insert() called with an id already occupied.
type ErrIDInUse struct{ ID XID }

func (e *ErrIDInUse) Error() string { return fmt.Sprintf("resource: id %d already in use", e.ID) }

// ErrIDOutOfRange reports an id outside the owner's allocated client range
// and outside the server-reserved range.
type ErrIDOutOfRange struct{ ID XID }

func (e *ErrIDOutOfRange) Error() string {
	return fmt.Sprintf("resource: id %d is outside the client's allocated range", e.ID)
}

// Record is one entry of the shared registry (spec.md §4.2).
type Record struct {
	ID         XID
	Kind       Kind
	Owner      ClientID
	Shared     bool // true once a shareable resource has been referenced by a non-owner; informational only
	Dependents map[XID]struct{}
	Payload    any
}

// Graph is the process-wide, typed registry of server resources. mu guards
// the graph's own maps for the duration of each method call; serializing a
// whole handler is the job of the server-state lock held around Dispatch.
type Graph struct {
	mu      sync.RWMutex
	records map[XID]*Record
	owned   map[ClientID]map[XID]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		records: make(map[XID]*Record),
		owned:   make(map[ClientID]map[XID]struct{}),
	}
}

// Insert registers a new resource. It fails with ErrIDInUse if id is taken.
// It does not check id against owner's range: the caller is responsible for
// checking that via ClientRange.Contains before calling Insert (spec.md §4.2).
func (g *Graph) Insert(id XID, kind Kind, owner ClientID, payload any) (*Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.records[id]; exists {
		return nil, &ErrIDInUse{ID: id}
	}
	rec := &Record{
		ID:         id,
		Kind:       kind,
		Owner:      owner,
		Dependents: make(map[XID]struct{}),
		Payload:    payload,
	}
	g.records[id] = rec
	if g.owned[owner] == nil {
		g.owned[owner] = make(map[XID]struct{})
	}
	g.owned[owner][id] = struct{}{}
	return rec, nil
}

// Get resolves id, failing with ErrNotFound or ErrKindMismatch if the record
// exists but is of a different kind than expected.
func (g *Graph) Get(id XID, expectKind Kind) (*Record, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.records[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	if rec.Kind != expectKind {
		return nil, &ErrKindMismatch{Want: expectKind, Got: rec.Kind}
	}
	return rec, nil
}

// GetAny resolves id regardless of kind, used by drawable accessors that
// accept either a Window or a Pixmap (spec.md §4.5, Drawable error).
func (g *Graph) GetAny(id XID) (*Record, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.records[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	return rec, nil
}

// AddDependent records that dependentID's existence requires id to exist
// (e.g. a child window, or a GC targeting a drawable), spec.md §4.2.
func (g *Graph) AddDependent(id, dependentID XID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.records[id]
	if !ok {
		return &ErrNotFound{ID: id}
	}
	rec.Dependents[dependentID] = struct{}{}
	return nil
}

// RemoveDependent undoes AddDependent; it is a no-op if id or dependentID is
// already gone.
func (g *Graph) RemoveDependent(id, dependentID XID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if rec, ok := g.records[id]; ok {
		delete(rec.Dependents, dependentID)
	}
}

// Remove detaches id from its owner's set and returns the removed record.
// It does not itself cascade to dependents or kind-specific subtrees —
// window subtree cascading lives in package window, which calls Remove once
// per window in the innermost-first order it computes (spec.md §3 invariant
// 4, §4.2 "removal semantics honor cleanup priority").
func (g *Graph) Remove(id XID) (*Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.records[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	delete(g.records, id)
	if set, ok := g.owned[rec.Owner]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(g.owned, rec.Owner)
		}
	}
	return rec, nil
}

// IterOwnedBy returns a snapshot of the ids a client owns, for teardown
// (spec.md §4.2 iter_owned_by).
func (g *Graph) IterOwnedBy(owner ClientID) []XID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.owned[owner]
	out := make([]XID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Exists reports whether id is currently registered, of any kind.
func (g *Graph) Exists(id XID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.records[id]
	return ok
}

// KindError maps a resource Kind to the on-protocol error code raised when
// an accessor of that kind misses (spec.md §7 "Missing resource of expected
// kind").
func KindError(k Kind) xproto.ErrorCode {
	switch k {
	case KindWindow:
		return xproto.ErrWindow
	case KindPixmap:
		return xproto.ErrPixmap
	case KindGraphicsContext:
		return xproto.ErrGContext
	case KindFont:
		return xproto.ErrFont
	case KindCursor:
		return xproto.ErrCursor
	case KindColormap:
		return xproto.ErrColormap
	default:
		return xproto.ErrImplementation
	}
}
