// Package atom implements the process-global, bidirectional name<->ID
// intern table shared by every client (spec.md §4.3).
package atom

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// ID is a 32-bit atom identifier, a distinct space from resource XIDs
// (spec.md §3).
type ID uint32

// None is the reply Table.Intern returns for intern(name, only_if_exists=true)
// on a name that has never been interned (spec.md §4.3).
const None ID = 0

const (
	minNameLen = 1
	maxNameLen = 255
)

// ErrInvalidName reports a name outside the 1-255 byte length bound
// (spec.md §3 Atom record invariants).
type ErrInvalidName struct{ Name string }

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("atom: invalid name length %d", len(e.Name))
}

// ErrUnknownAtom reports name_of(id) on an id that was never interned.
type ErrUnknownAtom struct{ ID ID }

func (e *ErrUnknownAtom) Error() string { return fmt.Sprintf("atom: unknown atom %d", e.ID) }

// Table is the name<->ID intern table. It is read on essentially every
// ChangeProperty/GetProperty/InternAtom across every client and written only
// when a genuinely new name is interned, so — unlike the rest of the
// server's registries, which follow the teacher's plain sync.RWMutex+map
// idiom (api/pkg/server/connman) — it uses a lock-striped xsync.MapOf in
// both directions to avoid funneling unrelated clients' property reads
// through one global mutex (SPEC_FULL.md §11).
type Table struct {
	byName *xsync.MapOf[string, ID]
	byID   *xsync.MapOf[ID, string]
	nextID ID // guarded by allocMu
	allocMu chan struct{}
}

// NewTable builds a table preloaded with the 68 predefined atoms
// (spec.md §4.3).
func NewTable() *Table {
	t := &Table{
		byName:  xsync.NewMapOf[string, ID](),
		byID:    xsync.NewMapOf[ID, string](),
		allocMu: make(chan struct{}, 1),
	}
	for i, name := range predefinedNames {
		id := ID(i + 1)
		t.byName.Store(name, id)
		t.byID.Store(id, name)
	}
	t.nextID = ID(len(predefinedNames) + 1)
	t.allocMu <- struct{}{}
	return t
}

// Intern returns the ID for name, allocating a new one unless onlyIfExists
// is set and name has never been seen, in which case it returns None
// (spec.md §4.3).
func (t *Table) Intern(name string, onlyIfExists bool) (ID, error) {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return 0, &ErrInvalidName{Name: name}
	}
	if id, ok := t.byName.Load(name); ok {
		return id, nil
	}
	if onlyIfExists {
		return None, nil
	}

	<-t.allocMu
	defer func() { t.allocMu <- struct{}{} }()

	// Re-check under the allocation gate: another goroutine may have
	// interned the same name between the optimistic Load above and here.
	if id, ok := t.byName.Load(name); ok {
		return id, nil
	}
	id := t.nextID
	t.nextID++
	t.byName.Store(name, id)
	t.byID.Store(id, name)
	return id, nil
}

// NameOf resolves an atom ID back to its name (spec.md §4.3 name_of).
func (t *Table) NameOf(id ID) (string, error) {
	name, ok := t.byID.Load(id)
	if !ok {
		return "", &ErrUnknownAtom{ID: id}
	}
	return name, nil
}

// Exists reports whether id has been interned.
func (t *Table) Exists(id ID) bool {
	_, ok := t.byID.Load(id)
	return ok
}
