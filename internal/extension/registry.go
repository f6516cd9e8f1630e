// Package extension implements the ExtensionRegistry (spec.md §6): a name
// to {major_opcode, first_event, first_error} map consulted by
// QueryExtension/ListExtensions and by the dispatcher when routing opcodes
// >= 128.
package extension

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Descriptor is the reply shape for QueryExtension.
type Descriptor struct {
	Name        string
	MajorOpcode byte
	FirstEvent  byte
	FirstError  byte
	// TraceID is an opaque per-registration correlation id surfaced only in
	// server logs, grounded in the teacher's pervasive uuid.New().String()
	// request-scoped ids (api/pkg/server handlers).
	TraceID string
}

// Registry is the process-wide extension table, populated at startup before
// any client connects and read thereafter.
type Registry struct {
	mu   sync.RWMutex
	byName map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds an extension's opcode range. It is a startup-time operation;
// the dispatcher never registers extensions mid-session.
func (r *Registry) Register(name string, majorOpcode, firstEvent, firstError byte) Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := Descriptor{
		Name:        name,
		MajorOpcode: majorOpcode,
		FirstEvent:  firstEvent,
		FirstError:  firstError,
		TraceID:     uuid.New().String(),
	}
	r.byName[name] = d
	return d
}

// Query implements QueryExtension(name) (spec.md §6).
func (r *Registry) Query(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// List implements ListExtensions: the set of registered extension names, in
// a stable (sorted) order for reproducible replies.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByMajorOpcode resolves the extension owning a major opcode >= 128, for
// dispatch routing (spec.md §4.5 "yield a ParsedRequest::Extension... that
// the dispatcher routes through the extension registry").
func (r *Registry) ByMajorOpcode(opcode byte) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.byName {
		if d.MajorOpcode == opcode {
			return d, true
		}
	}
	return Descriptor{}, false
}
