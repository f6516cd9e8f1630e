// Package pixmap implements the Pixmap resource kind (spec.md §3, §4.2): an
// off-screen drawable backed by the rendering backend (package backend).
package pixmap

import (
	"context"

	"github.com/rxserver/rxserver/internal/backend"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/xproto"
)

// Pixmap is the Pixmap-kind payload stored in a resource.Record.
type Pixmap struct {
	ID            resource.XID
	Drawable      resource.XID // the window/pixmap it was created relative to, for depth inheritance
	Width, Height uint16
	Depth         uint8
	BackendID     backend.ID
}

// Manager owns the Pixmap-kind subset of a resource.Graph and the backend
// surface each pixmap is materialized on.
type Manager struct {
	graph   *resource.Graph
	surface backend.Surface
}

func NewManager(g *resource.Graph, s backend.Surface) *Manager {
	return &Manager{graph: g, surface: s}
}

// Create allocates backend storage and registers a new Pixmap (spec.md §4.5
// CreatePixmap).
func (m *Manager) Create(ctx context.Context, id, drawable resource.XID, owner resource.ClientID, width, height uint16, depth uint8) (*Pixmap, error) {
	backendID, err := m.surface.CreatePixmap(ctx, int(width), int(height), int(depth))
	if err != nil {
		return nil, err
	}
	px := &Pixmap{ID: id, Drawable: drawable, Width: width, Height: height, Depth: depth, BackendID: backendID}
	if _, err := m.graph.Insert(id, resource.KindPixmap, owner, px); err != nil {
		_ = m.surface.DestroyPixmap(ctx, backendID)
		return nil, err
	}
	return px, nil
}

// Free releases the backend storage and removes the Pixmap record (spec.md
// §4.5 FreePixmap).
func (m *Manager) Free(ctx context.Context, id resource.XID) error {
	px, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := m.surface.DestroyPixmap(ctx, px.BackendID); err != nil {
		return err
	}
	_, err = m.graph.Remove(id)
	return err
}

func (m *Manager) lookup(id resource.XID) (*Pixmap, error) {
	rec, err := m.graph.Get(id, resource.KindPixmap)
	if err != nil {
		switch err.(type) {
		case *resource.ErrNotFound, *resource.ErrKindMismatch:
			return nil, xproto.NewError(xproto.ErrPixmap, uint32(id), 0, 0)
		default:
			return nil, err
		}
	}
	return rec.Payload.(*Pixmap), nil
}

// Lookup exposes Pixmap resolution to the dispatcher (e.g. GetGeometry on a
// Drawable that turns out to be a Pixmap rather than a Window).
func (m *Manager) Lookup(id resource.XID) (*Pixmap, error) { return m.lookup(id) }
