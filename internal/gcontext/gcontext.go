// Package gcontext implements the GraphicsContext resource kind (spec.md §3,
// §4.2): per-drawable rendering state (colors, function, line attributes)
// layered on the Resource Graph the same way package window layers Windows.
package gcontext

import (
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/xproto"
)

// Value mask bits for CreateGC/ChangeGC (spec.md §6 generic value-list
// encoding), core protocol order.
const (
	GCFunction         uint32 = 1 << 0
	GCPlaneMask        uint32 = 1 << 1
	GCForeground       uint32 = 1 << 2
	GCBackground       uint32 = 1 << 3
	GCLineWidth        uint32 = 1 << 4
	GCLineStyle        uint32 = 1 << 5
	GCCapStyle         uint32 = 1 << 6
	GCJoinStyle        uint32 = 1 << 7
	GCFillStyle        uint32 = 1 << 8
	GCFont             uint32 = 1 << 14
	GCSubwindowMode    uint32 = 1 << 15
	GCGraphicsExposures uint32 = 1 << 16
	GCClipXOrigin      uint32 = 1 << 17
	GCClipYOrigin      uint32 = 1 << 18
)

// GC is the GraphicsContext-kind payload stored in a resource.Record.
type GC struct {
	ID       resource.XID
	Drawable resource.XID

	Function         uint8
	PlaneMask        uint32
	Foreground       uint32
	Background       uint32
	LineWidth        uint16
	LineStyle        uint8
	CapStyle         uint8
	JoinStyle        uint8
	FillStyle        uint8
	Font             resource.XID
	SubwindowMode    uint8
	GraphicsExposures bool
	ClipXOrigin      int16
	ClipYOrigin      int16
}

func newGC(id, drawable resource.XID) *GC {
	return &GC{
		ID:                id,
		Drawable:          drawable,
		Foreground:        0,
		Background:        1,
		LineWidth:         0,
		GraphicsExposures: true,
	}
}

// Manager owns the GraphicsContext-kind subset of a resource.Graph.
type Manager struct {
	graph *resource.Graph
}

func NewManager(g *resource.Graph) *Manager { return &Manager{graph: g} }

// Create registers a new GC targeting drawable, applying any value-list
// entries present in the mask (spec.md §4.5 CreateGC value list).
func (m *Manager) Create(id, drawable resource.XID, owner resource.ClientID, mask uint32, values []uint32) (*GC, error) {
	gc := newGC(id, drawable)
	applyValues(gc, mask, values)
	if _, err := m.graph.Insert(id, resource.KindGraphicsContext, owner, gc); err != nil {
		return nil, err
	}
	if err := m.graph.AddDependent(drawable, id); err != nil {
		m.graph.Remove(id)
		return nil, err
	}
	return gc, nil
}

// Change applies a value-list update to an existing GC (spec.md §4.5
// ChangeGC).
func (m *Manager) Change(id resource.XID, mask uint32, values []uint32) (*GC, error) {
	gc, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	applyValues(gc, mask, values)
	return gc, nil
}

// Free removes a GC, detaching it from its drawable's dependents.
func (m *Manager) Free(id resource.XID) error {
	gc, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.graph.RemoveDependent(gc.Drawable, id)
	_, err = m.graph.Remove(id)
	return err
}

func (m *Manager) lookup(id resource.XID) (*GC, error) {
	rec, err := m.graph.Get(id, resource.KindGraphicsContext)
	if err != nil {
		switch err.(type) {
		case *resource.ErrNotFound, *resource.ErrKindMismatch:
			return nil, xproto.NewError(xproto.ErrGContext, uint32(id), 0, 0)
		default:
			return nil, err
		}
	}
	return rec.Payload.(*GC), nil
}

// Lookup exposes GC resolution to the dispatcher (e.g. a drawing request
// needing the GC's current Foreground color).
func (m *Manager) Lookup(id resource.XID) (*GC, error) { return m.lookup(id) }

func applyValues(gc *GC, mask uint32, values []uint32) {
	i := 0
	next := func() uint32 {
		if i >= len(values) {
			return 0
		}
		v := values[i]
		i++
		return v
	}
	for bit := 0; bit < 32; bit++ {
		m := uint32(1) << uint(bit)
		if mask&m == 0 {
			continue
		}
		v := next()
		switch m {
		case GCFunction:
			gc.Function = uint8(v)
		case GCPlaneMask:
			gc.PlaneMask = v
		case GCForeground:
			gc.Foreground = v
		case GCBackground:
			gc.Background = v
		case GCLineWidth:
			gc.LineWidth = uint16(v)
		case GCLineStyle:
			gc.LineStyle = uint8(v)
		case GCCapStyle:
			gc.CapStyle = uint8(v)
		case GCJoinStyle:
			gc.JoinStyle = uint8(v)
		case GCFillStyle:
			gc.FillStyle = uint8(v)
		case GCFont:
			gc.Font = resource.XID(v)
		case GCSubwindowMode:
			gc.SubwindowMode = uint8(v)
		case GCGraphicsExposures:
			gc.GraphicsExposures = v != 0
		case GCClipXOrigin:
			gc.ClipXOrigin = int16(v)
		case GCClipYOrigin:
			gc.ClipYOrigin = int16(v)
		}
	}
}
