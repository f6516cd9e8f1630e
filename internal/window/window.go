// Package window implements the Window Tree (spec.md §4.4): hierarchy,
// stacking order, mapped state, geometry, and property storage layered on
// top of the Resource Graph's Window kind.
package window

import (
	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/resource"
)

// Class is the window's input/output class (spec.md §3).
type Class uint8

const (
	ClassInputOutput Class = 1
	ClassInputOnly   Class = 2
)

// Geometry is a window or pixmap's on-screen rectangle plus border width.
type Geometry struct {
	X, Y          int16
	Width, Height uint16
	BorderWidth   uint16
}

// PropertyValue is the stored bytes of one window property (spec.md §4.4
// ChangeProperty/GetProperty), tagged with the type atom and element format
// the client declared when it was written.
type PropertyValue struct {
	Type   atom.ID
	Format uint8 // 8, 16, or 32
	Data   []byte
}

// Window is the Window-kind payload stored in a resource.Record (spec.md §3
// "Window payload").
type Window struct {
	ID       resource.XID
	Parent   resource.XID // zero for root windows
	IsRoot   bool
	Class    Class
	Depth    uint8
	Visual   uint32
	Geometry Geometry

	Mapped            bool
	OverrideRedirect  bool
	EventMask         uint32
	DoNotPropagate    uint32
	BackingStore      uint8
	SaveUnder         bool

	// Selections records, per client, the event mask it selected on this
	// window via ChangeWindowAttributes. EventMask above is their union,
	// matching what GetWindowAttributes reports on the wire; Selections is
	// what the Event Router actually consults to fan out to the right
	// clients' send queues (spec.md §3 lists a single event_mask field, but
	// §4.7 requires delivery to "any client that has selected" a given
	// notify type — multiple clients selecting the same window cannot be
	// represented by one mask alone).
	Selections map[resource.ClientID]uint32

	// Children is the top-to-bottom stacking order; index 0 is topmost
	// (spec.md §3 invariant 3).
	Children []resource.XID

	Properties map[atom.ID]*PropertyValue

	Cursor   resource.XID // zero if none set
	Colormap resource.XID // zero if none set
}

func newWindow(id, parent resource.XID, isRoot bool, class Class, depth uint8, visual uint32, geom Geometry) *Window {
	return &Window{
		ID:         id,
		Parent:     parent,
		IsRoot:     isRoot,
		Class:      class,
		Depth:      depth,
		Visual:     visual,
		Geometry:   geom,
		Properties: make(map[atom.ID]*PropertyValue),
		Selections: make(map[resource.ClientID]uint32),
	}
}
