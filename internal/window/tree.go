package window

import (
	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/xproto"
)

// attributeOrder is the fixed bit order ChangeWindowAttributes' value list
// follows (spec.md §4.5 generic value-list encoding: one value per set bit,
// low bit first).
var attributeOrder = []uint32{
	xproto.CWBackPixmap, xproto.CWBackPixel, xproto.CWBorderPixmap, xproto.CWBorderPixel,
	xproto.CWBitGravity, xproto.CWWinGravity, xproto.CWBackingStore, xproto.CWBackingPlanes,
	xproto.CWBackingPixel, xproto.CWOverrideRedirect, xproto.CWSaveUnder, xproto.CWEventMask,
	xproto.CWDontPropagate, xproto.CWColormap, xproto.CWCursor,
}

const maxBorderWidth = 1000

// Tree owns the Window-kind subset of a resource.Graph and enforces the
// hierarchy invariants of spec.md §3: acyclic parent-of, children lists
// matching stacking order, and innermost-first subtree teardown. It holds no
// lock of its own: every method here mutates *Window payloads returned by
// Graph.Get directly, so callers must hold ServerState's single exclusive
// lock for the duration of the call, per spec.md §5's serialization contract
// ("no other handler observes an intermediate state"). That lock is acquired
// once per request in server.Core, around the whole Dispatcher.Dispatch
// call, not here.
type Tree struct {
	graph *resource.Graph
	atoms *atom.Table
	roots map[resource.XID]struct{}
}

// NewTree builds a Tree view over an existing resource graph and atom table.
func NewTree(g *resource.Graph, a *atom.Table) *Tree {
	return &Tree{graph: g, atoms: a, roots: make(map[resource.XID]struct{})}
}

// window resolves id to its Window payload. The returned error's MajorOpcode
// is left zero — the dispatcher fills it in from the request it was handling
// when it turns this into a wire error reply (spec.md §4.5: major/minor
// opcode and sequence are dispatch-time concerns, not lookup-time ones).
func (t *Tree) window(id resource.XID) (*Window, error) {
	rec, err := t.graph.Get(id, resource.KindWindow)
	if err != nil {
		switch err.(type) {
		case *resource.ErrNotFound, *resource.ErrKindMismatch:
			return nil, xproto.NewError(xproto.ErrWindow, uint32(id), 0, 0)
		default:
			return nil, err
		}
	}
	return rec.Payload.(*Window), nil
}

// CreateRoot registers a root window with no parent; called once per screen
// during server startup (spec.md §3 invariant 1).
func (t *Tree) CreateRoot(id resource.XID, owner resource.ClientID, depth uint8, visual uint32, geom Geometry) (*Window, error) {
	w := newWindow(id, 0, true, ClassInputOutput, depth, visual, geom)
	w.Mapped = true
	if _, err := t.graph.Insert(id, resource.KindWindow, owner, w); err != nil {
		return nil, err
	}
	t.roots[id] = struct{}{}
	return w, nil
}

// CreateWindow implements spec.md §4.4 CreateWindow: parent must exist,
// id must be unused, and width/height/depth/class/border_width must satisfy
// the stated bounds. The new window is appended at the top of its parent's
// stack and starts unmapped.
func (t *Tree) CreateWindow(id, parent resource.XID, owner resource.ClientID, class Class, depth uint8, visual uint32, geom Geometry) (*Window, error) {
	parentWin, err := t.window(parent)
	if err != nil {
		return nil, xproto.NewError(xproto.ErrWindow, uint32(parent), xproto.OpCreateWindow, 0)
	}
	if geom.Width == 0 || geom.Height == 0 || depth == 0 {
		return nil, xproto.NewError(xproto.ErrValue, 0, xproto.OpCreateWindow, 0)
	}
	if class != ClassInputOutput && class != ClassInputOnly {
		return nil, xproto.NewError(xproto.ErrValue, uint32(class), xproto.OpCreateWindow, 0)
	}
	if geom.BorderWidth > maxBorderWidth {
		return nil, xproto.NewError(xproto.ErrValue, uint32(geom.BorderWidth), xproto.OpCreateWindow, 0)
	}

	w := newWindow(id, parent, false, class, depth, visual, geom)
	if _, err := t.graph.Insert(id, resource.KindWindow, owner, w); err != nil {
		return nil, xproto.NewError(xproto.ErrIDChoice, uint32(id), xproto.OpCreateWindow, 0)
	}
	if err := t.graph.AddDependent(parent, id); err != nil {
		return nil, err
	}
	parentWin.Children = append([]resource.XID{id}, parentWin.Children...)
	return w, nil
}

// DestroyWindow implements spec.md §4.4 DestroyWindow and §3 invariant 4:
// the subtree is torn down innermost-first, in reverse stacking order. It
// returns the ids destroyed, innermost-first, so callers can emit
// DestroyNotify per window in that order.
func (t *Tree) DestroyWindow(id resource.XID) ([]resource.XID, error) {
	w, err := t.window(id)
	if err != nil {
		return nil, err
	}
	if w.IsRoot {
		return nil, xproto.NewError(xproto.ErrAccess, uint32(id), xproto.OpDestroyWindow, 0)
	}

	order := t.subtreePostOrder(id)
	for _, cid := range order {
		child, err := t.window(cid)
		if err != nil {
			continue
		}
		t.graph.RemoveDependent(child.Parent, cid)
		if _, err := t.graph.Remove(cid); err != nil {
			return nil, err
		}
	}
	if parent, perr := t.window(w.Parent); perr == nil {
		parent.Children = removeXID(parent.Children, id)
	}
	return order, nil
}

// subtreePostOrder returns id's descendants (including id) such that every
// child appears before its parent, and siblings appear in reverse stacking
// order within that constraint — i.e. innermost-first overall.
func (t *Tree) subtreePostOrder(id resource.XID) []resource.XID {
	w, err := t.window(id)
	if err != nil {
		return nil
	}
	var out []resource.XID
	for _, child := range w.Children {
		out = append(out, t.subtreePostOrder(child)...)
	}
	out = append(out, id)
	return out
}

func removeXID(list []resource.XID, target resource.XID) []resource.XID {
	out := list[:0]
	for _, id := range list {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// ExposeRegion is a damaged rectangle queued for Expose delivery, computed
// by MapWindow and UnmapWindow when they reveal screen area (spec.md §4.4
// "Emits"). ConfigureWindow computes no exposure regions.
type ExposeRegion struct {
	Window resource.XID
	Geometry
}

// ancestorsMapped reports whether every ancestor of w (not including w
// itself) is mapped, which together with w.Mapped determines visibility
// (spec.md §3 invariant 5).
func (t *Tree) ancestorsMapped(w *Window) bool {
	for cur := w; cur.Parent != 0; {
		parent, err := t.window(cur.Parent)
		if err != nil {
			return false
		}
		if !parent.Mapped {
			return false
		}
		cur = parent
	}
	return true
}

// MapWindow implements spec.md §4.4 MapWindow.
func (t *Tree) MapWindow(id resource.XID) (*Window, []ExposeRegion, error) {
	w, err := t.window(id)
	if err != nil {
		return nil, nil, err
	}
	w.Mapped = true
	var exposed []ExposeRegion
	if t.ancestorsMapped(w) {
		exposed = append(exposed, ExposeRegion{Window: id, Geometry: w.Geometry})
	}
	return w, exposed, nil
}

// UnmapWindow implements spec.md §4.4 UnmapWindow, returning the siblings
// whose area this window's removal reveals (those geometrically overlapping
// it, lower in the parent's stack).
func (t *Tree) UnmapWindow(id resource.XID) (*Window, []ExposeRegion, error) {
	w, err := t.window(id)
	if err != nil {
		return nil, nil, err
	}
	w.Mapped = false
	var revealed []ExposeRegion
	if parent, perr := t.window(w.Parent); perr == nil {
		below := false
		for _, sib := range parent.Children {
			if !below {
				if sib == id {
					below = true
				}
				continue
			}
			sw, err := t.window(sib)
			if err != nil || !sw.Mapped {
				continue
			}
			if geometryIntersects(w.Geometry, sw.Geometry) {
				revealed = append(revealed, ExposeRegion{Window: sib, Geometry: sw.Geometry})
			}
		}
	}
	return w, revealed, nil
}

// ConfigureMask selects which ConfigureWindow fields are present in a
// request (spec.md §4.4 "value-mask selects subset of...").
type ConfigureMask uint16

const (
	ConfigX ConfigureMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorderWidth
	ConfigSibling
	ConfigStackMode
)

// StackMode is the ConfigureWindow stacking directive (spec.md §4.4).
type StackMode uint8

const (
	StackAbove StackMode = iota
	StackBelow
	StackTopIf
	StackBottomIf
	StackOpposite
)

// ConfigureRequest carries the subset of fields a ConfigureWindow request
// set in its value-mask.
type ConfigureRequest struct {
	Mask        ConfigureMask
	X, Y        int16
	Width, Height, BorderWidth uint16
	Sibling     resource.XID
	StackMode   StackMode
}

// ConfigureWindow implements spec.md §4.4 ConfigureWindow: geometry fields
// are applied first, then any stacking change.
func (t *Tree) ConfigureWindow(id resource.XID, req ConfigureRequest) (*Window, error) {
	w, err := t.window(id)
	if err != nil {
		return nil, err
	}
	if req.Mask&ConfigWidth != 0 && req.Width == 0 {
		return nil, xproto.NewError(xproto.ErrValue, 0, xproto.OpConfigureWindow, 0)
	}
	if req.Mask&ConfigHeight != 0 && req.Height == 0 {
		return nil, xproto.NewError(xproto.ErrValue, 0, xproto.OpConfigureWindow, 0)
	}
	if req.Mask&ConfigX != 0 {
		w.Geometry.X = req.X
	}
	if req.Mask&ConfigY != 0 {
		w.Geometry.Y = req.Y
	}
	if req.Mask&ConfigWidth != 0 {
		w.Geometry.Width = req.Width
	}
	if req.Mask&ConfigHeight != 0 {
		w.Geometry.Height = req.Height
	}
	if req.Mask&ConfigBorderWidth != 0 {
		w.Geometry.BorderWidth = req.BorderWidth
	}

	if req.Mask&ConfigStackMode != 0 {
		if err := t.restack(w, req); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (t *Tree) restack(w *Window, req ConfigureRequest) error {
	parent, err := t.window(w.Parent)
	if err != nil {
		return xproto.NewError(xproto.ErrMatch, uint32(w.ID), xproto.OpConfigureWindow, 0)
	}

	var sibling resource.XID
	if req.Mask&ConfigSibling != 0 {
		sibling = req.Sibling
		found := false
		for _, c := range parent.Children {
			if c == sibling {
				found = true
				break
			}
		}
		if !found {
			return xproto.NewError(xproto.ErrMatch, uint32(sibling), xproto.OpConfigureWindow, 0)
		}
	}

	siblings := removeXID(append([]resource.XID{}, parent.Children...), w.ID)

	switch req.StackMode {
	case StackAbove:
		parent.Children = insertRelative(siblings, w.ID, sibling, true)
	case StackBelow:
		parent.Children = insertRelative(siblings, w.ID, sibling, false)
	case StackTopIf:
		// Placed at top if some sibling (or the named one) occludes w.
		if t.anyOccludes(siblings, sibling, w.ID, true) {
			parent.Children = toTop(siblings, w.ID)
		} else {
			parent.Children = toBottom(siblings, w.ID)
		}
	case StackBottomIf:
		// Placed at bottom if w occludes some sibling (or the named one).
		if t.anyOccludes(siblings, sibling, w.ID, false) {
			parent.Children = toBottom(siblings, w.ID)
		} else {
			parent.Children = toTop(siblings, w.ID)
		}
	case StackOpposite:
		switch {
		case sibling != 0 && t.occludes(sibling, w.ID):
			parent.Children = insertRelative(siblings, w.ID, sibling, true)
		case sibling != 0 && t.occludes(w.ID, sibling):
			parent.Children = insertRelative(siblings, w.ID, sibling, false)
		default:
			parent.Children = toTop(siblings, w.ID)
		}
	}
	return nil
}

// anyOccludes reports whether, with w reinserted into siblings, w would be
// occluded-by (coverer=true) or would occlude (coverer=false) either the
// named sibling (if nonzero) or any sibling in the set.
func (t *Tree) anyOccludes(siblings []resource.XID, named, w resource.XID, coverer bool) bool {
	check := func(other resource.XID) bool {
		if coverer {
			return t.occludes(other, w)
		}
		return t.occludes(w, other)
	}
	if named != 0 {
		return check(named)
	}
	for _, s := range siblings {
		if check(s) {
			return true
		}
	}
	return false
}

func toTop(siblings []resource.XID, id resource.XID) []resource.XID {
	return append([]resource.XID{id}, siblings...)
}

func toBottom(siblings []resource.XID, id resource.XID) []resource.XID {
	out := make([]resource.XID, len(siblings), len(siblings)+1)
	copy(out, siblings)
	return append(out, id)
}

// insertRelative places id just above (above=true) or below (above=false)
// sibling in the stack; if sibling is zero it places id at the
// corresponding end (spec.md §4.4 "Above places just above the specified
// sibling (or topmost if no sibling)").
func insertRelative(siblings []resource.XID, id, sibling resource.XID, above bool) []resource.XID {
	if sibling == 0 {
		if above {
			return append([]resource.XID{id}, siblings...)
		}
		return append(siblings, id)
	}
	out := make([]resource.XID, 0, len(siblings)+1)
	for _, s := range siblings {
		if s == sibling && above {
			out = append(out, id)
		}
		out = append(out, s)
		if s == sibling && !above {
			out = append(out, id)
		}
	}
	return out
}

// occludes reports whether a, placed above b in stacking order, would
// geometrically cover part of b (spec.md §4.4 occlusion test).
func (t *Tree) occludes(a, b resource.XID) bool {
	wa, err := t.window(a)
	if err != nil {
		return false
	}
	wb, err := t.window(b)
	if err != nil {
		return false
	}
	return geometryIntersects(wa.Geometry, wb.Geometry)
}

func geometryIntersects(a, b Geometry) bool {
	ax2, ay2 := int32(a.X)+int32(a.Width), int32(a.Y)+int32(a.Height)
	bx2, by2 := int32(b.X)+int32(b.Width), int32(b.Y)+int32(b.Height)
	return int32(a.X) < bx2 && ax2 > int32(b.X) && int32(a.Y) < by2 && ay2 > int32(b.Y)
}

// GeometryReply is the payload of a GetGeometry reply (spec.md §4.4).
type GeometryReply struct {
	Root resource.XID
	Geometry
	Depth uint8
}

// GetGeometry implements spec.md §4.4 GetGeometry for a window drawable.
func (t *Tree) GetGeometry(id resource.XID, root resource.XID) (GeometryReply, error) {
	w, err := t.window(id)
	if err != nil {
		return GeometryReply{}, err
	}
	return GeometryReply{Root: root, Geometry: w.Geometry, Depth: w.Depth}, nil
}

// ChangeMode selects Replace/Prepend/Append semantics for ChangeProperty
// (spec.md §4.4).
type ChangeMode uint8

const (
	PropReplace ChangeMode = 0
	PropPrepend ChangeMode = 1
	PropAppend  ChangeMode = 2
)

// ChangeProperty implements spec.md §4.4 ChangeProperty: atom and type atom
// must already exist, format must be 8/16/32.
func (t *Tree) ChangeProperty(id resource.XID, name, typ atom.ID, format uint8, mode ChangeMode, data []byte) error {
	w, err := t.window(id)
	if err != nil {
		return err
	}
	if format != 8 && format != 16 && format != 32 {
		return xproto.NewError(xproto.ErrValue, uint32(format), xproto.OpChangeProperty, 0)
	}
	if !t.atoms.Exists(name) {
		return xproto.NewError(xproto.ErrAtom, uint32(name), xproto.OpChangeProperty, 0)
	}
	if !t.atoms.Exists(typ) {
		return xproto.NewError(xproto.ErrAtom, uint32(typ), xproto.OpChangeProperty, 0)
	}

	existing, ok := w.Properties[name]
	switch mode {
	case PropReplace:
		w.Properties[name] = &PropertyValue{Type: typ, Format: format, Data: append([]byte{}, data...)}
	case PropPrepend:
		if !ok {
			w.Properties[name] = &PropertyValue{Type: typ, Format: format, Data: append([]byte{}, data...)}
			return nil
		}
		if existing.Type != typ || existing.Format != format {
			return xproto.NewError(xproto.ErrMatch, uint32(name), xproto.OpChangeProperty, 0)
		}
		existing.Data = append(append([]byte{}, data...), existing.Data...)
	case PropAppend:
		if !ok {
			w.Properties[name] = &PropertyValue{Type: typ, Format: format, Data: append([]byte{}, data...)}
			return nil
		}
		if existing.Type != typ || existing.Format != format {
			return xproto.NewError(xproto.ErrMatch, uint32(name), xproto.OpChangeProperty, 0)
		}
		existing.Data = append(existing.Data, data...)
	}
	return nil
}

// GetProperty implements spec.md §4.4 GetProperty.
func (t *Tree) GetProperty(id resource.XID, name atom.ID) (*PropertyValue, error) {
	w, err := t.window(id)
	if err != nil {
		return nil, err
	}
	return w.Properties[name], nil
}

// DeleteProperty removes a property outright, the way GetProperty's Delete
// flag does once the dispatcher has determined the whole value was returned
// (spec.md §4.4). A name absent from Properties is a silent no-op, matching
// the core DeleteProperty request's own idempotence.
func (t *Tree) DeleteProperty(id resource.XID, name atom.ID) error {
	w, err := t.window(id)
	if err != nil {
		return err
	}
	delete(w.Properties, name)
	return nil
}

// Lookup exposes window resolution to other packages (the Event Router
// walking ancestors, the dispatcher attaching a reply's root window).
func (t *Tree) Lookup(id resource.XID) (*Window, error) {
	return t.window(id)
}

// Select records a client's event mask for a window, called by the
// ChangeWindowAttributes handler, and recomputes the aggregate EventMask
// field GetWindowAttributes reports.
func (t *Tree) Select(id resource.XID, client resource.ClientID, mask uint32) error {
	w, err := t.window(id)
	if err != nil {
		return err
	}
	if mask == 0 {
		delete(w.Selections, client)
	} else {
		w.Selections[client] = mask
	}
	var union uint32
	for _, m := range w.Selections {
		union |= m
	}
	w.EventMask = union
	return nil
}

// ChangeAttributes implements spec.md §4.4/§6 ChangeWindowAttributes: applies
// the subset of fields named in valueMask, in the fixed bit order the wire
// value-list follows. The only fields this server tracks are OverrideRedirect,
// SaveUnder, BackingStore, Colormap, Cursor, per-client EventMask (via
// Select), and the per-window DoNotPropagate — background/border pixmaps, bit/win gravity,
// and backing-planes/pixel are accepted (consuming their value-list slot) but
// not stored, matching spec.md's Non-goals around pixel-accurate rendering.
func (t *Tree) ChangeAttributes(id resource.XID, client resource.ClientID, valueMask uint32, values []uint32) error {
	w, err := t.window(id)
	if err != nil {
		return err
	}
	i := 0
	for _, bit := range attributeOrder {
		if valueMask&bit == 0 {
			continue
		}
		if i >= len(values) {
			return xproto.NewError(xproto.ErrLength, 0, xproto.OpChangeWindowAttrs, 0)
		}
		v := values[i]
		i++
		switch bit {
		case xproto.CWOverrideRedirect:
			w.OverrideRedirect = v != 0
		case xproto.CWSaveUnder:
			w.SaveUnder = v != 0
		case xproto.CWBackingStore:
			w.BackingStore = uint8(v)
		case xproto.CWColormap:
			w.Colormap = resource.XID(v)
		case xproto.CWCursor:
			w.Cursor = resource.XID(v)
		case xproto.CWEventMask:
			if err := t.Select(id, client, v); err != nil {
				return err
			}
		case xproto.CWDontPropagate:
			w.DoNotPropagate = v
		}
	}
	return nil
}

// Attributes is the payload of a GetWindowAttributes reply (spec.md §4.4).
type Attributes struct {
	Class            Class
	Visual           uint32
	Mapped           bool
	OverrideRedirect bool
	BackingStore     uint8
	SaveUnder        bool
	Colormap         resource.XID
	AllEventMasks    uint32
	YourEventMask    uint32
	DoNotPropagate   uint32
}

// GetAttributes implements spec.md §4.4/§6 GetWindowAttributes.
func (t *Tree) GetAttributes(id resource.XID, client resource.ClientID) (Attributes, error) {
	w, err := t.window(id)
	if err != nil {
		return Attributes{}, err
	}
	return Attributes{
		Class: w.Class, Visual: w.Visual, Mapped: w.Mapped,
		OverrideRedirect: w.OverrideRedirect, BackingStore: w.BackingStore, SaveUnder: w.SaveUnder,
		Colormap: w.Colormap, AllEventMasks: w.EventMask, YourEventMask: w.Selections[client],
		DoNotPropagate: w.DoNotPropagate,
	}, nil
}

// Selectors returns the clients that have selected at least one bit in mask
// on window id, along with exactly the bits each selected.
func (t *Tree) Selectors(id resource.XID, mask uint32) map[resource.ClientID]uint32 {
	w, err := t.window(id)
	if err != nil {
		return nil
	}
	out := make(map[resource.ClientID]uint32)
	for client, sel := range w.Selections {
		if sel&mask != 0 {
			out[client] = sel
		}
	}
	return out
}
