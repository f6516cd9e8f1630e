package dispatch

import (
	"github.com/rxserver/rxserver/internal/event"
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/xproto"
)

func (d *Dispatcher) createWindow(clientID resource.ClientID, sess *session.Session, r *request.CreateWindowRequest) *xproto.ProtocolError {
	if !sess.IDRange.Contains(r.WindowID) {
		return xproto.NewError(xproto.ErrIDChoice, uint32(r.WindowID), xproto.OpCreateWindow, 0)
	}
	geom := window.Geometry{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, BorderWidth: r.BorderWidth}
	w, err := d.Tree.CreateWindow(r.WindowID, r.Parent, clientID, window.Class(r.Class), r.Depth, r.Visual, geom)
	if err != nil {
		return asProtocolError(err, xproto.OpCreateWindow)
	}
	sess.TrackOwned(r.WindowID)
	if r.ValueMask != 0 {
		if err := d.Tree.ChangeAttributes(r.WindowID, clientID, r.ValueMask, r.Values); err != nil {
			return asProtocolError(err, xproto.OpCreateWindow)
		}
	}

	ev := &event.CreateNotifyEvent{
		Parent: r.Parent, Win: r.WindowID,
		X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, BorderWidth: r.BorderWidth,
		OverrideRedirect: w.OverrideRedirect,
	}
	d.Router.DeliverStructure(ev, r.WindowID, 0, xproto.EventMaskSubstructureNotify)
	return nil
}

func (d *Dispatcher) changeWindowAttributes(clientID resource.ClientID, r *request.ChangeWindowAttributesRequest) *xproto.ProtocolError {
	if err := d.Tree.ChangeAttributes(r.Window, clientID, r.ValueMask, r.Values); err != nil {
		return asProtocolError(err, xproto.OpChangeWindowAttrs)
	}
	return nil
}

func (d *Dispatcher) getWindowAttributes(clientID resource.ClientID, sess *session.Session, seq uint16, r *request.GetWindowAttributesRequest) *xproto.ProtocolError {
	attrs, err := d.Tree.GetAttributes(r.Window, clientID)
	if err != nil {
		return asProtocolError(err, xproto.OpGetWindowAttributes)
	}
	mapState := uint8(0)
	if attrs.Mapped {
		mapState = 2 // Viewable; this server does not track Unviewable (ancestor unmapped) separately
	}
	mapInstalled := uint8(0)
	if attrs.Colormap != 0 {
		mapInstalled = 1
	}
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), attrs.BackingStore, seq, 3))
	w.PutU32(attrs.Visual)
	w.PutU16(uint16(attrs.Class))
	w.PutU8(0) // bit_gravity: not tracked, see spec.md Non-goals on pixel-accurate rendering
	w.PutU8(0) // win_gravity: not tracked
	w.PutU32(0) // backing_planes: not tracked
	w.PutU32(0) // backing_pixel: not tracked
	w.PutU8(boolToU8(attrs.SaveUnder))
	w.PutU8(mapInstalled)
	w.PutU8(mapState)
	w.PutU8(boolToU8(attrs.OverrideRedirect))
	w.PutU32(uint32(attrs.Colormap))
	w.PutU32(attrs.AllEventMasks)
	w.PutU32(attrs.YourEventMask)
	w.PutU16(uint16(attrs.DoNotPropagate))
	w.Pad(2)
	_ = sess.Enqueue(w.Bytes())
	return nil
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (d *Dispatcher) destroyWindow(sess *session.Session, r *request.DestroyWindowRequest) *xproto.ProtocolError {
	destroyed, err := d.Tree.DestroyWindow(r.Window)
	if err != nil {
		return asProtocolError(err, xproto.OpDestroyWindow)
	}
	for _, id := range destroyed {
		sess.UntrackOwned(id)
		ev := &event.DestroyNotifyEvent{Event_: id, Win: id}
		d.Router.DeliverStructure(ev, id, xproto.EventMaskStructureNotify, xproto.EventMaskSubstructureNotify)
	}
	return nil
}

func (d *Dispatcher) mapWindow(r *request.MapWindowRequest) *xproto.ProtocolError {
	w, exposed, err := d.Tree.MapWindow(r.Window)
	if err != nil {
		return asProtocolError(err, xproto.OpMapWindow)
	}
	ev := &event.MapNotifyEvent{Event_: r.Window, Win: r.Window, OverrideRedirect: w.OverrideRedirect}
	d.Router.DeliverStructure(ev, r.Window, xproto.EventMaskStructureNotify, xproto.EventMaskSubstructureNotify)
	d.deliverExpose(exposed)
	return nil
}

func (d *Dispatcher) unmapWindow(r *request.UnmapWindowRequest) *xproto.ProtocolError {
	_, revealed, err := d.Tree.UnmapWindow(r.Window)
	if err != nil {
		return asProtocolError(err, xproto.OpUnmapWindow)
	}
	ev := &event.UnmapNotifyEvent{Event_: r.Window, Win: r.Window}
	d.Router.DeliverStructure(ev, r.Window, xproto.EventMaskStructureNotify, xproto.EventMaskSubstructureNotify)
	d.deliverExpose(revealed)
	return nil
}

// deliverExpose sends one count=0 Expose event per damaged window (SPEC_FULL
// §11 simplification: true multi-rectangle coalescing is not implemented,
// since this server delivers synchronously within a single process and has
// no batching window to coalesce across).
func (d *Dispatcher) deliverExpose(regions []window.ExposeRegion) {
	for _, reg := range regions {
		ev := &event.ExposeEvent{
			Win: reg.Window, X: uint16(reg.Geometry.X), Y: uint16(reg.Geometry.Y),
			Width: reg.Geometry.Width, Height: reg.Geometry.Height, Count: 0,
		}
		d.Router.DeliverStructure(ev, reg.Window, xproto.EventMaskExposure, 0)
	}
}

func (d *Dispatcher) configureWindow(r *request.ConfigureWindowRequest) *xproto.ProtocolError {
	creq := window.ConfigureRequest{Mask: window.ConfigureMask(r.ValueMask)}
	i := 0
	next := func() uint32 {
		if i >= len(r.Values) {
			return 0
		}
		v := r.Values[i]
		i++
		return v
	}
	if creq.Mask&window.ConfigX != 0 {
		creq.X = int16(next())
	}
	if creq.Mask&window.ConfigY != 0 {
		creq.Y = int16(next())
	}
	if creq.Mask&window.ConfigWidth != 0 {
		creq.Width = uint16(next())
	}
	if creq.Mask&window.ConfigHeight != 0 {
		creq.Height = uint16(next())
	}
	if creq.Mask&window.ConfigBorderWidth != 0 {
		creq.BorderWidth = uint16(next())
	}
	if creq.Mask&window.ConfigSibling != 0 {
		creq.Sibling = resource.XID(next())
	}
	if creq.Mask&window.ConfigStackMode != 0 {
		creq.StackMode = window.StackMode(next())
	}

	w, err := d.Tree.ConfigureWindow(r.Window, creq)
	if err != nil {
		return asProtocolError(err, xproto.OpConfigureWindow)
	}
	ev := &event.ConfigureNotifyEvent{
		Event_: r.Window, Win: r.Window,
		X: w.Geometry.X, Y: w.Geometry.Y, Width: w.Geometry.Width, Height: w.Geometry.Height,
		BorderWidth: w.Geometry.BorderWidth, OverrideRedirect: w.OverrideRedirect,
	}
	d.Router.DeliverStructure(ev, r.Window, xproto.EventMaskStructureNotify, xproto.EventMaskSubstructureNotify)
	return nil
}

func (d *Dispatcher) getGeometry(sess *session.Session, seq uint16, r *request.GetGeometryRequest) *xproto.ProtocolError {
	reply, err := d.Tree.GetGeometry(r.Drawable, d.RootWindow)
	if err != nil {
		if px, perr := d.Pixmaps.Lookup(r.Drawable); perr == nil {
			enqueueGeometryReply(sess, seq, d.RootWindow, 0, 0, px.Width, px.Height, 0, px.Depth)
			return nil
		}
		return asProtocolError(err, xproto.OpGetGeometry)
	}
	g := reply.Geometry
	enqueueGeometryReply(sess, seq, reply.Root, g.X, g.Y, g.Width, g.Height, g.BorderWidth, reply.Depth)
	return nil
}

func enqueueGeometryReply(sess *session.Session, seq uint16, root resource.XID, x, y int16, width, height, borderWidth uint16, depth uint8) {
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), depth, seq, 0))
	w.PutU32(uint32(root))
	w.PutI16(x)
	w.PutI16(y)
	w.PutU16(width)
	w.PutU16(height)
	w.PutU16(borderWidth)
	w.Pad(10)
	_ = sess.Enqueue(w.Bytes())
}
