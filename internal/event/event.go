// Package event implements the Event Router (spec.md §4.7): pure event
// selection and enqueue, applying the X11 propagation rule per event
// category and delivering FIFO into each selecting client's send queue.
package event

import (
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// Event is anything the router can encode and deliver. Window is the event's
// subject window, consulted during propagation; it is not necessarily the
// window the event is finally delivered about (e.g. SubstructureNotify
// delivers a child's event to a parent's selectors).
type Event interface {
	Code() xproto.EventCode
	Window() resource.XID
	Encode(order wire.ByteOrder, sequence uint16) []byte
}

func fixed32(order wire.ByteOrder, code xproto.EventCode, detail byte, sequence uint16, fill func(w *wire.Writer)) []byte {
	w := wire.NewWriter(order)
	w.PutU8(byte(code))
	w.PutU8(detail)
	w.PutU16(sequence)
	fill(w)
	for len(w.Bytes()) < 32 {
		w.PutU8(0)
	}
	return w.Bytes()
}

// CreateNotifyEvent is opcode/event-code 16 (spec.md §4.4 CreateWindow "Emits").
type CreateNotifyEvent struct {
	Parent, Win resource.XID
	X, Y        int16
	Width, Height, BorderWidth uint16
	OverrideRedirect bool
}

func (e *CreateNotifyEvent) Code() xproto.EventCode { return xproto.EvCreateNotify }
func (e *CreateNotifyEvent) Window() resource.XID   { return e.Win }
func (e *CreateNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvCreateNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Parent))
		w.PutU32(uint32(e.Win))
		w.PutI16(e.X)
		w.PutI16(e.Y)
		w.PutU16(e.Width)
		w.PutU16(e.Height)
		w.PutU16(e.BorderWidth)
		or := byte(0)
		if e.OverrideRedirect {
			or = 1
		}
		w.PutU8(or)
	})
}

// DestroyNotifyEvent is event code 17.
type DestroyNotifyEvent struct{ Event_, Win resource.XID }

func (e *DestroyNotifyEvent) Code() xproto.EventCode { return xproto.EvDestroyNotify }
func (e *DestroyNotifyEvent) Window() resource.XID   { return e.Win }
func (e *DestroyNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvDestroyNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Event_))
		w.PutU32(uint32(e.Win))
	})
}

// UnmapNotifyEvent is event code 18.
type UnmapNotifyEvent struct {
	Event_, Win     resource.XID
	FromConfigure bool
}

func (e *UnmapNotifyEvent) Code() xproto.EventCode { return xproto.EvUnmapNotify }
func (e *UnmapNotifyEvent) Window() resource.XID   { return e.Win }
func (e *UnmapNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvUnmapNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Event_))
		w.PutU32(uint32(e.Win))
		fc := byte(0)
		if e.FromConfigure {
			fc = 1
		}
		w.PutU8(fc)
	})
}

// MapNotifyEvent is event code 19.
type MapNotifyEvent struct {
	Event_, Win      resource.XID
	OverrideRedirect bool
}

func (e *MapNotifyEvent) Code() xproto.EventCode { return xproto.EvMapNotify }
func (e *MapNotifyEvent) Window() resource.XID   { return e.Win }
func (e *MapNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvMapNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Event_))
		w.PutU32(uint32(e.Win))
		or := byte(0)
		if e.OverrideRedirect {
			or = 1
		}
		w.PutU8(or)
	})
}

// ConfigureNotifyEvent is event code 22.
type ConfigureNotifyEvent struct {
	Event_, Win, AboveSibling resource.XID
	X, Y                      int16
	Width, Height, BorderWidth uint16
	OverrideRedirect           bool
}

func (e *ConfigureNotifyEvent) Code() xproto.EventCode { return xproto.EvConfigureNotify }
func (e *ConfigureNotifyEvent) Window() resource.XID   { return e.Win }
func (e *ConfigureNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvConfigureNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Event_))
		w.PutU32(uint32(e.Win))
		w.PutU32(uint32(e.AboveSibling))
		w.PutI16(e.X)
		w.PutI16(e.Y)
		w.PutU16(e.Width)
		w.PutU16(e.Height)
		w.PutU16(e.BorderWidth)
		or := byte(0)
		if e.OverrideRedirect {
			or = 1
		}
		w.PutU8(or)
	})
}

// PropertyNotifyEvent is event code 28.
type PropertyNotifyEvent struct {
	Win   resource.XID
	Atom  uint32
	Time  uint32
	State byte // 0=NewValue, 1=Deleted
}

func (e *PropertyNotifyEvent) Code() xproto.EventCode { return xproto.EvPropertyNotify }
func (e *PropertyNotifyEvent) Window() resource.XID   { return e.Win }
func (e *PropertyNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvPropertyNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Win))
		w.PutU32(e.Atom)
		w.PutU32(e.Time)
		w.PutU8(e.State)
	})
}

// ExposeEvent is event code 12. Count is the number of additional Expose
// events still to follow for the same coalesced region; 0 means this is the
// last (spec.md §4.7 "coalesced per window into a sequence ending with
// count=0").
type ExposeEvent struct {
	Win                 resource.XID
	X, Y, Width, Height uint16
	Count               uint16
}

func (e *ExposeEvent) Code() xproto.EventCode { return xproto.EvExpose }
func (e *ExposeEvent) Window() resource.XID   { return e.Win }
func (e *ExposeEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvExpose, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Win))
		w.PutU16(e.X)
		w.PutU16(e.Y)
		w.PutU16(e.Width)
		w.PutU16(e.Height)
		w.PutU16(e.Count)
	})
}

// ClientMessageEvent is event code 33, delivered to a specific target with
// no propagation/selection logic (spec.md §4.7).
type ClientMessageEvent struct {
	Win    resource.XID
	Format byte
	Type   uint32
	Data   [20]byte
}

func (e *ClientMessageEvent) Code() xproto.EventCode { return xproto.EvClientMessage }
func (e *ClientMessageEvent) Window() resource.XID   { return e.Win }
func (e *ClientMessageEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvClientMessage, e.Format, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.Win))
		w.PutU32(e.Type)
		w.PutBytes(e.Data[:])
	})
}

// SelectionClearEvent is event code 29, sent to a selection's previous owner.
type SelectionClearEvent struct {
	Owner     resource.XID
	Time      uint32
	Selection uint32
}

func (e *SelectionClearEvent) Code() xproto.EventCode { return xproto.EvSelectionClear }
func (e *SelectionClearEvent) Window() resource.XID   { return e.Owner }
func (e *SelectionClearEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvSelectionClear, 0, seq, func(w *wire.Writer) {
		w.PutU32(e.Time)
		w.PutU32(uint32(e.Owner))
		w.PutU32(e.Selection)
	})
}

// SelectionRequestEvent is event code 30, sent to a selection's current owner
// to ask it to convert the selection for Requestor.
type SelectionRequestEvent struct {
	Owner, Requestor     resource.XID
	Time                 uint32
	Selection, Target, Property uint32
}

func (e *SelectionRequestEvent) Code() xproto.EventCode { return xproto.EvSelectionRequest }
func (e *SelectionRequestEvent) Window() resource.XID   { return e.Owner }
func (e *SelectionRequestEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvSelectionRequest, 0, seq, func(w *wire.Writer) {
		w.PutU32(e.Time)
		w.PutU32(uint32(e.Owner))
		w.PutU32(uint32(e.Requestor))
		w.PutU32(e.Selection)
		w.PutU32(e.Target)
		w.PutU32(e.Property)
	})
}

// SelectionNotifyEvent is event code 31, the requestor-side reply once a
// conversion has been attempted.
type SelectionNotifyEvent struct {
	Requestor                   resource.XID
	Time                        uint32
	Selection, Target, Property uint32
}

func (e *SelectionNotifyEvent) Code() xproto.EventCode { return xproto.EvSelectionNotify }
func (e *SelectionNotifyEvent) Window() resource.XID   { return e.Requestor }
func (e *SelectionNotifyEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvSelectionNotify, 0, seq, func(w *wire.Writer) {
		w.PutU32(e.Time)
		w.PutU32(uint32(e.Requestor))
		w.PutU32(e.Selection)
		w.PutU32(e.Target)
		w.PutU32(e.Property)
	})
}

// deviceEventMask maps a device EventCode to the selection bit an ancestor
// must have set to receive it (spec.md §3, §4.7).
func deviceEventMask(code xproto.EventCode) uint32 {
	switch code {
	case xproto.EvKeyPress:
		return xproto.EventMaskKeyPress
	case xproto.EvKeyRelease:
		return xproto.EventMaskKeyRelease
	case xproto.EvButtonPress:
		return xproto.EventMaskButtonPress
	case xproto.EvButtonRelease:
		return xproto.EventMaskButtonRelease
	case xproto.EvMotionNotify:
		return xproto.EventMaskPointerMotion
	default:
		return 0
	}
}

// IsDeviceEvent reports whether code follows the ancestor-walk propagation
// rule rather than direct StructureNotify/SubstructureNotify selection.
func IsDeviceEvent(code xproto.EventCode) bool {
	return deviceEventMask(code) != 0
}
