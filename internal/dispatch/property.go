package dispatch

import (
	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/event"
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

func (d *Dispatcher) changeProperty(r *request.ChangePropertyRequest) *xproto.ProtocolError {
	err := d.Tree.ChangeProperty(r.Window, atom.ID(r.Property), atom.ID(r.Type), r.Format, window.ChangeMode(r.Mode), r.Data)
	if err != nil {
		return asProtocolError(err, xproto.OpChangeProperty)
	}
	ev := &event.PropertyNotifyEvent{Win: r.Window, Atom: r.Property, State: 0}
	d.Router.DeliverProperty(ev, r.Window)
	return nil
}

// anyPropertyType is the wire sentinel meaning "match any type" in a
// GetProperty request's Type field — the same zero value as atom.None, reused
// here per X11 convention rather than a second named zero constant.
const anyPropertyType = uint32(atom.None)

func (d *Dispatcher) getProperty(sess *session.Session, seq uint16, r *request.GetPropertyRequest) *xproto.ProtocolError {
	val, err := d.Tree.GetProperty(r.Window, atom.ID(r.Property))
	if err != nil {
		return asProtocolError(err, xproto.OpGetProperty)
	}

	w := wire.NewWriter(sess.ByteOrder())
	if val == nil {
		w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, 0))
		w.PutU32(uint32(atom.None)) // type = None: property was never set
		w.PutU32(0)                 // bytes-after
		w.PutU32(0)                 // length
		w.Pad(12)
		_ = sess.Enqueue(w.Bytes())
		return nil
	}

	// A type mismatch returns the stored type and full bytes-after without
	// transferring or consuming any data (spec.md §4.4); Delete never applies
	// to a request that didn't actually read the value.
	if r.Type != anyPropertyType && r.Type != uint32(val.Type) {
		w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, 0))
		w.PutU32(uint32(val.Type))
		w.PutU32(uint32(len(val.Data)))
		w.PutU32(0)
		w.Pad(12)
		_ = sess.Enqueue(w.Bytes())
		return nil
	}

	elemBytes := int(val.Format) / 8
	if elemBytes == 0 {
		elemBytes = 1
	}

	offset := int(r.LongOffset) * 4
	if offset > len(val.Data) {
		offset = len(val.Data)
	}
	remaining := val.Data[offset:]
	length := int(r.LongLength) * 4
	if length > len(remaining) {
		length = len(remaining)
	}
	chunk := remaining[:length]
	bytesAfter := len(remaining) - length

	lengthExtra := uint32(wire.AlignTo4(len(chunk))) / 4

	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), val.Format, seq, lengthExtra))
	w.PutU32(uint32(val.Type))
	w.PutU32(uint32(bytesAfter))
	w.PutU32(uint32(len(chunk) / elemBytes))
	w.Pad(12)
	w.PutBytes(chunk)
	w.Pad(wire.AlignTo4(len(chunk)) - len(chunk))
	_ = sess.Enqueue(w.Bytes())

	// Deletion only happens once the client has retrieved the entire value in
	// one read (spec.md §4.4): a partial read with bytes-after > 0 leaves the
	// property untouched regardless of Delete.
	if r.Delete && bytesAfter == 0 {
		if err := d.Tree.DeleteProperty(r.Window, atom.ID(r.Property)); err != nil {
			return asProtocolError(err, xproto.OpGetProperty)
		}
		ev := &event.PropertyNotifyEvent{Win: r.Window, Atom: r.Property, State: 1}
		d.Router.DeliverProperty(ev, r.Window)
	}
	return nil
}
