package dispatch

import (
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// queryBestSize answers with the requested size unchanged (spec.md §12
// supplemented feature): this server has no tiled/stippled size constraints
// to round up to, unlike a real display driver.
func (d *Dispatcher) queryBestSize(sess *session.Session, seq uint16, r *request.QueryBestSizeRequest) *xproto.ProtocolError {
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, 0))
	w.PutU16(r.Width)
	w.PutU16(r.Height)
	w.Pad(20)
	_ = sess.Enqueue(w.Bytes())
	return nil
}

func (d *Dispatcher) queryExtension(sess *session.Session, seq uint16, r *request.QueryExtensionRequest) *xproto.ProtocolError {
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, 0))
	desc, ok := d.Extensions.Query(r.Name)
	if !ok {
		w.PutU8(0) // present = false
		w.PutU8(0)
		w.PutU8(0)
		w.PutU8(0)
		w.Pad(20)
		_ = sess.Enqueue(w.Bytes())
		return nil
	}
	w.PutU8(1)
	w.PutU8(desc.MajorOpcode)
	w.PutU8(desc.FirstEvent)
	w.PutU8(desc.FirstError)
	w.Pad(20)
	_ = sess.Enqueue(w.Bytes())
	return nil
}

func (d *Dispatcher) listExtensions(sess *session.Session, seq uint16) *xproto.ProtocolError {
	names := d.Extensions.List()
	body := wire.NewWriter(sess.ByteOrder())
	for _, n := range names {
		body.PutString8(n)
	}
	lengthExtra := uint32(wire.AlignTo4(len(body.Bytes()))) / 4

	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), byte(len(names)), seq, lengthExtra))
	w.Pad(24)
	w.PutBytes(body.Bytes())
	w.AlignBuf()
	_ = sess.Enqueue(w.Bytes())
	return nil
}

func (d *Dispatcher) changeHosts(r *request.ChangeHostsRequest) {
	if r.Insert {
		d.Access.Hosts = append(d.Access.Hosts, *r)
		return
	}
	out := d.Access.Hosts[:0]
	for _, h := range d.Access.Hosts {
		if h.Family == r.Family && string(h.Address) == string(r.Address) {
			continue
		}
		out = append(out, h)
	}
	d.Access.Hosts = out
}

func (d *Dispatcher) listHosts(sess *session.Session, seq uint16) *xproto.ProtocolError {
	body := wire.NewWriter(sess.ByteOrder())
	for _, h := range d.Access.Hosts {
		body.PutU8(h.Family)
		body.Pad(1)
		body.PutU16(uint16(len(h.Address)))
		body.PutBytes(h.Address)
		body.Pad(wire.AlignTo4(len(h.Address)) - len(h.Address))
	}
	lengthExtra := uint32(wire.AlignTo4(len(body.Bytes()))) / 4

	enabled := byte(0)
	if d.Access.Enabled {
		enabled = 1
	}
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), enabled, seq, lengthExtra))
	w.PutU16(uint16(len(d.Access.Hosts)))
	w.Pad(22)
	w.PutBytes(body.Bytes())
	_ = sess.Enqueue(w.Bytes())
	return nil
}

// extensionRequest routes an opcode >= 128 through the registry purely to
// validate it names a registered extension; this server carries no
// extension implementations of its own, so every such request structurally
// validates and then no-ops (spec.md §6 "dispatcher routes through the
// extension registry").
func (d *Dispatcher) extensionRequest(r *request.ExtensionRequest) *xproto.ProtocolError {
	if _, ok := d.Extensions.ByMajorOpcode(r.Opcode()); !ok {
		return xproto.NewError(xproto.ErrRequest, 0, r.Opcode(), uint16(r.Minor))
	}
	return nil
}
