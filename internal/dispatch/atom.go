package dispatch

import (
	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

func (d *Dispatcher) internAtom(sess *session.Session, seq uint16, r *request.InternAtomRequest) *xproto.ProtocolError {
	id, err := d.Atoms.Intern(r.Name, r.OnlyIfExists)
	if err != nil {
		return xproto.NewError(xproto.ErrValue, 0, xproto.OpInternAtom, 0)
	}
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, 0))
	w.PutU32(uint32(id))
	w.Pad(20)
	_ = sess.Enqueue(w.Bytes())
	return nil
}

func (d *Dispatcher) getAtomName(sess *session.Session, seq uint16, r *request.GetAtomNameRequest) *xproto.ProtocolError {
	name, err := d.Atoms.NameOf(atom.ID(r.Atom))
	if err != nil {
		return xproto.NewError(xproto.ErrAtom, r.Atom, xproto.OpGetAtomName, 0)
	}
	lengthExtra := uint32(wire.AlignTo4(len(name))) / 4
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, lengthExtra))
	w.PutU16(uint16(len(name)))
	w.Pad(22)
	w.PutPaddedBytes(name)
	_ = sess.Enqueue(w.Bytes())
	return nil
}
