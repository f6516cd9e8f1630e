package dispatch

import (
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// grabStatus mirrors the core GrabPointer/GrabKeyboard reply's single status
// byte; this server never contends a grab against another active one, so it
// always succeeds once the window resolves.
const grabStatusSuccess = 0

func (d *Dispatcher) grabPointer(clientID resource.ClientID, sess *session.Session, seq uint16, r *request.GrabPointerRequest) *xproto.ProtocolError {
	if _, err := d.Tree.Lookup(r.GrabWindow); err != nil {
		return asProtocolError(err, xproto.OpGrabPointer)
	}
	d.Router.GrabPointer(clientID, r.GrabWindow, uint32(r.EventMask))
	enqueueGrabReply(sess, seq)
	return nil
}

func (d *Dispatcher) grabKeyboard(clientID resource.ClientID, sess *session.Session, seq uint16, r *request.GrabKeyboardRequest) *xproto.ProtocolError {
	if _, err := d.Tree.Lookup(r.GrabWindow); err != nil {
		return asProtocolError(err, xproto.OpGrabKeyboard)
	}
	d.Router.GrabKeyboard(clientID, r.GrabWindow)
	enqueueGrabReply(sess, seq)
	return nil
}

func enqueueGrabReply(sess *session.Session, seq uint16) {
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), grabStatusSuccess, seq, 0))
	w.Pad(24)
	_ = sess.Enqueue(w.Bytes())
}

func (d *Dispatcher) getInputFocus(sess *session.Session, seq uint16) *xproto.ProtocolError {
	w := wire.NewWriter(sess.ByteOrder())
	w.PutBytes(wire.EncodeReplyPrefix(sess.ByteOrder(), 0, seq, 0))
	w.PutU32(uint32(d.Router.InputFocus()))
	w.Pad(20)
	_ = sess.Enqueue(w.Bytes())
	return nil
}

func (d *Dispatcher) setInputFocus(r *request.SetInputFocusRequest) *xproto.ProtocolError {
	if r.Focus != 0 {
		if _, err := d.Tree.Lookup(r.Focus); err != nil {
			return asProtocolError(err, xproto.OpSetInputFocus)
		}
	}
	d.Router.SetInputFocus(r.Focus)
	return nil
}
