package dispatch

import (
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/xproto"
)

func (d *Dispatcher) createGC(clientID resource.ClientID, sess *session.Session, r *request.CreateGCRequest) *xproto.ProtocolError {
	if !sess.IDRange.Contains(r.CID) {
		return xproto.NewError(xproto.ErrIDChoice, uint32(r.CID), xproto.OpCreateGC, 0)
	}
	if _, err := d.Tree.Lookup(r.Drawable); err != nil {
		if _, perr := d.Pixmaps.Lookup(r.Drawable); perr != nil {
			return xproto.NewError(xproto.ErrDrawable, uint32(r.Drawable), xproto.OpCreateGC, 0)
		}
	}
	if _, err := d.GCs.Create(r.CID, r.Drawable, clientID, r.ValueMask, r.Values); err != nil {
		return asProtocolError(err, xproto.OpCreateGC)
	}
	sess.TrackOwned(r.CID)
	return nil
}

func (d *Dispatcher) freeGC(sess *session.Session, r *request.FreeGCRequest) *xproto.ProtocolError {
	if err := d.GCs.Free(r.GC); err != nil {
		return asProtocolError(err, xproto.OpFreeGC)
	}
	sess.UntrackOwned(r.GC)
	return nil
}
