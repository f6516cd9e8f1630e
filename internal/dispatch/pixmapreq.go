package dispatch

import (
	"context"

	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/xproto"
)

func (d *Dispatcher) createPixmap(ctx context.Context, clientID resource.ClientID, sess *session.Session, r *request.CreatePixmapRequest) *xproto.ProtocolError {
	if !sess.IDRange.Contains(r.PixmapID) {
		return xproto.NewError(xproto.ErrIDChoice, uint32(r.PixmapID), xproto.OpCreatePixmap, 0)
	}
	if _, err := d.Tree.Lookup(r.Drawable); err != nil {
		if _, perr := d.Pixmaps.Lookup(r.Drawable); perr != nil {
			return xproto.NewError(xproto.ErrDrawable, uint32(r.Drawable), xproto.OpCreatePixmap, 0)
		}
	}
	if _, err := d.Pixmaps.Create(ctx, r.PixmapID, r.Drawable, clientID, r.Width, r.Height, r.Depth); err != nil {
		return asProtocolError(err, xproto.OpCreatePixmap)
	}
	sess.TrackOwned(r.PixmapID)
	return nil
}

func (d *Dispatcher) freePixmap(ctx context.Context, sess *session.Session, r *request.FreePixmapRequest) *xproto.ProtocolError {
	if err := d.Pixmaps.Free(ctx, r.Pixmap); err != nil {
		return asProtocolError(err, xproto.OpFreePixmap)
	}
	sess.UntrackOwned(r.Pixmap)
	return nil
}
