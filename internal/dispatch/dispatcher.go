// Package dispatch implements the Request Dispatcher (spec.md §4.6): for
// each parsed request it resolves ids against live server state, invokes the
// matching handler, and turns the result into a reply, an on-protocol error,
// or nothing (for requests with no reply), enqueuing the wire bytes onto the
// requesting session and fanning out any resulting events.
package dispatch

import (
	"context"

	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/event"
	"github.com/rxserver/rxserver/internal/extension"
	"github.com/rxserver/rxserver/internal/gcontext"
	"github.com/rxserver/rxserver/internal/pixmap"
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/rxlog"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// AccessControl is the minimal host-based access list the ChangeHosts/
// ListHosts/SetAccessControl opcodes manipulate (spec.md §12 supplemented
// feature; original_source's connection-authentication layer, simplified to
// the core protocol's own host list rather than a full auth backend).
type AccessControl struct {
	Enabled bool
	Hosts   []request.ChangeHostsRequest
}

// Dispatcher wires every collaborator a handler may need. One Dispatcher is
// shared by every connected client (spec.md §5 single-writer contract: the
// caller serializes all Dispatch calls).
type Dispatcher struct {
	Tree       *window.Tree
	Atoms      *atom.Table
	Graph      *resource.Graph
	GCs        *gcontext.Manager
	Pixmaps    *pixmap.Manager
	Extensions *extension.Registry
	Router     *event.Router
	Access     *AccessControl
	RootWindow resource.XID
}

// Dispatch handles one already-sequenced, already-parsed request from
// clientID's session. It never returns an error the caller must act on: a
// ProtocolError is encoded and enqueued exactly like a reply.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, clientID resource.ClientID, req request.ParsedRequest) {
	log := rxlog.For(sess.TraceID)
	seq := sess.Sequence()

	var perr *xproto.ProtocolError
	switch r := req.(type) {
	case *request.CreateWindowRequest:
		perr = d.createWindow(clientID, sess, r)
	case *request.ChangeWindowAttributesRequest:
		perr = d.changeWindowAttributes(clientID, r)
	case *request.GetWindowAttributesRequest:
		perr = d.getWindowAttributes(clientID, sess, seq, r)
	case *request.DestroyWindowRequest:
		perr = d.destroyWindow(sess, r)
	case *request.MapWindowRequest:
		perr = d.mapWindow(r)
	case *request.UnmapWindowRequest:
		perr = d.unmapWindow(r)
	case *request.ConfigureWindowRequest:
		perr = d.configureWindow(r)
	case *request.GetGeometryRequest:
		perr = d.getGeometry(sess, seq, r)
	case *request.InternAtomRequest:
		perr = d.internAtom(sess, seq, r)
	case *request.GetAtomNameRequest:
		perr = d.getAtomName(sess, seq, r)
	case *request.ChangePropertyRequest:
		perr = d.changeProperty(r)
	case *request.GetPropertyRequest:
		perr = d.getProperty(sess, seq, r)
	case *request.GrabPointerRequest:
		perr = d.grabPointer(clientID, sess, seq, r)
	case *request.UngrabPointerRequest:
		d.Router.UngrabPointer()
	case *request.GrabKeyboardRequest:
		perr = d.grabKeyboard(clientID, sess, seq, r)
	case *request.UngrabKeyboardRequest:
		d.Router.UngrabKeyboard()
	case *request.GetInputFocusRequest:
		perr = d.getInputFocus(sess, seq)
	case *request.SetInputFocusRequest:
		perr = d.setInputFocus(r)
	case *request.CreatePixmapRequest:
		perr = d.createPixmap(ctx, clientID, sess, r)
	case *request.FreePixmapRequest:
		perr = d.freePixmap(ctx, sess, r)
	case *request.CreateGCRequest:
		perr = d.createGC(clientID, sess, r)
	case *request.FreeGCRequest:
		perr = d.freeGC(sess, r)
	case *request.QueryBestSizeRequest:
		perr = d.queryBestSize(sess, seq, r)
	case *request.QueryExtensionRequest:
		perr = d.queryExtension(sess, seq, r)
	case *request.ListExtensionsRequest:
		perr = d.listExtensions(sess, seq)
	case *request.ChangeHostsRequest:
		d.changeHosts(r)
	case *request.ListHostsRequest:
		perr = d.listHosts(sess, seq)
	case *request.SetAccessControlRequest:
		d.Access.Enabled = r.Enabled
	case *request.NoOperationRequest:
		// spec.md §12: deliberately does nothing.
	case *request.ExtensionRequest:
		perr = d.extensionRequest(r)
	case *request.RawRequest:
		perr = xproto.NewError(xproto.ErrImplementation, 0, r.Opcode(), 0)
	default:
		log.Warn().Str("opcode_type", "unknown").Msg("dispatch: unrecognized parsed request type")
		return
	}

	if perr != nil {
		msg := wire.EncodeErrorMessage(sess.ByteOrder(), byte(perr.Code), seq, perr.BadValue, perr.MinorOpcode, perr.MajorOpcode)
		if err := sess.Enqueue(msg); err != nil {
			log.Error().Err(err).Msg("dispatch: send queue overflow while enqueuing error")
		}
	}
}
