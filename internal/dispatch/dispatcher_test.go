package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/backend"
	"github.com/rxserver/rxserver/internal/event"
	"github.com/rxserver/rxserver/internal/extension"
	"github.com/rxserver/rxserver/internal/gcontext"
	"github.com/rxserver/rxserver/internal/pixmap"
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/xproto"
)

type fixture struct {
	d    *Dispatcher
	sess *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	graph := resource.NewGraph()
	atoms := atom.NewTable()
	tree := window.NewTree(graph, atoms)
	root, err := tree.CreateRoot(1, 0, 24, 1, window.Geometry{Width: 1024, Height: 768})
	require.NoError(t, err)

	gcs := gcontext.NewManager(graph)
	pixmaps := pixmap.NewManager(graph, backend.NewHeadless())
	router := event.NewRouter(tree)

	d := &Dispatcher{
		Tree: tree, Atoms: atoms, Graph: graph,
		GCs: gcs, Pixmaps: pixmaps,
		Extensions: extension.NewRegistry(),
		Router:     router,
		Access:     &AccessControl{},
		RootWindow: root.ID,
	}
	sess := session.New(100, "test-trace", resource.ClientRange{Base: 0x00200000, Mask: 0x000FFFFF}, 64)
	router.RegisterClient(100, sess)
	return &fixture{d: d, sess: sess}
}

func TestCreateMapWindowDeliversEvents(t *testing.T) {
	f := newFixture(t)
	watcher := session.New(200, "watcher", resource.ClientRange{Base: 0x00300000, Mask: 0x000FFFFF}, 64)
	f.d.Router.RegisterClient(200, watcher)
	require.NoError(t, f.d.Tree.Select(f.d.RootWindow, 200, xproto.EventMaskSubstructureNotify))

	f.d.Dispatch(context.Background(), f.sess, 100, &request.CreateWindowRequest{
		WindowID: 0x00200001, Parent: f.d.RootWindow,
		X: 0, Y: 0, Width: 100, Height: 100, Class: uint16(window.ClassInputOutput), Depth: 24,
	})
	assert.Empty(t, drainErrors(t, f.sess))
	assert.Len(t, watcher.DrainSendQueue(), 1, "CreateNotify should reach the SubstructureNotify selector")

	f.d.Dispatch(context.Background(), f.sess, 100, &request.MapWindowRequest{Window: 0x00200001})
	assert.Empty(t, drainErrors(t, f.sess))
}

func TestDestroyWindowOnUnknownWindowIsWindowError(t *testing.T) {
	f := newFixture(t)
	f.d.Dispatch(context.Background(), f.sess, 100, &request.DestroyWindowRequest{Window: 0xDEAD})
	msgs := f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, byte(xproto.ErrWindow), msgs[0][1])
}

func TestChangeThenGetPropertyRoundTrip(t *testing.T) {
	f := newFixture(t)
	nameID, err := f.d.Atoms.Intern("WM_TEST", false)
	require.NoError(t, err)
	typeID, err := f.d.Atoms.Intern("STRING", false)
	require.NoError(t, err)

	f.d.Dispatch(context.Background(), f.sess, 100, &request.ChangePropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), Format: 8, Mode: 0, Data: []byte("hello"),
	})
	assert.Empty(t, drainErrors(t, f.sess))

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), LongLength: 100,
	})
	msgs := f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, byte(1), msgs[0][0]) // reply indicator
}

func TestInternAtomIsIdempotentAcrossRequests(t *testing.T) {
	f := newFixture(t)
	f.d.Dispatch(context.Background(), f.sess, 100, &request.InternAtomRequest{Name: "FOO"})
	first := f.sess.DrainSendQueue()
	require.Len(t, first, 1)

	f.d.Dispatch(context.Background(), f.sess, 100, &request.InternAtomRequest{Name: "FOO"})
	second := f.sess.DrainSendQueue()
	require.Len(t, second, 1)
	assert.Equal(t, first[0][8:12], second[0][8:12], "same name interns to the same atom id")
}

func TestCreatePixmapThenFreePixmap(t *testing.T) {
	f := newFixture(t)
	f.d.Dispatch(context.Background(), f.sess, 100, &request.CreatePixmapRequest{
		PixmapID: 0x00200010, Drawable: f.d.RootWindow, Width: 16, Height: 16, Depth: 24,
	})
	assert.Empty(t, drainErrors(t, f.sess))

	f.d.Dispatch(context.Background(), f.sess, 100, &request.FreePixmapRequest{Pixmap: 0x00200010})
	assert.Empty(t, drainErrors(t, f.sess))
}

func TestGrabPointerEnqueuesOneReply(t *testing.T) {
	f := newFixture(t)
	f.d.Dispatch(context.Background(), f.sess, 100, &request.GrabPointerRequest{GrabWindow: f.d.RootWindow})
	replies := f.sess.DrainSendQueue()
	require.Len(t, replies, 1)
}

func TestChangeWindowAttributesSelectsEventsThenGetWindowAttributesReportsMask(t *testing.T) {
	f := newFixture(t)
	watcher := session.New(200, "watcher", resource.ClientRange{Base: 0x00300000, Mask: 0x000FFFFF}, 64)
	f.d.Router.RegisterClient(200, watcher)

	f.d.Dispatch(context.Background(), f.sess, 100, &request.CreateWindowRequest{
		WindowID: 0x00200001, Parent: f.d.RootWindow,
		X: 0, Y: 0, Width: 50, Height: 50, Class: uint16(window.ClassInputOutput), Depth: 24,
	})
	assert.Empty(t, drainErrors(t, f.sess))

	f.d.Dispatch(context.Background(), watcher, 200, &request.ChangeWindowAttributesRequest{
		Window: 0x00200001, ValueMask: xproto.CWEventMask, Values: []uint32{xproto.EventMaskStructureNotify},
	})
	assert.Empty(t, drainErrors(t, watcher))

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetWindowAttributesRequest{Window: 0x00200001})
	replies := f.sess.DrainSendQueue()
	require.Len(t, replies, 1)
	assert.Equal(t, byte(1), replies[0][0])

	f.d.Dispatch(context.Background(), f.sess, 100, &request.MapWindowRequest{Window: 0x00200001})
	assert.Empty(t, drainErrors(t, f.sess))
	assert.Len(t, watcher.DrainSendQueue(), 1, "MapNotify should reach the StructureNotify selector registered via ChangeWindowAttributes")
}

func TestGetPropertyDeleteOnFullReadRemovesProperty(t *testing.T) {
	f := newFixture(t)
	watcher := session.New(200, "watcher", resource.ClientRange{Base: 0x00300000, Mask: 0x000FFFFF}, 64)
	f.d.Router.RegisterClient(200, watcher)
	require.NoError(t, f.d.Tree.Select(f.d.RootWindow, 200, xproto.EventMaskPropertyChange))

	nameID, err := f.d.Atoms.Intern("WM_TEST", false)
	require.NoError(t, err)
	typeID, err := f.d.Atoms.Intern("STRING", false)
	require.NoError(t, err)

	f.d.Dispatch(context.Background(), f.sess, 100, &request.ChangePropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), Format: 8, Mode: 0, Data: []byte("hello"),
	})
	assert.Empty(t, drainErrors(t, f.sess))
	watcher.DrainSendQueue()

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), Delete: true, LongLength: 100,
	})
	msgs := f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, byte(1), msgs[0][0])
	assert.Len(t, watcher.DrainSendQueue(), 1, "deletion should notify a PropertyChange selector")

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), LongLength: 100,
	})
	msgs = f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, uint32(0), replyU32(msgs[0], 8), "property must actually be gone after delete")
}

func TestGetPropertyTypeMismatchReturnsNoDataAndDoesNotDelete(t *testing.T) {
	f := newFixture(t)
	nameID, err := f.d.Atoms.Intern("WM_TEST", false)
	require.NoError(t, err)
	stringType, err := f.d.Atoms.Intern("STRING", false)
	require.NoError(t, err)
	atomType, err := f.d.Atoms.Intern("ATOM", false)
	require.NoError(t, err)

	f.d.Dispatch(context.Background(), f.sess, 100, &request.ChangePropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(stringType), Format: 8, Mode: 0, Data: []byte("hello"),
	})
	assert.Empty(t, drainErrors(t, f.sess))

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(atomType), Delete: true, LongLength: 100,
	})
	msgs := f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, uint32(stringType), replyU32(msgs[0], 8), "reply reports the stored type, not the requested one")
	assert.Equal(t, uint32(5), replyU32(msgs[0], 12), "bytes-after reports the full stored length on a type mismatch")

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(stringType), LongLength: 100,
	})
	msgs = f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, byte(1), msgs[0][0], "property must survive a type-mismatched read")
}

func TestGetPropertyPartialReadReportsBytesAfterAndDoesNotDelete(t *testing.T) {
	f := newFixture(t)
	nameID, err := f.d.Atoms.Intern("WM_TEST", false)
	require.NoError(t, err)
	typeID, err := f.d.Atoms.Intern("STRING", false)
	require.NoError(t, err)

	f.d.Dispatch(context.Background(), f.sess, 100, &request.ChangePropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), Format: 8, Mode: 0, Data: []byte("hello world"),
	})
	assert.Empty(t, drainErrors(t, f.sess))

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), Delete: true, LongOffset: 0, LongLength: 1,
	})
	msgs := f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, uint32(7), replyU32(msgs[0], 12), "bytes-after should report the remaining 7 bytes of \"hello world\"")

	f.d.Dispatch(context.Background(), f.sess, 100, &request.GetPropertyRequest{
		Window: f.d.RootWindow, Property: uint32(nameID), Type: uint32(typeID), LongLength: 100,
	})
	msgs = f.sess.DrainSendQueue()
	require.Len(t, msgs, 1)
	assert.Equal(t, byte(1), msgs[0][0], "a partial read must not delete the property")
}

// replyU32 decodes the big-endian uint32 at offset in a reply (the fixture's
// sessions negotiate no byte order, which defaults to MSBFirst encoding).
func replyU32(msg []byte, offset int) uint32 {
	b := msg[offset : offset+4]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// drainErrors returns only the error-shaped messages (indicator byte 0) in
// the session's queue, for assertions that a handler produced no error.
func drainErrors(t *testing.T, sess *session.Session) [][]byte {
	t.Helper()
	var errs [][]byte
	for _, m := range sess.DrainSendQueue() {
		if len(m) > 0 && m[0] == 0 {
			errs = append(errs, m)
		}
	}
	return errs
}
