package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/xproto"
)

type fakeSink struct {
	mu       sync.Mutex
	order    wire.ByteOrder
	seq      uint16
	received [][]byte
}

func newFakeSink() *fakeSink { return &fakeSink{order: wire.LSBFirst} }

func (f *fakeSink) Sequence() uint16        { f.mu.Lock(); defer f.mu.Unlock(); f.seq++; return f.seq }
func (f *fakeSink) ByteOrder() wire.ByteOrder { return f.order }
func (f *fakeSink) Enqueue(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, msg)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func newTestRouter(t *testing.T) (*Router, *window.Tree, resource.XID, resource.XID) {
	t.Helper()
	graph := resource.NewGraph()
	atoms := atom.NewTable()
	tree := window.NewTree(graph, atoms)
	root, err := tree.CreateRoot(1, 0, 24, 1, window.Geometry{Width: 1024, Height: 768})
	require.NoError(t, err)
	child, err := tree.CreateWindow(2, root.ID, 100, window.ClassInputOutput, 24, 1, window.Geometry{X: 0, Y: 0, Width: 100, Height: 100})
	require.NoError(t, err)
	return NewRouter(tree), tree, root.ID, child.ID
}

func TestDeliverDeviceIgnoresNonDeviceEvent(t *testing.T) {
	r, tree, rootID, childID := newTestRouter(t)
	sink := newFakeSink()
	r.RegisterClient(100, sink)
	require.NoError(t, tree.Select(rootID, 100, xproto.EventMaskButtonPress))

	ev := &ClientMessageEvent{Win: childID} // placeholder just to exercise the non-device path guard
	r.DeliverDevice(ev, childID)
	assert.Equal(t, 0, sink.count(), "ClientMessage is not a device event, should not propagate")
}

func TestDeliverDeviceDeliversToGrabOwner(t *testing.T) {
	r, _, _, childID := newTestRouter(t)
	grabSink := newFakeSink()
	otherSink := newFakeSink()
	r.RegisterClient(1, grabSink)
	r.RegisterClient(2, otherSink)
	r.GrabPointer(1, childID, xproto.EventMaskButtonPress)

	ev := &fakeButtonEvent{win: childID}
	r.DeliverDevice(ev, childID)
	assert.Equal(t, 1, grabSink.count())
	assert.Equal(t, 0, otherSink.count())
}

func TestDeliverDeviceFallsBackToParentSelection(t *testing.T) {
	r, tree, rootID, childID := newTestRouter(t)
	sink := newFakeSink()
	r.RegisterClient(100, sink)
	require.NoError(t, tree.Select(rootID, 100, xproto.EventMaskButtonPress))

	ev := &fakeButtonEvent{win: childID}
	r.DeliverDevice(ev, childID)
	assert.Equal(t, 1, sink.count())
}

func TestDeliverStructureSplitsStructureAndSubstructure(t *testing.T) {
	r, tree, rootID, childID := newTestRouter(t)
	childWatcher := newFakeSink()
	parentWatcher := newFakeSink()
	r.RegisterClient(1, childWatcher)
	r.RegisterClient(2, parentWatcher)
	require.NoError(t, tree.Select(childID, 1, xproto.EventMaskStructureNotify))
	require.NoError(t, tree.Select(rootID, 2, xproto.EventMaskSubstructureNotify))

	ev := &UnmapNotifyEvent{Event_: childID, Win: childID}
	r.DeliverStructure(ev, childID, xproto.EventMaskStructureNotify, xproto.EventMaskSubstructureNotify)

	assert.Equal(t, 1, childWatcher.count())
	assert.Equal(t, 1, parentWatcher.count())
}

func TestDeliverPropertyOnlySelectingClients(t *testing.T) {
	r, tree, rootID, _ := newTestRouter(t)
	watcher := newFakeSink()
	bystander := newFakeSink()
	r.RegisterClient(1, watcher)
	r.RegisterClient(2, bystander)
	require.NoError(t, tree.Select(rootID, 1, xproto.EventMaskPropertyChange))

	ev := &PropertyNotifyEvent{Win: rootID}
	r.DeliverProperty(ev, rootID)

	assert.Equal(t, 1, watcher.count())
	assert.Equal(t, 0, bystander.count())
}

func TestDeliverTargetedIgnoresUnregisteredClient(t *testing.T) {
	r, _, _, childID := newTestRouter(t)
	ev := &ClientMessageEvent{Win: childID}
	r.DeliverTargeted(ev, 999) // must not panic
}

func TestUnregisterClientStopsDelivery(t *testing.T) {
	r, tree, rootID, _ := newTestRouter(t)
	sink := newFakeSink()
	r.RegisterClient(1, sink)
	require.NoError(t, tree.Select(rootID, 1, xproto.EventMaskPropertyChange))
	r.UnregisterClient(1)

	ev := &PropertyNotifyEvent{Win: rootID}
	r.DeliverProperty(ev, rootID)
	assert.Equal(t, 0, sink.count())
}

// fakeButtonEvent exercises device-event propagation without pulling in a
// real pointer/button type not otherwise needed by this package.
type fakeButtonEvent struct{ win resource.XID }

func (e *fakeButtonEvent) Code() xproto.EventCode { return xproto.EvButtonPress }
func (e *fakeButtonEvent) Window() resource.XID   { return e.win }
func (e *fakeButtonEvent) Encode(order wire.ByteOrder, seq uint16) []byte {
	return fixed32(order, xproto.EvButtonPress, 0, seq, func(w *wire.Writer) {
		w.PutU32(uint32(e.win))
	})
}
