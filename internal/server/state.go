// Package server implements the Server Core (spec.md §4.9): the single
// authoritative ServerState, the accept loop that spawns sessions, and
// coordinated shutdown.
package server

import (
	"sync"

	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/backend"
	"github.com/rxserver/rxserver/internal/dispatch"
	"github.com/rxserver/rxserver/internal/event"
	"github.com/rxserver/rxserver/internal/extension"
	"github.com/rxserver/rxserver/internal/gcontext"
	"github.com/rxserver/rxserver/internal/pixmap"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/window"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// ScreenCount is fixed at one: this core drives a single display-backend
// surface (spec.md §6 "a handle per screen" — the core is built for one).
const ScreenCount = 1

// rootWindowID and rootColormapID are well-known ids reserved outside every
// client's allocated range (spec.md §3 "the server reserves a small prefix
// of the id space for its own resources").
const (
	rootWindowID   resource.XID = 1
	rootColormapID              = 2
)

// ServerState is the single authoritative aggregate spec.md §4.9 names:
// resource_graph, atom_table, window_tree, screens, extensions_registered,
// next_id_range (the last realized as IDAllocator).
//
// mu is the single exclusive writer lock spec.md §5's "Thread-per-session
// with a state lock" model requires: server.Core acquires it once per
// request, around the entire Dispatcher.Dispatch call (and around resource
// teardown on client disconnect), so no other handler can observe an
// intermediate state between the moment a request's sequence is assigned
// and the moment every event it caused has been enqueued. Graph's own
// sync.RWMutex and the atom table's xsync.MapOf protect their own internal
// bookkeeping against concurrent map access, but neither spans a full
// handler invocation — Window/GC/Pixmap payloads are plain structs mutated
// in place by handlers, which is only safe under this coarser lock.
type ServerState struct {
	mu sync.Mutex

	Graph      *resource.Graph
	Atoms      *atom.Table
	Tree       *window.Tree
	GCs        *gcontext.Manager
	Pixmaps    *pixmap.Manager
	Extensions *extension.Registry
	Router     *event.Router
	IDs        *IDAllocator

	Screen xproto.ScreenInfo

	Dispatcher *dispatch.Dispatcher
}

// Lock acquires the exclusive state lock a caller must hold for the
// duration of one request's dispatch or one client's resource teardown
// (spec.md §5).
func (st *ServerState) Lock() { st.mu.Lock() }

// Unlock releases the lock acquired by Lock.
func (st *ServerState) Unlock() { st.mu.Unlock() }

// NewServerState wires every collaborator the dispatcher needs against one
// shared resource graph, exactly as internal/dispatch's Dispatcher fields
// expect (spec.md §4.6).
func NewServerState(surface backend.Surface, maxClients int, screenWidth, screenHeight uint16) (*ServerState, error) {
	graph := resource.NewGraph()
	atoms := atom.NewTable()
	tree := window.NewTree(graph, atoms)

	root, err := tree.CreateRoot(rootWindowID, 0, rootDepth, rootVisualID, window.Geometry{
		Width: screenWidth, Height: screenHeight,
	})
	if err != nil {
		return nil, err
	}

	gcs := gcontext.NewManager(graph)
	pixmaps := pixmap.NewManager(graph, surface)
	extensions := extension.NewRegistry()
	router := event.NewRouter(tree)

	st := &ServerState{
		Graph:      graph,
		Atoms:      atoms,
		Tree:       tree,
		GCs:        gcs,
		Pixmaps:    pixmaps,
		Extensions: extensions,
		Router:     router,
		IDs:        NewIDAllocator(maxClients),
		Screen:     buildScreen(uint32(root.ID), rootColormapID, screenWidth, screenHeight),
	}
	st.Dispatcher = &dispatch.Dispatcher{
		Tree:       tree,
		Atoms:      atoms,
		Graph:      graph,
		GCs:        gcs,
		Pixmaps:    pixmaps,
		Extensions: extensions,
		Router:     router,
		Access:     &dispatch.AccessControl{},
		RootWindow: root.ID,
	}
	return st, nil
}

// buildSetupAccept builds the handshake success reply for one newly
// connected session, stamping its allocated id range into ResourceIDBase/
// Mask (spec.md §4.8).
func (st *ServerState) buildSetupAccept(idRange resource.ClientRange) xproto.SetupAccept {
	return xproto.SetupAccept{
		ProtocolMajor:      xproto.ProtocolMajorVersion,
		ProtocolMinor:      0,
		ReleaseNumber:      1,
		ResourceIDBase:     idRange.Base,
		ResourceIDMask:     idRange.Mask,
		MotionBufferSize:   0,
		VendorString:       "rxserver",
		MaxRequestLength:   uint16(wire.MaxCoreRequestLength),
		PixmapFormats:      pixmapFormats(),
		Screens:            []xproto.ScreenInfo{st.Screen},
		ImageByteOrder:     0, // LSBFirst
		BitmapScanlineUnit: 32,
		BitmapScanlinePad:  32,
		BitmapBitOrder:     0,
		MinKeycode:         8,
		MaxKeycode:         255,
	}
}
