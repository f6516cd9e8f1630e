// Package backend defines the display-backend collaborator the core
// invokes from handlers (spec.md §6 "Display-backend interface") and a
// headless in-memory implementation usable in tests and for window
// managers with no real output device.
package backend

import "context"

// ID identifies a backend-side pixmap/screen surface; opaque to the core.
type ID uint64

// Rect is a backend-local pixel rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// Point is a backend-local pixel coordinate.
type Point struct{ X, Y int }

// GC carries the subset of graphics-context state a backend needs to
// execute a drawing call (spec.md §3 "GraphicsContext payload").
type GC struct {
	Foreground, Background uint32
	PlaneMask              uint32
}

// Surface is the per-screen display-backend handle (spec.md §6). Every
// method is invoked only from a request handler, never from the accept loop
// or the event router directly.
type Surface interface {
	CreatePixmap(ctx context.Context, width, height, depth int) (ID, error)
	DestroyPixmap(ctx context.Context, id ID) error
	CopyArea(ctx context.Context, src, dst ID, srcRect Rect, dstPoint Point, gc GC) error
	PutImage(ctx context.Context, dst ID, rect Rect, format byte, bytes []byte) error
	// GetImage is the one handler the spec calls out as deferrable
	// (§4.6): a readback that may need to wait on the real backend.
	GetImage(ctx context.Context, src ID, rect Rect, format byte) ([]byte, error)
	Present(ctx context.Context, screen int, damage Rect) error
}
