// Package resource implements the typed, per-client-owned registry of X11
// resources shared by every connection (spec.md §4.2).
package resource

// Kind is the closed set of resource kinds tracked in the shared registry.
// Atoms are interned separately (package atom) since they carry no
// per-client ownership (spec.md §3).
type Kind int

const (
	KindWindow Kind = iota
	KindPixmap
	KindGraphicsContext
	KindFont
	KindCursor
	KindColormap
)

func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "Window"
	case KindPixmap:
		return "Pixmap"
	case KindGraphicsContext:
		return "GContext"
	case KindFont:
		return "Font"
	case KindCursor:
		return "Cursor"
	case KindColormap:
		return "Colormap"
	default:
		return "Unknown"
	}
}

// Shareable reports whether a resource kind may be referenced by clients
// other than its owner (spec.md §4.2: "Fonts, colormaps, and atoms are
// shareable across clients; windows/pixmaps/GCs/cursors are not").
func (k Kind) Shareable() bool {
	return k == KindFont || k == KindColormap
}

// cleanupOrder is the fixed priority windows-before-GCs-before-pixmaps-
// before-cursors-before-fonts-before-colormaps (spec.md §4.2) in which a
// client's owned resources are torn down, so that dangling references are
// never exposed to handlers mid-teardown.
var cleanupOrder = []Kind{KindWindow, KindGraphicsContext, KindPixmap, KindCursor, KindFont, KindColormap}

// CleanupOrder returns the fixed per-kind teardown priority.
func CleanupOrder() []Kind {
	out := make([]Kind, len(cleanupOrder))
	copy(out, cleanupOrder)
	return out
}

// XID is a 32-bit resource identifier (spec.md §3).
type XID uint32

// ClientID identifies a connected client within the server process. It is
// internal bookkeeping, distinct from any XID.
type ClientID uint32

// ClientRange characterizes the disjoint XID subspace a client may create
// resources in: any id the client may legally use satisfies
// (id &^ mask) == base (spec.md §3).
type ClientRange struct {
	Base uint32
	Mask uint32
}

// Contains reports whether id falls within this client's allocated range.
func (r ClientRange) Contains(id XID) bool {
	return uint32(id)&^r.Mask == r.Base
}
