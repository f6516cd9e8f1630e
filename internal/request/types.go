// Package request implements the Request Parser & Validator (spec.md §4.5):
// structural validation of a framed request body into a typed
// ParsedRequest, leaving semantic validation (does this id exist? is it in
// my range?) to the dispatcher.
package request

import "github.com/rxserver/rxserver/internal/resource"

// ParsedRequest is implemented by every typed request variant. Opcode
// identifies the major opcode it was parsed from, for error attribution.
type ParsedRequest interface {
	Opcode() byte
}

type opcodeTag byte

func (o opcodeTag) Opcode() byte { return byte(o) }

// CreateWindowRequest is opcode 1.
type CreateWindowRequest struct {
	opcodeTag
	Depth                    byte
	WindowID, Parent         resource.XID
	X, Y                     int16
	Width, Height            uint16
	BorderWidth              uint16
	Class                    uint16
	Visual                   uint32
	ValueMask                uint32
	Values                   []uint32
}

// ChangeWindowAttributesRequest is opcode 2.
type ChangeWindowAttributesRequest struct {
	opcodeTag
	Window    resource.XID
	ValueMask uint32
	Values    []uint32
}

// GetWindowAttributesRequest is opcode 3.
type GetWindowAttributesRequest struct {
	opcodeTag
	Window resource.XID
}

// DestroyWindowRequest is opcode 4.
type DestroyWindowRequest struct {
	opcodeTag
	Window resource.XID
}

// MapWindowRequest is opcode 8.
type MapWindowRequest struct {
	opcodeTag
	Window resource.XID
}

// UnmapWindowRequest is opcode 10.
type UnmapWindowRequest struct {
	opcodeTag
	Window resource.XID
}

// ConfigureWindowRequest is opcode 12.
type ConfigureWindowRequest struct {
	opcodeTag
	Window    resource.XID
	ValueMask uint16
	Values    []uint32
}

// GetGeometryRequest is opcode 14.
type GetGeometryRequest struct {
	opcodeTag
	Drawable resource.XID
}

// InternAtomRequest is opcode 16.
type InternAtomRequest struct {
	opcodeTag
	OnlyIfExists bool
	Name         string
}

// GetAtomNameRequest is opcode 17.
type GetAtomNameRequest struct {
	opcodeTag
	Atom uint32
}

// ChangePropertyRequest is opcode 18.
type ChangePropertyRequest struct {
	opcodeTag
	Mode     byte // 0=Replace,1=Prepend,2=Append
	Window   resource.XID
	Property uint32
	Type     uint32
	Format   byte
	Data     []byte
}

// GetPropertyRequest is opcode 20.
type GetPropertyRequest struct {
	opcodeTag
	Delete     bool
	Window     resource.XID
	Property   uint32
	Type       uint32
	LongOffset uint32
	LongLength uint32
}

// GrabPointerRequest is opcode 26.
type GrabPointerRequest struct {
	opcodeTag
	OwnerEvents            bool
	GrabWindow              resource.XID
	EventMask               uint16
	PointerMode, KeyboardMode byte
	ConfineTo               resource.XID
	Cursor                  resource.XID
	Time                    uint32
}

// UngrabPointerRequest is opcode 27.
type UngrabPointerRequest struct {
	opcodeTag
	Time uint32
}

// GrabKeyboardRequest is opcode 31.
type GrabKeyboardRequest struct {
	opcodeTag
	OwnerEvents bool
	GrabWindow  resource.XID
	Time        uint32
	PointerMode, KeyboardMode byte
}

// UngrabKeyboardRequest is opcode 32.
type UngrabKeyboardRequest struct {
	opcodeTag
	Time uint32
}

// GetInputFocusRequest is opcode 43.
type GetInputFocusRequest struct{ opcodeTag }

// SetInputFocusRequest is opcode 42.
type SetInputFocusRequest struct {
	opcodeTag
	RevertTo byte
	Focus    resource.XID
	Time     uint32
}

// CreatePixmapRequest is opcode 53.
type CreatePixmapRequest struct {
	opcodeTag
	Depth                byte
	PixmapID, Drawable    resource.XID
	Width, Height         uint16
}

// FreePixmapRequest is opcode 54.
type FreePixmapRequest struct {
	opcodeTag
	Pixmap resource.XID
}

// CreateGCRequest is opcode 55.
type CreateGCRequest struct {
	opcodeTag
	CID, Drawable resource.XID
	ValueMask     uint32
	Values        []uint32
}

// FreeGCRequest is opcode 60.
type FreeGCRequest struct {
	opcodeTag
	GC resource.XID
}

// QueryBestSizeRequest is opcode 97 (spec.md §12 supplemented feature).
type QueryBestSizeRequest struct {
	opcodeTag
	Class         byte
	Drawable      resource.XID
	Width, Height uint16
}

// QueryExtensionRequest is opcode 98.
type QueryExtensionRequest struct {
	opcodeTag
	Name string
}

// ListExtensionsRequest is opcode 99.
type ListExtensionsRequest struct{ opcodeTag }

// ChangeHostsRequest is opcode 109 (spec.md §12 supplemented feature).
type ChangeHostsRequest struct {
	opcodeTag
	Insert bool
	Family byte
	Address []byte
}

// ListHostsRequest is opcode 110.
type ListHostsRequest struct{ opcodeTag }

// SetAccessControlRequest is opcode 111.
type SetAccessControlRequest struct {
	opcodeTag
	Enabled bool
}

// NoOperationRequest is opcode 127.
type NoOperationRequest struct{ opcodeTag }

// ExtensionRequest carries any opcode >= 128, routed through the extension
// registry by the dispatcher (spec.md §4.5, §6).
type ExtensionRequest struct {
	opcodeTag
	Minor   byte
	Payload []byte
}

// RawRequest carries a recognized core opcode (1..127) whose typed parse the
// dispatcher does not yet implement semantics for. It still structurally
// validates the frame (length matches the declared size) but defers payload
// interpretation. Emitted only for opcodes with no typed variant above.
type RawRequest struct {
	opcodeTag
	Detail  byte
	Payload []byte
}
