package xproto

import (
	"fmt"

	"github.com/rxserver/rxserver/internal/wire"
)

// ProtocolMajorVersion is the only version this engine speaks (spec.md §1, §4.8).
const ProtocolMajorVersion = 11

// SetupRequest is the client's connection-setup message, sent before any
// framed request (spec.md §4.8).
type SetupRequest struct {
	ProtocolMajor uint16
	ProtocolMinor uint16
	AuthName      string
	AuthData      string
}

// ParseSetupRequest decodes the handshake body that follows the already-
// consumed byte-order byte. byteOrderByte has already been validated by the
// caller (session.AwaitingSetup).
func ParseSetupRequest(body []byte, order wire.ByteOrder) (SetupRequest, error) {
	r := wire.NewReader(body, order)
	if _, err := r.U8(); err != nil { // unused byte after byte-order byte
		return SetupRequest{}, err
	}
	major, err := r.U16()
	if err != nil {
		return SetupRequest{}, err
	}
	minor, err := r.U16()
	if err != nil {
		return SetupRequest{}, err
	}
	n, err := r.U16()
	if err != nil {
		return SetupRequest{}, err
	}
	d, err := r.U16()
	if err != nil {
		return SetupRequest{}, err
	}
	if _, err := r.U16(); err != nil { // unused
		return SetupRequest{}, err
	}
	authName, err := readPadded(r, int(n))
	if err != nil {
		return SetupRequest{}, err
	}
	authData, err := readPadded(r, int(d))
	if err != nil {
		return SetupRequest{}, err
	}
	return SetupRequest{ProtocolMajor: major, ProtocolMinor: minor, AuthName: authName, AuthData: authData}, nil
}

func readPadded(r *wire.Reader, n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	pad, err := r.Bytes(wire.AlignTo4(n) - n)
	if err != nil {
		return "", err
	}
	if !wire.PaddingIsZero(pad) {
		return "", fmt.Errorf("xproto: non-zero setup padding")
	}
	return string(b), nil
}

// VisualType describes one entry of a depth's visual list (supplemented from
// original_source/oldsrc/x11/visuals: visual class plus RGB mask/shift data,
// not just an opaque id).
type VisualType struct {
	VisualID        uint32
	Class           byte // StaticGray=0 .. DirectColor=5
	BitsPerRGBValue byte
	ColormapEntries uint16
	RedMask         uint32
	GreenMask       uint32
	BlueMask        uint32
}

const (
	VisualClassStaticGray = 0
	VisualClassGrayScale  = 1
	VisualClassStaticColor = 2
	VisualClassPseudoColor = 3
	VisualClassTrueColor   = 4
	VisualClassDirectColor = 5
)

// Depth is one allowed depth of a screen, with its visual list.
type Depth struct {
	Depth   byte
	Visuals []VisualType
}

// ScreenInfo mirrors the per-screen block of the setup-accept reply.
type ScreenInfo struct {
	Root               uint32
	DefaultColormap    uint32
	WhitePixel         uint32
	BlackPixel         uint32
	CurrentInputMasks  uint32
	WidthInPixels      uint16
	HeightInPixels     uint16
	WidthInMillimeters uint16
	HeightInMillimeters uint16
	MinInstalledMaps   uint16
	MaxInstalledMaps   uint16
	RootVisual         uint32
	BackingStores      byte
	SaveUnders         bool
	RootDepth          byte
	AllowedDepths      []Depth
}

// PixmapFormat is one entry of the setup-accept reply's pixmap format table.
type PixmapFormat struct {
	Depth        byte
	BitsPerPixel byte
	ScanlinePad  byte
}

// SetupAccept is everything needed to encode a successful setup reply
// (spec.md §4.8).
type SetupAccept struct {
	ProtocolMajor       uint16
	ProtocolMinor       uint16
	ReleaseNumber       uint32
	ResourceIDBase      uint32
	ResourceIDMask      uint32
	MotionBufferSize    uint32
	VendorString        string
	MaxRequestLength    uint16
	PixmapFormats       []PixmapFormat
	Screens             []ScreenInfo
	ImageByteOrder      byte // 0 = LSBFirst, 1 = MSBFirst
	BitmapScanlineUnit  byte
	BitmapScanlinePad   byte
	BitmapBitOrder      byte
	MinKeycode          byte
	MaxKeycode          byte
}

// EncodeAccept serializes the success header described in spec.md §4.8.
func EncodeAccept(order wire.ByteOrder, a SetupAccept) []byte {
	body := wire.NewWriter(order)
	body.PutU32(a.ReleaseNumber)
	body.PutU32(a.ResourceIDBase)
	body.PutU32(a.ResourceIDMask)
	body.PutU32(a.MotionBufferSize)
	body.PutU16(uint16(len(a.VendorString)))
	body.PutU16(a.MaxRequestLength)
	body.PutU8(byte(len(a.Screens)))
	body.PutU8(byte(len(a.PixmapFormats)))
	body.PutU8(a.ImageByteOrder)
	body.PutU8(a.BitmapBitOrder)
	body.PutU8(a.BitmapScanlineUnit)
	body.PutU8(a.BitmapScanlinePad)
	body.PutU8(a.MinKeycode)
	body.PutU8(a.MaxKeycode)
	body.Pad(4)
	body.PutPaddedBytes(a.VendorString)
	for _, f := range a.PixmapFormats {
		body.PutU8(f.Depth)
		body.PutU8(f.BitsPerPixel)
		body.PutU8(f.ScanlinePad)
		body.Pad(5)
	}
	for _, s := range a.Screens {
		encodeScreen(body, s)
	}

	w := wire.NewWriter(order)
	w.PutU8(1) // status = success
	w.Pad(1)
	w.PutU16(a.ProtocolMajor)
	w.PutU16(a.ProtocolMinor)
	w.PutU16(uint16(wire.AlignTo4(len(body.Bytes())) / 4))
	w.PutBytes(body.Bytes())
	w.AlignBuf()
	return w.Bytes()
}

func encodeScreen(w *wire.Writer, s ScreenInfo) {
	w.PutU32(s.Root)
	w.PutU32(s.DefaultColormap)
	w.PutU32(s.WhitePixel)
	w.PutU32(s.BlackPixel)
	w.PutU32(s.CurrentInputMasks)
	w.PutU16(s.WidthInPixels)
	w.PutU16(s.HeightInPixels)
	w.PutU16(s.WidthInMillimeters)
	w.PutU16(s.HeightInMillimeters)
	w.PutU16(s.MinInstalledMaps)
	w.PutU16(s.MaxInstalledMaps)
	w.PutU32(s.RootVisual)
	w.PutU8(s.BackingStores)
	saveUnders := byte(0)
	if s.SaveUnders {
		saveUnders = 1
	}
	w.PutU8(saveUnders)
	w.PutU8(s.RootDepth)
	w.PutU8(byte(len(s.AllowedDepths)))
	for _, d := range s.AllowedDepths {
		w.PutU8(d.Depth)
		w.Pad(1)
		w.PutU16(uint16(len(d.Visuals)))
		w.Pad(4)
		for _, v := range d.Visuals {
			w.PutU32(v.VisualID)
			w.PutU8(v.Class)
			w.PutU8(v.BitsPerRGBValue)
			w.PutU16(v.ColormapEntries)
			w.PutU32(v.RedMask)
			w.PutU32(v.GreenMask)
			w.PutU32(v.BlueMask)
			w.Pad(4)
		}
	}
}

// EncodeReject serializes the connection-refused header (spec.md §4.8).
func EncodeReject(order wire.ByteOrder, protocolMajor, protocolMinor uint16, reason string) []byte {
	w := wire.NewWriter(order)
	w.PutU8(0) // status = failed
	w.PutU8(byte(len(reason)))
	w.PutU16(protocolMajor)
	w.PutU16(protocolMinor)
	w.PutU16(uint16(wire.AlignTo4(len(reason)) / 4))
	w.PutBytes([]byte(reason))
	w.AlignBuf()
	return w.Bytes()
}
