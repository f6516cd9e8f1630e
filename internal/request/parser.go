package request

import (
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// Parse performs structural validation of one already-framed request (the
// full frame, header included) and builds its typed ParsedRequest. It never
// consults live server state — an id that structurally looks like a window
// id may not exist; that is the dispatcher's job (spec.md §4.5).
func Parse(frame []byte, order wire.ByteOrder) (ParsedRequest, *xproto.ProtocolError) {
	hdr, err := wire.PeekRequestHeader(frame, order)
	if err != nil {
		return nil, xproto.NewError(xproto.ErrLength, 0, 0, 0)
	}

	if !xproto.IsCoreOpcode(hdr.Opcode) {
		return &ExtensionRequest{opcodeTag: opcodeTag(hdr.Opcode), Minor: hdr.Detail, Payload: frame[4:]}, nil
	}

	r := wire.NewReader(frame, order)
	_, _ = r.U8() // opcode, already known
	_, _ = r.U8() // detail, read per-opcode below where meaningful
	_, _ = r.U16()

	switch hdr.Opcode {
	case xproto.OpCreateWindow:
		return parseCreateWindow(hdr, r)
	case xproto.OpChangeWindowAttrs:
		return parseChangeWindowAttributes(hdr, r)
	case xproto.OpGetWindowAttributes:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &GetWindowAttributesRequest{opcodeTag: tag(hdr), Window: w}
		})
	case xproto.OpDestroyWindow:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &DestroyWindowRequest{opcodeTag: tag(hdr), Window: w}
		})
	case xproto.OpMapWindow:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &MapWindowRequest{opcodeTag: tag(hdr), Window: w}
		})
	case xproto.OpUnmapWindow:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &UnmapWindowRequest{opcodeTag: tag(hdr), Window: w}
		})
	case xproto.OpConfigureWindow:
		return parseConfigureWindow(hdr, r)
	case xproto.OpGetGeometry:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &GetGeometryRequest{opcodeTag: tag(hdr), Drawable: w}
		})
	case xproto.OpInternAtom:
		return parseInternAtom(hdr, r)
	case xproto.OpGetAtomName:
		return parseGetAtomName(hdr, r)
	case xproto.OpChangeProperty:
		return parseChangeProperty(hdr, r)
	case xproto.OpGetProperty:
		return parseGetProperty(hdr, r)
	case xproto.OpGrabPointer:
		return parseGrabPointer(hdr, r)
	case xproto.OpUngrabPointer:
		return parseTimeOnly(hdr, r, func(t uint32) ParsedRequest {
			return &UngrabPointerRequest{opcodeTag: tag(hdr), Time: t}
		})
	case xproto.OpGrabKeyboard:
		return parseGrabKeyboard(hdr, r)
	case xproto.OpUngrabKeyboard:
		return parseTimeOnly(hdr, r, func(t uint32) ParsedRequest {
			return &UngrabKeyboardRequest{opcodeTag: tag(hdr), Time: t}
		})
	case xproto.OpSetInputFocus:
		return parseSetInputFocus(hdr, r)
	case xproto.OpGetInputFocus:
		return &GetInputFocusRequest{opcodeTag: tag(hdr)}, nil
	case xproto.OpCreatePixmap:
		return parseCreatePixmap(hdr, r)
	case xproto.OpFreePixmap:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &FreePixmapRequest{opcodeTag: tag(hdr), Pixmap: w}
		})
	case xproto.OpCreateGC:
		return parseCreateGC(hdr, r)
	case xproto.OpFreeGC:
		return parseWindowOnly(hdr, r, func(w resource.XID) ParsedRequest {
			return &FreeGCRequest{opcodeTag: tag(hdr), GC: w}
		})
	case xproto.OpQueryBestSize:
		return parseQueryBestSize(hdr, r)
	case xproto.OpQueryExtension:
		return parseQueryExtension(hdr, r)
	case xproto.OpListExtensions:
		return &ListExtensionsRequest{opcodeTag: tag(hdr)}, nil
	case xproto.OpChangeHosts:
		return parseChangeHosts(hdr, r)
	case xproto.OpListHosts:
		return &ListHostsRequest{opcodeTag: tag(hdr)}, nil
	case xproto.OpSetAccessControl:
		return &SetAccessControlRequest{opcodeTag: tag(hdr), Enabled: hdr.Detail != 0}, nil
	case xproto.OpNoOperation:
		return &NoOperationRequest{opcodeTag: tag(hdr)}, nil
	default:
		if hdr.Opcode > xproto.OpGetModifierMap && hdr.Opcode < xproto.OpNoOperation {
			return nil, xproto.NewError(xproto.ErrRequest, 0, hdr.Opcode, 0)
		}
		payload, perr := r.Bytes(len(frame) - 4)
		if perr != nil {
			return nil, xproto.NewError(xproto.ErrLength, 0, hdr.Opcode, 0)
		}
		return &RawRequest{opcodeTag: tag(hdr), Detail: hdr.Detail, Payload: payload}, nil
	}
}

func tag(hdr wire.RequestHeader) opcodeTag { return opcodeTag(hdr.Opcode) }

func lengthError(hdr wire.RequestHeader) *xproto.ProtocolError {
	return xproto.NewError(xproto.ErrLength, 0, hdr.Opcode, 0)
}

func valueError(hdr wire.RequestHeader, bad uint32) *xproto.ProtocolError {
	return xproto.NewError(xproto.ErrValue, bad, hdr.Opcode, 0)
}

// parseWindowOnly covers the common shape: 4-byte header + one XID, used by
// DestroyWindow/MapWindow/UnmapWindow/GetGeometry/FreePixmap/FreeGC.
func parseWindowOnly(hdr wire.RequestHeader, r *wire.Reader, build func(resource.XID) ParsedRequest) (ParsedRequest, *xproto.ProtocolError) {
	id, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	return build(resource.XID(id)), nil
}

func parseTimeOnly(hdr wire.RequestHeader, r *wire.Reader, build func(uint32) ParsedRequest) (ParsedRequest, *xproto.ProtocolError) {
	t, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	return build(t), nil
}

func parseCreateWindow(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	wid, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	parent, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	x, err1 := r.I16()
	y, err2 := r.I16()
	width, err3 := r.U16()
	height, err4 := r.U16()
	borderWidth, err5 := r.U16()
	class, err6 := r.U16()
	visual, err7 := r.U32()
	valueMask, err8 := r.U32()
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil || err7 != nil || err8 != nil {
		return nil, lengthError(hdr)
	}
	values, verr := readValueList(r, valueMask)
	if verr != nil {
		return nil, lengthError(hdr)
	}
	return &CreateWindowRequest{
		opcodeTag:   tag(hdr),
		Depth:       hdr.Detail,
		WindowID:    resource.XID(wid),
		Parent:      resource.XID(parent),
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BorderWidth: borderWidth,
		Class:       class,
		Visual:      visual,
		ValueMask:   valueMask,
		Values:      values,
	}, nil
}

// readValueList reads one u32 per set bit in mask, the CreateWindow/
// ChangeWindowAttributes/ConfigureWindow/CreateGC "value list" shape
// (spec.md §4.4/§4.5 generic list encoding).
func readValueList(r *wire.Reader, mask uint32) ([]uint32, error) {
	var values []uint32
	for bit := 0; bit < 32; bit++ {
		if mask&(1<<uint(bit)) == 0 {
			continue
		}
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parseChangeWindowAttributes(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	win, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	mask, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	values, verr := readValueList(r, mask)
	if verr != nil {
		return nil, lengthError(hdr)
	}
	return &ChangeWindowAttributesRequest{opcodeTag: tag(hdr), Window: resource.XID(win), ValueMask: mask, Values: values}, nil
}

func parseConfigureWindow(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	win, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	mask, err := r.U16()
	if err != nil {
		return nil, lengthError(hdr)
	}
	if _, err := r.U16(); err != nil { // 2 bytes unused
		return nil, lengthError(hdr)
	}
	values, verr := readValueList(r, uint32(mask))
	if verr != nil {
		return nil, lengthError(hdr)
	}
	return &ConfigureWindowRequest{opcodeTag: tag(hdr), Window: resource.XID(win), ValueMask: mask, Values: values}, nil
}

func parseInternAtom(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	nameLen, err := r.U16()
	if err != nil {
		return nil, lengthError(hdr)
	}
	if _, err := r.U16(); err != nil { // unused
		return nil, lengthError(hdr)
	}
	nameBytes, err := r.Bytes(int(nameLen))
	if err != nil {
		return nil, lengthError(hdr)
	}
	padLen := wire.AlignTo4(int(nameLen)) - int(nameLen)
	pad, err := r.Bytes(padLen)
	if err != nil {
		return nil, lengthError(hdr)
	}
	if !wire.PaddingIsZero(pad) {
		return nil, xproto.NewError(xproto.ErrValue, 0, hdr.Opcode, 0)
	}
	return &InternAtomRequest{opcodeTag: tag(hdr), OnlyIfExists: hdr.Detail != 0, Name: string(nameBytes)}, nil
}

func parseGetAtomName(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	id, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	return &GetAtomNameRequest{opcodeTag: tag(hdr), Atom: id}, nil
}

func parseChangeProperty(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	win, e1 := r.U32()
	prop, e2 := r.U32()
	typ, e3 := r.U32()
	format, e4 := r.U8()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return nil, lengthError(hdr)
	}
	if _, err := r.Bytes(3); err != nil { // unused
		return nil, lengthError(hdr)
	}
	dataLen, err := r.U32()
	if err != nil {
		return nil, lengthError(hdr)
	}
	if format != 8 && format != 16 && format != 32 {
		return nil, valueError(hdr, uint32(format))
	}
	elemBytes := int(format) / 8
	totalBytes := int(dataLen) * elemBytes
	data, err := r.Bytes(totalBytes)
	if err != nil {
		return nil, lengthError(hdr)
	}
	padLen := wire.AlignTo4(totalBytes) - totalBytes
	if _, err := r.Bytes(padLen); err != nil {
		return nil, lengthError(hdr)
	}
	return &ChangePropertyRequest{
		opcodeTag: tag(hdr), Mode: hdr.Detail, Window: resource.XID(win),
		Property: prop, Type: typ, Format: format, Data: data,
	}, nil
}

func parseGetProperty(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	win, e1 := r.U32()
	prop, e2 := r.U32()
	typ, e3 := r.U32()
	longOffset, e4 := r.U32()
	longLength, e5 := r.U32()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil {
		return nil, lengthError(hdr)
	}
	return &GetPropertyRequest{
		opcodeTag: tag(hdr), Delete: hdr.Detail != 0, Window: resource.XID(win),
		Property: prop, Type: typ, LongOffset: longOffset, LongLength: longLength,
	}, nil
}

func parseGrabPointer(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	grabWindow, e1 := r.U32()
	eventMask, e2 := r.U16()
	pointerMode, e3 := r.U8()
	keyboardMode, e4 := r.U8()
	confineTo, e5 := r.U32()
	cursor, e6 := r.U32()
	t, e7 := r.U32()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil || e7 != nil {
		return nil, lengthError(hdr)
	}
	return &GrabPointerRequest{
		opcodeTag: tag(hdr), OwnerEvents: hdr.Detail != 0, GrabWindow: resource.XID(grabWindow),
		EventMask: eventMask, PointerMode: pointerMode, KeyboardMode: keyboardMode,
		ConfineTo: resource.XID(confineTo), Cursor: resource.XID(cursor), Time: t,
	}, nil
}

func parseGrabKeyboard(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	grabWindow, e1 := r.U32()
	t, e2 := r.U32()
	pointerMode, e3 := r.U8()
	keyboardMode, e4 := r.U8()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return nil, lengthError(hdr)
	}
	if _, err := r.Bytes(2); err != nil { // unused
		return nil, lengthError(hdr)
	}
	return &GrabKeyboardRequest{
		opcodeTag: tag(hdr), OwnerEvents: hdr.Detail != 0, GrabWindow: resource.XID(grabWindow),
		Time: t, PointerMode: pointerMode, KeyboardMode: keyboardMode,
	}, nil
}

func parseSetInputFocus(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	focus, e1 := r.U32()
	t, e2 := r.U32()
	if e1 != nil || e2 != nil {
		return nil, lengthError(hdr)
	}
	return &SetInputFocusRequest{opcodeTag: tag(hdr), RevertTo: hdr.Detail, Focus: resource.XID(focus), Time: t}, nil
}

func parseCreatePixmap(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	pid, e1 := r.U32()
	drawable, e2 := r.U32()
	width, e3 := r.U16()
	height, e4 := r.U16()
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return nil, lengthError(hdr)
	}
	if width == 0 || height == 0 {
		return nil, valueError(hdr, 0)
	}
	return &CreatePixmapRequest{
		opcodeTag: tag(hdr), Depth: hdr.Detail, PixmapID: resource.XID(pid),
		Drawable: resource.XID(drawable), Width: width, Height: height,
	}, nil
}

func parseCreateGC(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	cid, e1 := r.U32()
	drawable, e2 := r.U32()
	mask, e3 := r.U32()
	if e1 != nil || e2 != nil || e3 != nil {
		return nil, lengthError(hdr)
	}
	values, err := readValueList(r, mask)
	if err != nil {
		return nil, lengthError(hdr)
	}
	return &CreateGCRequest{opcodeTag: tag(hdr), CID: resource.XID(cid), Drawable: resource.XID(drawable), ValueMask: mask, Values: values}, nil
}

func parseQueryBestSize(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	drawable, e1 := r.U32()
	width, e2 := r.U16()
	height, e3 := r.U16()
	if e1 != nil || e2 != nil || e3 != nil {
		return nil, lengthError(hdr)
	}
	return &QueryBestSizeRequest{opcodeTag: tag(hdr), Class: hdr.Detail, Drawable: resource.XID(drawable), Width: width, Height: height}, nil
}

func parseQueryExtension(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	name, err := r.String16()
	if err != nil {
		return nil, lengthError(hdr)
	}
	return &QueryExtensionRequest{opcodeTag: tag(hdr), Name: name}, nil
}

func parseChangeHosts(hdr wire.RequestHeader, r *wire.Reader) (ParsedRequest, *xproto.ProtocolError) {
	family, e1 := r.U8()
	if e1 != nil {
		return nil, lengthError(hdr)
	}
	if _, err := r.U8(); err != nil { // unused
		return nil, lengthError(hdr)
	}
	addrLen, e2 := r.U16()
	if e2 != nil {
		return nil, lengthError(hdr)
	}
	addr, err := r.Bytes(int(addrLen))
	if err != nil {
		return nil, lengthError(hdr)
	}
	padLen := wire.AlignTo4(int(addrLen)) - int(addrLen)
	if _, err := r.Bytes(padLen); err != nil {
		return nil, lengthError(hdr)
	}
	return &ChangeHostsRequest{opcodeTag: tag(hdr), Insert: hdr.Detail != 0, Family: family, Address: addr}, nil
}
