package wire

import "fmt"

// MaxCoreRequestLength is the largest request length (in 4-byte units) the
// 16-bit header length field can express; it is advertised in the setup
// reply. Longer requests use the BIG-REQUESTS zero-length form, which
// FrameRequest accepts whenever bigRequestsEnabled is set; it does not
// consult the extension registry.
const MaxCoreRequestLength = 65535

// RequestHeader is the 4-byte prefix on every post-handshake request
// (spec.md §4.1).
type RequestHeader struct {
	Opcode byte
	Detail byte
	Length uint16 // total request size in 4-byte units, minimum 1
}

// PeekRequestHeader reads the 4-byte request header without consuming it from
// the session's receive buffer; the caller decides, from Length, whether the
// full frame has arrived yet.
func PeekRequestHeader(buf []byte, order ByteOrder) (RequestHeader, error) {
	if len(buf) < 4 {
		return RequestHeader{}, ErrNeedMoreData
	}
	r := NewReader(buf, order)
	opcode, _ := r.U8()
	detail, _ := r.U8()
	length, _ := r.U16()
	return RequestHeader{Opcode: opcode, Detail: detail, Length: length}, nil
}

// FrameRequest returns the exact byte count of the next framed request in
// buf, or ErrNeedMoreData if buf does not yet hold the whole frame. A caller
// must not invoke the parser on fewer than the returned byte count
// (spec.md §4.1 framing contract).
func FrameRequest(buf []byte, order ByteOrder, bigRequestsEnabled bool) (int, error) {
	hdr, err := PeekRequestHeader(buf, order)
	if err != nil {
		return 0, err
	}
	length := int(hdr.Length)
	if length == 0 {
		if !bigRequestsEnabled {
			return 0, fmt.Errorf("wire: zero-length request without BIG-REQUESTS")
		}
		// BIG-REQUESTS: a zero 16-bit length means the real length follows
		// as an extra u32 immediately after the 4-byte header.
		if len(buf) < 8 {
			return 0, ErrNeedMoreData
		}
		r := NewReader(buf[4:8], order)
		big, _ := r.U32()
		length = int(big)
	}
	total := length * 4
	if total < 4 {
		return 0, fmt.Errorf("wire: request length field %d below minimum frame size", length)
	}
	if len(buf) < total {
		return 0, ErrNeedMoreData
	}
	return total, nil
}

// ReplyHeader is the fixed 8-byte prefix shared by every reply, following
// the 1-byte reply indicator: {indicator=1, detail, sequence, length_extra}.
// A full reply is exactly 32 + length_extra*4 bytes (spec.md §4.1).
const (
	ReplyIndicator = 1
	FixedReplySize = 32
	FixedEventSize = 32
	FixedErrorSize = 32
)

// EncodeReplyPrefix writes the common 8-byte reply prefix: indicator, detail,
// sequence, and the extra-length word. Handlers append the remaining
// (32-8)+lengthExtra*4 bytes of reply-specific payload.
func EncodeReplyPrefix(order ByteOrder, detail byte, sequence uint16, lengthExtra uint32) []byte {
	w := NewWriter(order)
	w.PutU8(ReplyIndicator)
	w.PutU8(detail)
	w.PutU16(sequence)
	w.PutU32(lengthExtra)
	return w.Bytes()
}

// EncodeErrorMessage builds the fixed 32-byte on-protocol error wire message
// (spec.md §4.1, §7).
func EncodeErrorMessage(order ByteOrder, errorCode byte, sequence uint16, badValue uint32, minorOpcode uint16, majorOpcode byte) []byte {
	w := NewWriter(order)
	w.PutU8(0) // event_code = 0 marks an error
	w.PutU8(errorCode)
	w.PutU16(sequence)
	w.PutU32(badValue)
	w.PutU16(minorOpcode)
	w.PutU8(majorOpcode)
	w.Pad(FixedErrorSize - len(w.Bytes()))
	return w.Bytes()
}

// EncodeEventPrefix writes the fixed 4-byte event prefix; callers append the
// remaining 28 bytes of event-specific payload and must pad to exactly
// FixedEventSize.
func EncodeEventPrefix(order ByteOrder, eventCode byte, detail byte, sequence uint16) []byte {
	w := NewWriter(order)
	w.PutU8(eventCode)
	w.PutU8(detail)
	w.PutU16(sequence)
	return w.Bytes()
}
