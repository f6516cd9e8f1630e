package wire

import "fmt"

// ErrNeedMoreData signals that buf does not yet hold a complete value; it is
// not a protocol error, and callers must retry once more bytes arrive
// (spec.md §4.1 "Failure modes").
var ErrNeedMoreData = fmt.Errorf("wire: need more data")

// Reader decodes fixed and padded variable-length fields from a byte slice
// according to a negotiated ByteOrder. It never copies buf; callers own its
// lifetime for the duration of a single parse.
type Reader struct {
	Buf   []byte
	Off   int
	Order ByteOrder
}

func NewReader(buf []byte, order ByteOrder) *Reader {
	return &Reader{Buf: buf, Order: order}
}

func (r *Reader) remaining() int { return len(r.Buf) - r.Off }

func (r *Reader) need(n int) error {
	if r.remaining() < n {
		return ErrNeedMoreData
	}
	return nil
}

func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.Buf[r.Off]
	r.Off++
	return v, nil
}

func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	b := r.Buf[r.Off : r.Off+2]
	r.Off += 2
	if r.Order == LSBFirst {
		return uint16(b[0]) | uint16(b[1])<<8, nil
	}
	return uint16(b[1]) | uint16(b[0])<<8, nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	b := r.Buf[r.Off : r.Off+4]
	r.Off += 4
	if r.Order == LSBFirst {
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
	}
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24, nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// Skip advances past n unused/pad bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.Off += n
	return nil
}

// Bytes returns a sub-slice of n raw bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.Buf[r.Off : r.Off+n]
	r.Off += n
	return b, nil
}

// PaddingIsZero checks that n trailing/padding bytes just consumed were all
// zero, per spec.md §4.1 "the codec enforces that padding is zero on read".
func PaddingIsZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// String16 reads a u16 length prefix and 2 unused bytes, then the string
// followed by zero padding to a 4-byte boundary, validating that the padding
// is in fact zero.
func (r *Reader) String16() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	if _, err := r.Bytes(2); err != nil {
		return "", err
	}
	s, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	padLen := AlignTo4(int(n)) - int(n)
	pad, err := r.Bytes(padLen)
	if err != nil {
		return "", err
	}
	if !PaddingIsZero(pad) {
		return "", fmt.Errorf("wire: non-zero padding after string")
	}
	return string(s), nil
}

// String8 reads a u8-length-prefixed string followed by zero padding that
// brings the string bytes (not counting the prefix) to a multiple of 4.
func (r *Reader) String8() (string, error) {
	n, err := r.U8()
	if err != nil {
		return "", err
	}
	s, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	padLen := AlignTo4(int(n)) - int(n)
	pad, err := r.Bytes(padLen)
	if err != nil {
		return "", err
	}
	if !PaddingIsZero(pad) {
		return "", fmt.Errorf("wire: non-zero padding after string")
	}
	return string(s), nil
}
