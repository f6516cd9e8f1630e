// Package wire implements the endian-aware, padded wire format shared by
// every X11 request, reply, event, and error (spec.md §4.1).
package wire

import "fmt"

// ByteOrder is the per-connection endianness negotiated on the first byte of
// the client handshake: 'l' (0x6c) selects least-significant-byte-first,
// 'B' (0x42) selects most-significant-byte-first.
type ByteOrder byte

const (
	LSBFirst ByteOrder = 'l'
	MSBFirst ByteOrder = 'B'
)

// ParseByteOrder validates the first handshake byte.
func ParseByteOrder(b byte) (ByteOrder, error) {
	switch ByteOrder(b) {
	case LSBFirst, MSBFirst:
		return ByteOrder(b), nil
	default:
		return 0, fmt.Errorf("wire: invalid byte order byte %#x", b)
	}
}

// AlignTo4 returns the smallest multiple of 4 that is >= n.
func AlignTo4(n int) int {
	return (n + 3) &^ 3
}

// PadTo4 appends zero bytes to buf until its length is a multiple of 4.
func PadTo4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}
