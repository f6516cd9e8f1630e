package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

func TestParseDestroyWindow(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(xproto.OpDestroyWindow)
	w.PutU8(0)
	w.PutU16(2)
	w.PutU32(0x00200001)
	frame := w.Bytes()

	parsed, perr := Parse(frame, wire.LSBFirst)
	require.Nil(t, perr)
	req, ok := parsed.(*DestroyWindowRequest)
	require.True(t, ok)
	assert.Equal(t, resource.XID(0x00200001), req.Window)
	assert.Equal(t, byte(xproto.OpDestroyWindow), req.Opcode())
}

func TestParseCreateWindowWithValueList(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(xproto.OpCreateWindow)
	w.PutU8(24) // depth in detail byte
	w.PutU16(0) // length placeholder, parser doesn't re-check total size here
	w.PutU32(0x00200002) // window id
	w.PutU32(0x00200001) // parent
	w.PutI16(10)
	w.PutI16(20)
	w.PutU16(100)
	w.PutU16(200)
	w.PutU16(1)
	w.PutU16(1) // class InputOutput
	w.PutU32(0x21)
	mask := uint32(0x00000008) // bit 3 set: one value
	w.PutU32(mask)
	w.PutU32(0xFF00FF00) // the one value

	parsed, perr := Parse(w.Bytes(), wire.LSBFirst)
	require.Nil(t, perr)
	req, ok := parsed.(*CreateWindowRequest)
	require.True(t, ok)
	assert.Equal(t, byte(24), req.Depth)
	assert.Equal(t, resource.XID(0x00200002), req.WindowID)
	assert.Equal(t, int16(10), req.X)
	assert.Equal(t, uint16(100), req.Width)
	require.Len(t, req.Values, 1)
	assert.Equal(t, uint32(0xFF00FF00), req.Values[0])
}

func TestParseInternAtomRejectsNonZeroPadding(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(xproto.OpInternAtom)
	w.PutU8(0)
	w.PutU16(0)
	w.PutU16(3) // name length "FOO"
	w.PutU16(0) // unused
	w.Buf = append(w.Buf, 'F', 'O', 'O')
	w.Buf = append(w.Buf, 1) // non-zero pad byte (should be 1 byte of zero)

	_, perr := Parse(w.Bytes(), wire.LSBFirst)
	require.NotNil(t, perr)
	assert.Equal(t, xproto.ErrValue, perr.Code)
}

func TestParseInternAtomRoundTrip(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(xproto.OpInternAtom)
	w.PutU8(1) // only_if_exists
	w.PutU16(0)
	w.PutString16("WM_NAME")

	parsed, perr := Parse(w.Bytes(), wire.LSBFirst)
	require.Nil(t, perr)
	req, ok := parsed.(*InternAtomRequest)
	require.True(t, ok)
	assert.True(t, req.OnlyIfExists)
	assert.Equal(t, "WM_NAME", req.Name)
}

func TestParseUnknownCoreOpcodeYieldsRaw(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(xproto.OpPolyLine) // not individually parsed
	w.PutU8(0)
	w.PutU16(1)

	parsed, perr := Parse(w.Bytes(), wire.LSBFirst)
	require.Nil(t, perr)
	_, ok := parsed.(*RawRequest)
	assert.True(t, ok)
}

func TestParseExtensionOpcode(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(200)
	w.PutU8(5)
	w.PutU16(1)

	parsed, perr := Parse(w.Bytes(), wire.LSBFirst)
	require.Nil(t, perr)
	ext, ok := parsed.(*ExtensionRequest)
	require.True(t, ok)
	assert.Equal(t, byte(200), ext.Opcode())
	assert.Equal(t, byte(5), ext.Minor)
}

func TestParseTruncatedFrameIsLengthError(t *testing.T) {
	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(xproto.OpDestroyWindow)
	w.PutU8(0)
	w.PutU16(2)
	// omit the 4-byte window id entirely

	_, perr := Parse(w.Bytes(), wire.LSBFirst)
	require.NotNil(t, perr)
	assert.Equal(t, xproto.ErrLength, perr.Code)
}
