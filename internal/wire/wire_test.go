package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU16RoundTripBothOrders(t *testing.T) {
	for _, order := range []ByteOrder{LSBFirst, MSBFirst} {
		w := NewWriter(order)
		w.PutU16(0xBEEF)
		r := NewReader(w.Bytes(), order)
		v, err := r.U16()
		require.NoError(t, err)
		assert.Equal(t, uint16(0xBEEF), v)
	}
}

func TestU32RoundTripBothOrders(t *testing.T) {
	for _, order := range []ByteOrder{LSBFirst, MSBFirst} {
		w := NewWriter(order)
		w.PutU32(0xCAFEBABE)
		r := NewReader(w.Bytes(), order)
		v, err := r.U32()
		require.NoError(t, err)
		assert.Equal(t, uint32(0xCAFEBABE), v)
	}
}

func TestString16PaddingIsZeroAndAligned(t *testing.T) {
	w := NewWriter(LSBFirst)
	w.PutString16("FOO") // length 3 -> 1 pad byte
	assert.Equal(t, 0, len(w.Bytes())%4)

	r := NewReader(w.Bytes(), LSBFirst)
	s, err := r.String16()
	require.NoError(t, err)
	assert.Equal(t, "FOO", s)
}

func TestString16RejectsNonZeroPadding(t *testing.T) {
	w := NewWriter(LSBFirst)
	w.PutString16("FOO")
	w.Buf[len(w.Buf)-1] = 0xFF // corrupt the single pad byte

	r := NewReader(w.Buf, LSBFirst)
	_, err := r.String16()
	assert.Error(t, err)
}

func TestNeedMoreData(t *testing.T) {
	r := NewReader([]byte{0x01}, LSBFirst)
	_, err := r.U32()
	assert.ErrorIs(t, err, ErrNeedMoreData)
}

func TestFrameRequestNeedsMoreData(t *testing.T) {
	// opcode=1, detail=0, length=3 (12 bytes) but only 4 bytes supplied.
	buf := []byte{1, 0, 3, 0}
	_, err := FrameRequest(buf, LSBFirst, false)
	assert.ErrorIs(t, err, ErrNeedMoreData)
}

func TestFrameRequestExactLength(t *testing.T) {
	buf := make([]byte, 12)
	buf[0], buf[2] = 1, 3 // opcode 1, length 3 words = 12 bytes
	n, err := FrameRequest(buf, LSBFirst, false)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestFrameRequestZeroLengthWithoutBigRequestsIsError(t *testing.T) {
	buf := make([]byte, 4) // opcode/detail default 0, length field = 0
	_, err := FrameRequest(buf, LSBFirst, false)
	assert.Error(t, err)
}

func TestFrameRequestBigRequestsExtendedLength(t *testing.T) {
	buf := make([]byte, 8+8) // header + extra length word + 8 bytes payload = 4 words
	buf[2], buf[3] = 0, 0    // length = 0 signals BIG-REQUESTS extended form
	buf[4] = 4               // extra length = 4 words = 16 bytes total
	n, err := FrameRequest(buf, LSBFirst, true)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
}

func TestEncodeErrorMessageIs32Bytes(t *testing.T) {
	msg := EncodeErrorMessage(LSBFirst, 2, 7, 0, 1, 1)
	assert.Len(t, msg, FixedErrorSize)
	assert.Equal(t, byte(0), msg[0])
	assert.Equal(t, byte(2), msg[1])
}

func TestAlignTo4(t *testing.T) {
	assert.Equal(t, 0, AlignTo4(0))
	assert.Equal(t, 4, AlignTo4(1))
	assert.Equal(t, 4, AlignTo4(4))
	assert.Equal(t, 8, AlignTo4(5))
}
