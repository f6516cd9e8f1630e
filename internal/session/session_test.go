package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/wire"
)

func newTestSession() *Session {
	return New(1, "trace-1", resource.ClientRange{Base: 0x00200000, Mask: 0x000FFFFF}, 4)
}

func TestHandshakeHappyPath(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.BeginHandshake(byte(wire.LSBFirst)))
	assert.Equal(t, AwaitingSetup, s.State())

	w := wire.NewWriter(wire.LSBFirst)
	w.Pad(1) // unused byte after byte-order byte
	w.PutU16(11)
	w.PutU16(0)
	w.PutU16(0)
	w.PutU16(0)
	w.Pad(2)

	req, err := s.CompleteSetup(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(11), req.ProtocolMajor)
	assert.Equal(t, SetupReplying, s.State())

	require.NoError(t, s.FinishSetupReply())
	assert.Equal(t, Serving, s.State())
}

func TestHandshakeRejectsBadByteOrder(t *testing.T) {
	s := newTestSession()
	err := s.BeginHandshake(0xFF)
	assert.Error(t, err)
	assert.Equal(t, Failed, s.State())
}

func TestHandshakeRejectsWrongProtocolMajor(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.BeginHandshake(byte(wire.LSBFirst)))

	w := wire.NewWriter(wire.LSBFirst)
	w.Pad(1)
	w.PutU16(10) // wrong major version
	w.PutU16(0)
	w.PutU16(0)
	w.PutU16(0)
	w.Pad(2)

	_, err := s.CompleteSetup(w.Bytes())
	assert.Error(t, err)
	assert.Equal(t, Failed, s.State())
}

func TestSequencePreIncrementsBeforeFirstRequest(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, uint16(1), s.NextSequence())
	assert.Equal(t, uint16(2), s.NextSequence())
	assert.Equal(t, uint16(2), s.Sequence())
}

func TestEnqueueOverflowSignalsAndPauses(t *testing.T) {
	s := newTestSession()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Enqueue([]byte{byte(i)}))
	}
	err := s.Enqueue([]byte{0xFF})
	assert.Error(t, err)
	assert.True(t, s.Paused())
}

func TestDrainSendQueueUnpauses(t *testing.T) {
	s := newTestSession()
	for i := 0; i < 5; i++ {
		_ = s.Enqueue([]byte{byte(i)})
	}
	require.True(t, s.Paused())
	drained := s.DrainSendQueue()
	assert.Len(t, drained, 5)
	assert.False(t, s.Paused())
}

func TestOwnedIDTracking(t *testing.T) {
	s := newTestSession()
	s.TrackOwned(10)
	s.TrackOwned(11)
	assert.ElementsMatch(t, []resource.XID{10, 11}, s.OwnedIDs())

	s.UntrackOwned(10)
	assert.ElementsMatch(t, []resource.XID{11}, s.OwnedIDs())
}

func TestInvalidTransitionRejected(t *testing.T) {
	s := newTestSession()
	err := s.Transition(Serving)
	assert.Error(t, err)
}
