package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rxserver/rxserver/internal/backend"
	"github.com/rxserver/rxserver/internal/config"
	"github.com/rxserver/rxserver/internal/wire"
)

func testConfig() config.ServerConfig {
	cfg := config.ServerConfig{}
	cfg.Limits.MaxClients = 8
	cfg.Limits.SendQueueHighWaterMark = 64
	cfg.Limits.BigRequestsEnabled = true
	return cfg
}

// TestHandshakeOverPipeAcceptsClient drives Core.handleConn over an in-memory
// net.Pipe, exercising the byte-order byte, setup request, and setup-accept
// reply exactly as a real client would send them (spec.md §4.8).
func TestHandshakeOverPipeAcceptsClient(t *testing.T) {
	st, err := NewServerState(backend.NewHeadless(), 8, 1024, 768)
	require.NoError(t, err)
	core := NewCore(testConfig(), st)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.handleConn(ctx, serverConn)

	w := wire.NewWriter(wire.LSBFirst)
	w.PutU8(byte(wire.LSBFirst))
	w.Pad(1)
	w.PutU16(11)
	w.PutU16(0)
	w.PutU16(0)
	w.PutU16(0)
	w.Pad(2)
	_, err = clientConn.Write(w.Bytes())
	require.NoError(t, err)

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply := make([]byte, 8)
	n, err := clientConn.Read(reply)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 8)
	require.Equal(t, byte(1), reply[0], "setup reply status should be success")
}
