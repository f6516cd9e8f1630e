package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/rxserver/rxserver/internal/config"
	"github.com/rxserver/rxserver/internal/request"
	"github.com/rxserver/rxserver/internal/resource"
	"github.com/rxserver/rxserver/internal/rxlog"
	"github.com/rxserver/rxserver/internal/session"
	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// Core drives the accept loop over every configured transport against one
// shared ServerState (spec.md §4.9).
type Core struct {
	cfg   config.ServerConfig
	state *ServerState

	listeners []net.Listener
	conns     conc.WaitGroup

	nextClientID atomic.Uint32
}

func NewCore(cfg config.ServerConfig, state *ServerState) *Core {
	return &Core{cfg: cfg, state: state}
}

// Run opens every configured transport and accepts connections until ctx is
// cancelled, then drains in-flight sessions before returning (spec.md §4.9
// "broadcasts a quiesce signal, lets sessions drain, then releases backend
// surfaces").
func (c *Core) Run(ctx context.Context) error {
	display := c.cfg.Display.Number

	unixPath := fmt.Sprintf("%s/X%d", strings.TrimSuffix(c.cfg.Network.UnixSocketDir, "/"), display)
	if err := os.MkdirAll(c.cfg.Network.UnixSocketDir, 0755); err != nil {
		return fmt.Errorf("server: create unix socket dir: %w", err)
	}
	os.Remove(unixPath)
	unixListener, err := net.Listen("unix", unixPath)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", unixPath, err)
	}
	c.listeners = append(c.listeners, unixListener)
	log.Info().Str("socket", unixPath).Msg("server: listening on unix socket")

	if c.cfg.Network.EnableTCP {
		addr := fmt.Sprintf("%s:%d", c.cfg.Network.TCPBindAddr, 6000+display)
		tcpListener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("server: listen on %s: %w", addr, err)
		}
		c.listeners = append(c.listeners, tcpListener)
		log.Info().Str("addr", addr).Msg("server: listening on tcp")
	}

	for _, l := range c.listeners {
		l := l
		c.conns.Go(func() { c.acceptLoop(ctx, l) })
	}

	<-ctx.Done()
	return c.Stop()
}

// Stop closes every listener, which unblocks their accept loops, then waits
// for all in-flight connection goroutines to exit.
func (c *Core) Stop() error {
	for _, l := range c.listeners {
		_ = l.Close()
	}
	c.conns.Wait()
	return nil
}

func (c *Core) acceptLoop(ctx context.Context, l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("addr", l.Addr().String()).Msg("server: accept error")
			return
		}
		conn := conn
		c.conns.Go(func() { c.handleConn(ctx, conn) })
	}
}

// handleConn drives one client's handshake and request loop end to end
// (spec.md §4.8), ending with its resources released back to the core.
func (c *Core) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := rxlog.NewConnectionID()
	logger := rxlog.For(connID)

	idRange, ordinal, err := c.state.IDs.Acquire()
	if err != nil {
		logger.Warn().Err(err).Msg("server: connection refused, id space exhausted")
		_, _ = conn.Write(xproto.EncodeReject(wire.LSBFirst, xproto.ProtocolMajorVersion, 0, "id space exhausted"))
		return
	}
	defer c.state.IDs.Release(ordinal)

	clientID := resource.ClientID(c.nextClientID.Add(1))
	sess := session.New(clientID, connID, idRange, c.cfg.Limits.SendQueueHighWaterMark)

	if err := c.handshake(conn, sess); err != nil {
		logger.Info().Err(err).Msg("server: handshake failed")
		return
	}

	c.state.Router.RegisterClient(clientID, sess)
	defer c.releaseClient(clientID, sess)
	defer c.state.Router.UnregisterClient(clientID)

	logger.Info().Uint32("client_id", uint32(clientID)).Msg("server: client connected")

	var workers conc.WaitGroup
	done := make(chan struct{})
	defer close(done)
	workers.Go(func() { c.writeLoop(conn, sess, done) })
	c.readLoop(ctx, conn, sess, clientID, logger)
	workers.Wait()
}

// releaseClient tears down every resource this client owned, the way a
// client disconnect must per spec.md §5 "a client close cancels any
// deferred handlers belonging to it" and §4.2 resource cleanup on close.
func (c *Core) releaseClient(clientID resource.ClientID, sess *session.Session) {
	c.state.Lock()
	defer c.state.Unlock()
	for _, id := range sess.OwnedIDs() {
		if _, err := c.state.Tree.DestroyWindow(id); err == nil {
			continue
		}
		if err := c.state.Pixmaps.Free(context.Background(), id); err == nil {
			continue
		}
		_ = c.state.GCs.Free(id)
	}
}

// handshake performs the byte-order byte, setup request, and setup reply
// exchange (spec.md §4.8).
func (c *Core) handshake(conn net.Conn, sess *session.Session) error {
	first := make([]byte, 1)
	if _, err := readFull(conn, first); err != nil {
		return err
	}
	if err := sess.BeginHandshake(first[0]); err != nil {
		return err
	}

	fixed := make([]byte, 11)
	if _, err := readFull(conn, fixed); err != nil {
		_ = sess.Transition(session.Failed)
		return err
	}
	r := wire.NewReader(fixed[1:], sess.ByteOrder())
	_, _ = r.U16() // major, reread fully in CompleteSetup
	_, _ = r.U16() // minor
	nameLen, err := r.U16()
	if err != nil {
		_ = sess.Transition(session.Failed)
		return err
	}
	dataLen, err := r.U16()
	if err != nil {
		_ = sess.Transition(session.Failed)
		return err
	}

	extra := wire.AlignTo4(int(nameLen)) + wire.AlignTo4(int(dataLen))
	rest := make([]byte, extra)
	if _, err := readFull(conn, rest); err != nil {
		_ = sess.Transition(session.Failed)
		return err
	}

	body := append(append([]byte{}, fixed...), rest...)
	req, err := sess.CompleteSetup(body)
	if err != nil {
		reject := xproto.EncodeReject(sess.ByteOrder(), req.ProtocolMajor, req.ProtocolMinor, err.Error())
		_, _ = conn.Write(reject)
		return err
	}

	accept := xproto.EncodeAccept(sess.ByteOrder(), c.state.buildSetupAccept(sess.IDRange))
	if _, err := conn.Write(accept); err != nil {
		return err
	}
	return sess.FinishSetupReply()
}

// readLoop frames, parses, and dispatches requests until the connection
// closes or ctx is cancelled.
func (c *Core) readLoop(ctx context.Context, conn net.Conn, sess *session.Session, clientID resource.ClientID, logger zerolog.Logger) {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := wire.FrameRequest(sess.RecvBuf(), sess.ByteOrder(), c.cfg.Limits.BigRequestsEnabled)
		if err != nil {
			if !errors.Is(err, wire.ErrNeedMoreData) {
				// A malformed length field desynchronizes framing; spec.md §7
				// "framing desynchronization" is fatal, not recoverable, so the
				// connection closes instead of spinning on reads that can never
				// resolve to a valid frame again.
				logger.Warn().Err(err).Msg("server: fatal framing error, closing connection")
				_ = sess.Transition(session.Failed)
				return
			}
			read, rerr := conn.Read(buf)
			if rerr != nil {
				return
			}
			sess.AppendRecv(buf[:read])
			continue
		}
		sess.NextSequence()
		frame := append([]byte{}, sess.RecvBuf()[:n]...)
		sess.ConsumeRecv(n)

		parsed, perr := request.Parse(frame, sess.ByteOrder())
		if perr != nil {
			msg := wire.EncodeErrorMessage(sess.ByteOrder(), byte(perr.Code), sess.Sequence(), perr.BadValue, perr.MinorOpcode, perr.MajorOpcode)
			if err := sess.Enqueue(msg); err != nil {
				logger.Error().Err(err).Msg("server: send queue overflow")
				return
			}
			continue
		}
		c.state.Lock()
		c.state.Dispatcher.Dispatch(ctx, sess, clientID, parsed)
		c.state.Unlock()
	}
}

// writeLoop flushes whatever Enqueue has appended, woken by Session.Signal
// rather than polling (spec.md §5 "socket write" is a permitted suspension
// point independent of request handling).
func (c *Core) writeLoop(conn net.Conn, sess *session.Session, done <-chan struct{}) {
	for {
		select {
		case <-done:
			for _, msg := range sess.DrainSendQueue() {
				if _, err := conn.Write(msg); err != nil {
					return
				}
			}
			return
		case <-sess.Signal():
			for _, msg := range sess.DrainSendQueue() {
				if _, err := conn.Write(msg); err != nil {
					return
				}
			}
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
