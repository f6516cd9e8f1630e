package session

import (
	"fmt"

	"github.com/rxserver/rxserver/internal/wire"
	"github.com/rxserver/rxserver/internal/xproto"
)

// ErrProtocolMismatch is a fatal handshake error: the client's major version
// is not 11 (spec.md §4.8 "protocol_major==11").
type ErrProtocolMismatch struct{ Got uint16 }

func (e *ErrProtocolMismatch) Error() string {
	return fmt.Sprintf("session: unsupported protocol major version %d", e.Got)
}

// BeginHandshake consumes the first handshake byte and transitions
// Uninitialized -> AwaitingSetup, or -> Failed on an invalid byte-order byte
// (spec.md §4.8).
func (s *Session) BeginHandshake(firstByte byte) error {
	order, err := wire.ParseByteOrder(firstByte)
	if err != nil {
		_ = s.Transition(Failed)
		return err
	}
	s.Order = order
	return s.Transition(AwaitingSetup)
}

// CompleteSetup parses the setup request body (everything after the
// byte-order byte) and validates the protocol version, transitioning to
// SetupReplying on success or Failed on a version mismatch.
func (s *Session) CompleteSetup(body []byte) (xproto.SetupRequest, error) {
	req, err := xproto.ParseSetupRequest(body, s.Order)
	if err != nil {
		_ = s.Transition(Failed)
		return xproto.SetupRequest{}, err
	}
	if req.ProtocolMajor != xproto.ProtocolMajorVersion {
		_ = s.Transition(Failed)
		return req, &ErrProtocolMismatch{Got: req.ProtocolMajor}
	}
	if err := s.Transition(SetupReplying); err != nil {
		return req, err
	}
	return req, nil
}

// FinishSetupReply transitions SetupReplying -> Serving once the setup
// reply has been flushed (spec.md §4.8 "flush complete").
func (s *Session) FinishSetupReply() error {
	return s.Transition(Serving)
}
