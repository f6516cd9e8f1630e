package dispatch

import "github.com/rxserver/rxserver/internal/xproto"

// asProtocolError normalizes a collaborator error into a ProtocolError
// attributed to major, filling in the major opcode that lookup helpers
// across internal/window, internal/gcontext and internal/pixmap leave zero
// (spec.md §4.5: major/minor opcode and sequence are dispatch-time
// concerns). A collaborator error that is not already a ProtocolError is a
// programming error, not a protocol one, so it is reported as
// Implementation rather than silently swallowed.
func asProtocolError(err error, major byte) *xproto.ProtocolError {
	if perr, ok := err.(*xproto.ProtocolError); ok {
		if perr.MajorOpcode == 0 {
			perr.MajorOpcode = major
		}
		return perr
	}
	return xproto.NewError(xproto.ErrImplementation, 0, major, 0)
}
