package xproto

// EventCode identifies an asynchronous event (spec.md §6).
type EventCode byte

const (
	EvKeyPress         EventCode = 2
	EvKeyRelease       EventCode = 3
	EvButtonPress      EventCode = 4
	EvButtonRelease    EventCode = 5
	EvMotionNotify     EventCode = 6
	EvEnterNotify      EventCode = 7
	EvLeaveNotify      EventCode = 8
	EvFocusIn          EventCode = 9
	EvFocusOut         EventCode = 10
	EvKeymapNotify     EventCode = 11
	EvExpose           EventCode = 12
	EvGraphicsExposure EventCode = 13
	EvNoExposure       EventCode = 14
	EvVisibilityNotify EventCode = 15
	EvCreateNotify     EventCode = 16
	EvDestroyNotify    EventCode = 17
	EvUnmapNotify      EventCode = 18
	EvMapNotify        EventCode = 19
	EvMapRequest       EventCode = 20
	EvReparentNotify   EventCode = 21
	EvConfigureNotify  EventCode = 22
	EvConfigureRequest EventCode = 23
	EvGravityNotify    EventCode = 24
	EvResizeRequest    EventCode = 25
	EvCirculateNotify  EventCode = 26
	EvCirculateRequest EventCode = 27
	EvPropertyNotify   EventCode = 28
	EvSelectionClear   EventCode = 29
	EvSelectionRequest EventCode = 30
	EvSelectionNotify  EventCode = 31
	EvColormapNotify   EventCode = 32
	EvClientMessage    EventCode = 33
	EvMappingNotify    EventCode = 34
)

// Event mask bits, used for per-window event selection (spec.md §3, §4.7).
const (
	EventMaskKeyPress             uint32 = 1 << 0
	EventMaskKeyRelease           uint32 = 1 << 1
	EventMaskButtonPress          uint32 = 1 << 2
	EventMaskButtonRelease        uint32 = 1 << 3
	EventMaskEnterWindow          uint32 = 1 << 4
	EventMaskLeaveWindow          uint32 = 1 << 5
	EventMaskPointerMotion        uint32 = 1 << 6
	EventMaskExposure             uint32 = 1 << 15
	EventMaskVisibilityChange     uint32 = 1 << 16
	EventMaskStructureNotify      uint32 = 1 << 17
	EventMaskResizeRedirect       uint32 = 1 << 18
	EventMaskSubstructureNotify   uint32 = 1 << 19
	EventMaskSubstructureRedirect uint32 = 1 << 20
	EventMaskFocusChange          uint32 = 1 << 21
	EventMaskPropertyChange       uint32 = 1 << 22
	EventMaskColormapChange       uint32 = 1 << 23
	EventMaskKeymapState          uint32 = 1 << 14
	EventMaskOwnerGrabButton      uint32 = 1 << 24
)

// Predefined atom IDs (spec.md §4.3: "the full set is fixed at 68 names").
// Only the subset spec.md names explicitly is enumerated here by name;
// predefinedNames in package atom carries the complete table.
const (
	AtomPrimary   = 1
	AtomSecondary = 2
	AtomString    = 31
	AtomWMName    = 39
	AtomWMClass   = 67
	AtomAtomType  = 4
)
