// Package xproto holds the fixed wire vocabulary of the X11 core protocol:
// opcode, error-code, and event-code tables, plus the connection-setup
// message shapes (spec.md §6).
package xproto

// Core request opcodes (major = opcode), spec.md §6.
const (
	OpCreateWindow        = 1
	OpChangeWindowAttrs   = 2
	OpGetWindowAttributes = 3
	OpDestroyWindow       = 4
	OpDestroySubwindows   = 5
	OpChangeSaveSet       = 6
	OpReparentWindow      = 7
	OpMapWindow           = 8
	OpMapSubwindows       = 9
	OpUnmapWindow         = 10
	OpUnmapSubwindows     = 11
	OpConfigureWindow     = 12
	OpCirculateWindow     = 13
	OpGetGeometry         = 14
	OpQueryTree           = 15

	OpInternAtom       = 16
	OpGetAtomName      = 17
	OpChangeProperty   = 18
	OpDeleteProperty   = 19
	OpGetProperty      = 20
	OpListProperties   = 21
	OpSetSelectionOwn  = 22
	OpGetSelectionOwn  = 23
	OpConvertSelection = 24

	OpSendEvent        = 25
	OpGrabPointer      = 26
	OpUngrabPointer    = 27
	OpGrabButton       = 28
	OpUngrabButton     = 29
	OpChangeActivePtr  = 30
	OpGrabKeyboard     = 31
	OpUngrabKeyboard   = 32
	OpGrabKey          = 33
	OpUngrabKey        = 34
	OpAllowEvents      = 35
	OpGrabServer       = 36
	OpUngrabServer     = 37
	OpQueryPointer     = 38
	OpGetMotionEvents  = 39
	OpTranslateCoords  = 40
	OpWarpPointer      = 41
	OpSetInputFocus    = 42
	OpGetInputFocus    = 43
	OpQueryKeymap      = 44

	OpOpenFont       = 45
	OpCloseFont      = 46
	OpQueryFont      = 47
	OpQueryTextExt   = 48
	OpListFonts      = 49
	OpListFontsWInfo = 50
	OpSetFontPath    = 51
	OpGetFontPath    = 52

	OpCreatePixmap  = 53
	OpFreePixmap    = 54

	OpCreateGC        = 55
	OpChangeGC        = 56
	OpCopyGC          = 57
	OpSetDashes       = 58
	OpSetClipRects    = 59
	OpFreeGC          = 60

	OpClearArea       = 61
	OpCopyArea        = 62
	OpCopyPlane       = 63
	OpPolyPoint       = 64
	OpPolyLine        = 65
	OpPolySegment     = 66
	OpPolyRectangle   = 67
	OpPolyArc         = 68
	OpFillPoly        = 69
	OpPolyFillRect    = 70
	OpPolyFillArc     = 71
	OpPutImage        = 72
	OpGetImage        = 73

	OpPolyText8  = 74
	OpPolyText16 = 75
	OpImageText8 = 76
	OpImageText16 = 77

	OpCreateColormap    = 78
	OpFreeColormap      = 79
	OpCopyColormapAndFree = 80
	OpInstallColormap   = 81
	OpUninstallColormap = 82
	OpListInstalledCmap = 83
	OpAllocColor        = 84
	OpAllocNamedColor   = 85
	OpAllocColorCells   = 86
	OpAllocColorPlanes  = 87
	OpFreeColors        = 88
	OpStoreColors       = 89
	OpStoreNamedColor   = 90
	OpQueryColors       = 91
	OpLookupColor       = 92

	OpCreateCursor       = 93
	OpCreateGlyphCursor  = 94
	OpFreeCursor         = 95
	OpRecolorCursor      = 96

	OpQueryBestSize = 97

	OpQueryExtension = 98
	OpListExtensions = 99

	OpChangeKeyboardMapping = 100
	OpGetKeyboardMapping    = 101
	OpChangeKeyboardControl = 102
	OpGetKeyboardControl    = 103
	OpBell                  = 104
	OpChangePointerControl  = 105
	OpGetPointerControl     = 106

	OpSetScreenSaver = 107
	OpGetScreenSaver = 108

	OpChangeHosts     = 109
	OpListHosts       = 110
	OpSetAccessControl = 111

	OpSetCloseDownMode = 112
	OpKillClient       = 113
	OpRotateProperties = 114
	OpForceScreenSaver = 115
	OpSetPointerMap    = 116
	OpGetPointerMap    = 117
	OpSetModifierMap   = 118
	OpGetModifierMap   = 119

	OpNoOperation = 127

	// ExtensionOpcodeBase is the first major opcode routed to the extension
	// registry (spec.md §4.5/§6); 1..127 are core opcodes.
	ExtensionOpcodeBase = 128
)

// IsCoreOpcode reports whether opcode names a core (non-extension) request.
func IsCoreOpcode(opcode byte) bool { return opcode >= 1 && opcode < ExtensionOpcodeBase }

// ChangeWindowAttributes value-mask bits (spec.md §3 Window payload fields
// this opcode can set), in the fixed order their values appear in the
// request's value list.
const (
	CWBackPixmap       uint32 = 1 << 0
	CWBackPixel        uint32 = 1 << 1
	CWBorderPixmap     uint32 = 1 << 2
	CWBorderPixel      uint32 = 1 << 3
	CWBitGravity       uint32 = 1 << 4
	CWWinGravity       uint32 = 1 << 5
	CWBackingStore     uint32 = 1 << 6
	CWBackingPlanes    uint32 = 1 << 7
	CWBackingPixel     uint32 = 1 << 8
	CWOverrideRedirect uint32 = 1 << 9
	CWSaveUnder        uint32 = 1 << 10
	CWEventMask        uint32 = 1 << 11
	CWDontPropagate    uint32 = 1 << 12
	CWColormap         uint32 = 1 << 13
	CWCursor           uint32 = 1 << 14
)
