package server

import "github.com/rxserver/rxserver/internal/xproto"

// rootVisualID and rootDepth pick the screen's default rendering format: a
// 24-bit TrueColor visual, matching the common modern default
// (oldsrc/x11/visuals/types.rs VisualClass::TrueColor, §12 supplemented
// feature — a real visual/depth table instead of one opaque visual field).
const (
	rootVisualID = 0x21
	rootDepth    = 24
)

// buildScreen constructs the ScreenInfo this core advertises in its setup
// reply, with a small per-depth VisualType table (oldsrc/x11/visuals).
func buildScreen(root, colormap uint32, widthPx, heightPx uint16) xproto.ScreenInfo {
	trueColor24 := xproto.VisualType{
		VisualID:        rootVisualID,
		Class:           xproto.VisualClassTrueColor,
		BitsPerRGBValue: 8,
		ColormapEntries: 256,
		RedMask:         0x00FF0000,
		GreenMask:       0x0000FF00,
		BlueMask:        0x000000FF,
	}
	staticGray1 := xproto.VisualType{
		VisualID:        0x22,
		Class:           xproto.VisualClassStaticGray,
		BitsPerRGBValue: 1,
		ColormapEntries: 2,
	}

	return xproto.ScreenInfo{
		Root:                root,
		DefaultColormap:     colormap,
		WhitePixel:          0x00FFFFFF,
		BlackPixel:          0x00000000,
		CurrentInputMasks:   0,
		WidthInPixels:       widthPx,
		HeightInPixels:      heightPx,
		WidthInMillimeters:  uint16(float64(widthPx) / 96 * 25.4),
		HeightInMillimeters: uint16(float64(heightPx) / 96 * 25.4),
		MinInstalledMaps:    1,
		MaxInstalledMaps:    1,
		RootVisual:          rootVisualID,
		BackingStores:       0, // Never
		SaveUnders:          false,
		RootDepth:           rootDepth,
		AllowedDepths: []xproto.Depth{
			{Depth: rootDepth, Visuals: []xproto.VisualType{trueColor24}},
			{Depth: 1, Visuals: []xproto.VisualType{staticGray1}},
		},
	}
}

// pixmapFormats is the setup reply's global Z-format table, one entry per
// supported depth (spec.md §4.8).
func pixmapFormats() []xproto.PixmapFormat {
	return []xproto.PixmapFormat{
		{Depth: 1, BitsPerPixel: 1, ScanlinePad: 32},
		{Depth: rootDepth, BitsPerPixel: 32, ScanlinePad: 32},
	}
}
