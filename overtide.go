// SPDX-License-Identifier: Unlicense OR MIT

/*
Package overtide renders styled subtitle documents to pixel-accurate
overlay bitmaps: given a parsed subtitle tree and a playback timestamp it
produces premultiplied BGRA output for compositing over video, either
straight into a framebuffer or as an instanced image stream for GPU-style
replay.

The input tree comes from format parsers (see package subtitle); fonts
come from a platform provider queried through package font. A Renderer is
single-threaded; run one per goroutine.
*/
package overtide

import (
	"log/slog"
	"os"
	"strings"

	"overtide.org/internal/logx"
)

// Library is the process-level handle carrying the logger and debug
// flags. All other state lives in explicit handles below it.
type Library struct {
	log   *slog.Logger
	debug map[string]bool
}

// Init reads the OVERTIDE_LOG and OVERTIDE_DEBUG environment variables
// once and returns the library handle. OVERTIDE_DEBUG is a comma list of
// debug flags, e.g. "layout,glyphs".
func Init() *Library {
	debug := make(map[string]bool)
	for _, flag := range strings.Split(os.Getenv("OVERTIDE_DEBUG"), ",") {
		if flag = strings.TrimSpace(flag); flag != "" {
			debug[flag] = true
		}
	}
	return &Library{log: logx.New(), debug: debug}
}

// Logger exposes the library's logger for embedding applications.
func (l *Library) Logger() *slog.Logger { return l.log }

// DebugEnabled reports whether a named debug flag was set at Init.
func (l *Library) DebugEnabled(flag string) bool { return l.debug[flag] }

// SubtitleContext describes the video frame subtitles are rendered over.
type SubtitleContext struct {
	// DPI scales CSS pixel sizes; 72 renders CSS pixels 1:1.
	DPI         uint32
	VideoWidth  float32
	VideoHeight float32
	// Padding insets the subtitle area from the video edges, in pixels.
	PaddingLeft   float32
	PaddingRight  float32
	PaddingTop    float32
	PaddingBottom float32
}
