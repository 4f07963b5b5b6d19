// SPDX-License-Identifier: Unlicense OR MIT

// Package logx provides the library's slog handler: leveled output to
// standard error, colored when stderr is a terminal, with the level floor
// read once from the OVERTIDE_LOG environment variable.
package logx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// LevelTrace sits below slog.LevelDebug for the highest-volume diagnostics.
const LevelTrace = slog.Level(-8)

// levelOff disables all output ("none" in OVERTIDE_LOG).
const levelOff = slog.Level(127)

// ParseLevel maps an OVERTIDE_LOG value to a level floor. Unknown values
// fall back to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return levelOff
	default:
		return slog.LevelWarn
	}
}

// New returns a logger writing to standard error, filtered at the level
// named by the OVERTIDE_LOG environment variable (default warn).
func New() *slog.Logger {
	return slog.New(&handler{
		level: ParseLevel(os.Getenv("OVERTIDE_LOG")),
		color: isatty.IsTerminal(os.Stderr.Fd()),
		out:   termenv.NewOutput(os.Stderr),
	})
}

type handler struct {
	level slog.Level
	color bool
	out   *termenv.Output
	attrs []slog.Attr
	mu    sync.Mutex
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func levelTag(l slog.Level) (string, termenv.ANSIColor) {
	switch {
	case l < slog.LevelDebug:
		return "TRACE", termenv.ANSIBrightBlack
	case l < slog.LevelInfo:
		return "DEBUG", termenv.ANSICyan
	case l < slog.LevelWarn:
		return "INFO", termenv.ANSIGreen
	case l < slog.LevelError:
		return "WARN", termenv.ANSIYellow
	default:
		return "ERROR", termenv.ANSIRed
	}
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	tag, col := levelTag(r.Level)
	if h.color {
		b.WriteString(h.out.String(tag).Foreground(col).Bold().String())
	} else {
		b.WriteString(tag)
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(os.Stderr, b.String())
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := &handler{level: h.level, color: h.color, out: h.out}
	nh.attrs = append(append(nh.attrs, h.attrs...), attrs...)
	return nh
}

func (h *handler) WithGroup(name string) slog.Handler {
	// Groups are flattened; the library only logs flat key/value pairs.
	return h
}
