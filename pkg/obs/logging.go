// Package obs provides the pipeline's ambient observability helpers: a
// slog handler that prepends the operator-facing markers from the error
// handling design ([!] for warnings/errors, [+] for successes, [i] for
// info, DEBUG: for alignment traces), and a small progress/ETA tracker
// used by the Embedder and Batch Extractor.
package obs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// successKey is set via slog.Bool(successKey, true) on Info records that
// represent a completed unit of work, so the handler can emit "[+]"
// instead of the default "[i]".
const successKey = "civicpipe.success"

// Success returns a slog.Attr marking an Info-level record as a success
// line ("[+]") rather than a plain informational line ("[i]").
func Success() slog.Attr { return slog.Bool(successKey, true) }

// markerHandler wraps an io.Writer and renders records with the
// spec's marker convention instead of slog's default text format.
type markerHandler struct {
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewMarkerHandler builds a slog.Handler writing "[!]"/"[+]"/"[i]"/"DEBUG:"
// prefixed lines to w. Debug lines are only emitted when level permits
// slog.LevelDebug (off by default in production, per the error design).
func NewMarkerHandler(w io.Writer, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &markerHandler{w: w, level: level}
}

func (h *markerHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *markerHandler) Handle(_ context.Context, r slog.Record) error {
	marker := markerFor(r)
	line := fmt.Sprintf("%s %s", marker, r.Message)

	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == successKey {
			return true
		}
		fields[a.Key] = a.Value.Any()
		return true
	})
	for k, v := range fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func markerFor(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return "[!]"
	case r.Level == slog.LevelWarn:
		return "[!]"
	case r.Level < slog.LevelInfo:
		return "DEBUG:"
	default:
		isSuccess := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == successKey && a.Value.Bool() {
				isSuccess = true
				return false
			}
			return true
		})
		if isSuccess {
			return "[+]"
		}
		return "[i]"
	}
}

func (h *markerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &markerHandler{w: h.w, level: h.level, group: h.group}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h *markerHandler) WithGroup(name string) slog.Handler {
	next := &markerHandler{w: h.w, level: h.level, attrs: h.attrs}
	next.group = name
	return next
}

// Progress tracks throughput for a long-running loop (Embedder batches,
// Batch Extractor waves) and reports an ETA extrapolated from the
// elapsed rate.
type Progress struct {
	label     string
	total     int
	done      int
	startedAt time.Time
}

// NewProgress creates a tracker for a loop expected to process total units.
// total may be 0 when the count isn't known in advance (ETA is omitted).
func NewProgress(label string, total int) *Progress {
	return &Progress{label: label, total: total, startedAt: time.Now()}
}

// Advance records n additional completed units and logs progress plus ETA.
func (p *Progress) Advance(n int) {
	p.done += n
	elapsed := time.Since(p.startedAt)
	rate := float64(p.done) / elapsed.Seconds()

	attrs := []any{"done", p.done, "elapsed", elapsed.Round(time.Second)}
	if p.total > 0 {
		attrs = append(attrs, "total", p.total)
		if rate > 0 {
			remaining := float64(p.total-p.done) / rate
			attrs = append(attrs, "eta", time.Duration(remaining*float64(time.Second)).Round(time.Second))
		}
	}
	slog.Info(p.label, attrs...)
}
