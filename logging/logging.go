// Package logging provides the line-oriented slog handler feedq logs with.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler is a slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Every record written by one invocation carries the same operation id so
// the lines of a single request can be grepped together.
type Handler struct {
	mu    *sync.Mutex
	w     io.Writer
	opID  string
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewHandler creates a Handler writing records at or above level to w.
func NewHandler(w io.Writer, opID string, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{mu: &sync.Mutex{}, w: w, opID: opID, level: level}
}

// New returns a logger writing to w under a fresh operation id.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(w, NewOperationID(), level))
}

// NewOperationID returns a random id for one CLI invocation.
func NewOperationID() string {
	return uuid.NewString()
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := fmt.Fprintf(h.w, "%s\t%s\t%s\t%s", ts, r.Level, h.opID, r.Message); err != nil {
		return err
	}
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, "\t%s=%v", h.qualify(a.Key), a.Value)
		return true
	})

	_, err := fmt.Fprintln(h.w)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.qualify(name)
	return &next
}

func (h *Handler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}
