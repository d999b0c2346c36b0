// Package logger configures the process-wide slog logger for indexbuilder.
// Records go to stderr because stdout carries the serialized artifact, and
// every record of one build can be tagged with that build's id so repeated
// builds (benchmark mode) stay distinguishable in the log.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

type buildIDKey struct{}

var buildSeq atomic.Uint64

// Setup installs the default logger on stderr.
func Setup(level string, format string) {
	SetupWriter(os.Stderr, level, format)
}

// SetupWriter installs the default logger on w. format is "json" or "text";
// anything else falls back to text.
func SetupWriter(w io.Writer, level string, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// NewBuildID returns a short id unique within the process: the start time in
// base 36 and a sequence number.
func NewBuildID() string {
	return strconv.FormatInt(time.Now().Unix(), 36) + "-" + strconv.FormatUint(buildSeq.Add(1), 10)
}

// WithBuildID tags every record logged through FromContext with buildID.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	return context.WithValue(ctx, buildIDKey{}, buildID)
}

// BuildID returns the build id carried by ctx, if any.
func BuildID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(buildIDKey{}).(string)
	return id, ok
}

func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id, ok := BuildID(ctx); ok {
		l = l.With("build_id", id)
	}
	return l
}

func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
