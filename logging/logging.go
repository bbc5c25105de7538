// Package logging builds the slog loggers used across propshare.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidFormat indicates an unsupported log format.
var ErrInvalidFormat = errors.New("logging: unsupported log format")

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("logging: %w", err)
	}
	return l, nil
}

// New returns a logger writing to w. Format "text" renders through zerolog's
// console writer; "json" emits one JSON object per record.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text", "plain":
		// zerolog's console writer expects "message" rather than "msg"
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.MessageKey {
				return a
			}
			if a.Value.Kind() == slog.KindString {
				return slog.Any(zerolog.MessageFieldName, a.Value)
			}
			return slog.String(zerolog.MessageFieldName, fmt.Sprint(a.Value.Any()))
		}
		h = slog.NewJSONHandler(&zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					return strings.ToUpper(ll)
				}
				return "????"
			},
			FormatMessage: func(i interface{}) string {
				if s, ok := i.(string); ok {
					return s
				}
				return fmt.Sprint(i)
			},
		}, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return slog.New(h), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
