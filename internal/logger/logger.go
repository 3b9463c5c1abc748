// Package logger configures the process-wide slog logger.
//
// Console output is a compact single-line format; the optional log file gets
// JSON records. Both sinks share the same level and the same redaction, so
// credentials and code never reach either one.
package logger

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	current    *slog.Logger
	isTerminal = term.IsTerminal
)

func init() {
	Init(Options{Level: LevelInfo})
}

// Options controls where log records go.
type Options struct {
	Level slog.Level
	// File receives JSON records when set (e.g. an *os.File).
	File io.Writer
	// NoConsole suppresses stderr output, for front ends that own the terminal.
	NoConsole bool
}

// Init replaces the global logger.
func Init(opts Options) {
	hopts := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: RedactAttr}

	var sinks fanout
	if !opts.NoConsole {
		color := opts.File == nil && isTerminal(int(os.Stderr.Fd()))
		sinks = append(sinks, NewConsoleHandler(os.Stderr, hopts, color))
	}
	if opts.File != nil {
		sinks = append(sinks, slog.NewJSONHandler(opts.File, hopts))
	}

	var h slog.Handler
	switch len(sinks) {
	case 0:
		h = slog.NewTextHandler(io.Discard, hopts)
	case 1:
		h = sinks[0]
	default:
		h = sinks
	}
	current = slog.New(h)
	slog.SetDefault(current)
}

func Debug(msg string, args ...any) { current.Debug(msg, args...) }
func Info(msg string, args ...any)  { current.Info(msg, args...) }
func Warn(msg string, args ...any)  { current.Warn(msg, args...) }
func Error(msg string, args ...any) { current.Error(msg, args...) }

// With returns a child of the global logger carrying args on every record.
func With(args ...any) *slog.Logger { return current.With(args...) }

// ForRun returns a logger tagged with a stream run id.
func ForRun(runID string) *slog.Logger { return current.With("run_id", runID) }
