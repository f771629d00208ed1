// Package logging provides the logger used across a run. Messages are either
// rendered as GitHub Actions workflow commands or through log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the structured logging facade passed to every component.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// Group starts a collapsible section; EndGroup closes it.
	Group(name string)
	EndGroup()
}

// NewActions creates a logger that writes GitHub Actions workflow commands to w.
func NewActions(w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	return &actionsLogger{w: w}
}

type actionsLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (a *actionsLogger) Debug(msg string, args ...any) { a.command("debug", msg, args) }
func (a *actionsLogger) Warn(msg string, args ...any)  { a.command("warning", msg, args) }
func (a *actionsLogger) Error(msg string, args ...any) { a.command("error", msg, args) }
func (a *actionsLogger) Group(name string)             { a.command("group", name, nil) }
func (a *actionsLogger) EndGroup()                     { a.command("endgroup", "", nil) }

func (a *actionsLogger) Info(msg string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.w, msg+formatArgs(args))
}

func (a *actionsLogger) command(name, msg string, args []any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.w, "::%s::%s\n", name, escapeData(msg+formatArgs(args)))
}

// escapeData escapes workflow command data the way the Actions toolkit does.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return b.String()
}

// NewText creates a slog text-handler logger writing to w with the given level.
func NewText(w io.Writer, level slog.Leveler) Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{l: slog.New(h)}
}

type slogLogger struct{ l *slog.Logger }

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
func (s *slogLogger) Group(name string)             { s.l.Info("begin", "group", name) }
func (s *slogLogger) EndGroup()                     {}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Group(string)         {}
func (nopLogger) EndGroup()            {}
