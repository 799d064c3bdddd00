package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

//nopHandler discards every record, Enabled returns false so callers skip formatting
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

//SetLogger configures the logger shared by all lifeview packages
//by default nothing is logged, pass nil to restore the silent logger
//
//levels in use:
//  - Debug: per frame details (paint counts, request timings)
//  - Info: lifecycle (server started, driver stopped)
//  - Warn: recoverable problems (grid shape mismatch)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

//Logger returns the current logger, safe for concurrent use
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
