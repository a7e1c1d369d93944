// Package logging provides the compiler's structured logging, adapted
// from the teacher's core/util.go custom-level scheme (LevelTrace =
// slog.LevelInfo+1, LevelWaveform = slog.LevelInfo+2): one extra
// log/slog level, LevelCompile, for per-stage compiler tracing
// (normalize/infer/lower/bind/schedule), gated at construction time
// rather than by the teacher's compile-time PrintToggle constant.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// LevelCompile sits one step below slog.LevelInfo, so a handler at the
// default Info level drops it, while enabling compile tracing (lowering
// the handler's level to LevelCompile) leaves ordinary Info logs from
// other packages unaffected.
const LevelCompile slog.Level = slog.LevelInfo - 1

// EnvEnableCompileTrace is the environment toggle EnabledFromEnv reads:
// the runtime-configurable analogue of the teacher's EnableWaveformLog
// constant.
const EnvEnableCompileTrace = "PATCHC_LOG_COMPILE"

// New returns a slog.Logger writing to os.Stderr. When enableCompileTrace is
// false, LevelCompile lines are filtered at the handler rather than at
// each call site, mirroring the teacher's EnableWaveformLog early-return
// in LogPEState.
func New(enableCompileTrace bool) *slog.Logger {
	level := slog.LevelInfo
	if enableCompileTrace {
		level = LevelCompile
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// EnabledFromEnv reports whether EnvEnableCompileTrace asks for compile
// tracing, the runtime equivalent of flipping the teacher's PrintToggle.
func EnabledFromEnv() bool {
	v, ok := os.LookupEnv(EnvEnableCompileTrace)
	return ok && v != "" && v != "0"
}

// Compile logs msg at LevelCompile, the per-stage tracing counterpart
// to the teacher's Trace helper.
func Compile(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(context.Background(), LevelCompile, msg, args...)
}
