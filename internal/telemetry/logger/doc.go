// Package logger provides structured logging for TokStore.
//
// It builds log/slog loggers with a shared, dynamically adjustable level
// and a ReplaceAttr hook that masks secret material:
//
//   - logger.go: handler construction and the dynamic level
//   - context.go: request ID propagation through context.Context
//   - redact.go: sensitive field redaction
//
// Components receive a *slog.Logger; nothing in TokStore logs through a
// package global except the process entry points.
package logger
