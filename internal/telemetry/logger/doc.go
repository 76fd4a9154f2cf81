// Package logger provides structured logging for keyden.
//
// It builds slog loggers with JSON or text output:
//
//   - logger.go: handler construction and the runtime-adjustable level
//   - context.go: context propagation of logger and request ID
//   - redact.go: credential masking for attributes and raw command lines
//
// @req RQ-0403
// @design DS-0402
package logger
