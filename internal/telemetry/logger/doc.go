// Package logger builds the structured loggers of SharedStore.
//
// It configures log/slog:
//
//   - logger.go: handler selection and the shared, reloadable level
//   - context.go: request ID propagation into log records
//   - redact.go: masking of secrets and truncation of stored values
//
// Host and client components take a plain *slog.Logger.
package logger
