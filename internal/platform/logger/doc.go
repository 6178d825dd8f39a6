// Package logger provides structured logging functionality for the application.
//
// It builds a log/slog JSON logger from configuration, optionally tees the
// output into a size-rotated file, and carries request-scoped loggers in
// context.Context.
package logger
