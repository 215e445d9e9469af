// Package logx wraps zerolog behind a small structured-logging API with
// swappable sinks: console, append-only file, and an optional rate-limited
// Telegram relay for operator-visible warnings.
package logx
