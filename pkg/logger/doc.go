// Package logger builds the application's slog.Logger.
//
// Records are written as JSON (or text in development) and, when a Sentry DSN
// is configured, mirrored to Sentry: errors become issues, warnings are kept
// as breadcrumbs-style logs. Extractors copy request-scoped values such as
// the request id or the signed-in username from the context into every record.
package logger
