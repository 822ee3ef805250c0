// Package log is the structured logging facade used by the bridge.
//
// Components never reach for a global logger. A Logger is either passed in
// explicitly or carried on the context:
//
//	lg := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	ctx = log.SetContextLogger(ctx, lg.WithName("steem"))
//	...
//	log.FromContext(ctx).Warn("sub-api not published by node", "api", "follow_api")
//
// When the context holds a valid OpenTelemetry span, SetContextLogger wraps the
// logger in a SpanLogger so every entry is also recorded as a span event and
// carries traceId/spanId fields.
//
// WithSession and WithCall attach the session and call keys (KeySession,
// KeyAPI, KeyMethod and friends) that the dialer and the client share.
//
// Implementations:
//
//   - ZapLogger: zap backed, console, logfmt or json output
//   - NoopLogger: discards everything, the default when nothing is configured
//   - SpanLogger: decorator that mirrors entries onto a span
package log
