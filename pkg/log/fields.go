package log

import "fmt"

// Keys under which the bridge tags session and call entries, so the dialer
// and client lines about one request can be joined.
const (
	KeySession   = "session"
	KeyURL       = "url"
	KeyAPI       = "api"
	KeyMethod    = "method"
	KeyRequestID = "requestID"
)

// WithSession tags lg with a WebSocket session id and the node URL.
func WithSession(lg Logger, id, url string) Logger {
	return lg.WithKV(KeySession, id).WithKV(KeyURL, url)
}

// WithCall tags lg with the sub-API and method of one call. Both are logged
// as plain strings.
func WithCall(lg Logger, api, method fmt.Stringer) Logger {
	return lg.WithKV(KeyAPI, api.String()).WithKV(KeyMethod, method.String())
}
