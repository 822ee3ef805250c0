// Package rpc implements the client side of the Steem node JSON-RPC protocol
// over a WebSocket session.
//
// Every call is wrapped in the node's "call" envelope:
//
//	{"id": 1, "method": "call", "params": ["database_api", "get_account_count", []]}
//
// and answered with either a result or an error object carrying the same id:
//
//	{"id": 1, "result": 42}
//	{"id": 1, "error": {"code": 1, "message": "..."}}
//
// A WebsocketDialer keeps exactly one request in flight. Concurrent callers
// queue on the dialer, every call is bounded by the configured request
// timeout, and a timed-out call leaves the session open.
//
// Errors returned by the package wrap one of four kinds which Classify
// reports: ErrConnectionFailure, ErrTimeout, ErrTransformation and ErrRemote.
//
// Results are converted by Transform with an explicit Shape. Records that the
// node encodes as pairs are decoded with IndexedEntry ([index, record]) and
// Variant (["tag", {...}]).
package rpc
