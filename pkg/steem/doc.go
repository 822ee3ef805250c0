// Package steem is a typed client for a Steem node.
//
// NewClient opens a WebSocket session, logs in (anonymously unless
// credentials are configured) and probes which sub-APIs the node publishes.
// The typed methods of Client wrap the node's database, login, account by key
// and network broadcast APIs; Client also implements rpc.Invoker for methods
// without a typed wrapper:
//
//	followers, err := rpc.Invoke[map[string]any](ctx, client, rpc.FollowAPI, "get_followers", rpc.ShapeArray, "alice", "", "blog", 10)
//
// Errors are classified with rpc.Classify.
package steem
