// Package rpctest provides a scripted Steem node for tests.
package rpctest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// Handler returns the frame answering req. A nil frame sends nothing.
type Handler func(req rpc.Request) []byte

// Node is a WebSocket server speaking the node's call envelope. Requests to
// methods without a handler are answered with an error object.
type Node struct {
	server *httptest.Server

	mu       sync.Mutex
	handlers map[rpc.Method]Handler
	requests []rpc.Request
	conns    []*websocket.Conn
	writeMu  sync.Mutex
}

// NewNode starts a node. Close it when done.
func NewNode() *Node {
	n := &Node{handlers: make(map[rpc.Method]Handler)}
	n.server = httptest.NewServer(http.HandlerFunc(n.serve))
	return n
}

// URL returns the ws:// address of the node.
func (n *Node) URL() string {
	return "ws" + strings.TrimPrefix(n.server.URL, "http")
}

// Handle registers h for method regardless of the sub-API it is sent to.
func (n *Node) Handle(method rpc.Method, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.handlers[method] = h
}

// Requests returns the requests received so far.
func (n *Node) Requests() []rpc.Request {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]rpc.Request(nil), n.requests...)
}

// DropConnections closes every open session from the server side.
func (n *Node) DropConnections() {
	n.mu.Lock()
	conns := n.conns
	n.conns = nil
	n.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Push writes frame to every open session outside of any request.
func (n *Node) Push(frame []byte) {
	n.mu.Lock()
	conns := append([]*websocket.Conn(nil), n.conns...)
	n.mu.Unlock()

	for _, conn := range conns {
		_ = n.write(conn, frame)
	}
}

func (n *Node) write(conn *websocket.Conn, frame []byte) error {
	n.writeMu.Lock()
	defer n.writeMu.Unlock()

	return conn.WriteMessage(websocket.TextMessage, frame)
}

// Close drops all sessions and stops the server.
func (n *Node) Close() {
	n.DropConnections()
	n.server.Close()
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	n.mu.Lock()
	n.conns = append(n.conns, conn)
	n.mu.Unlock()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		req, err := rpc.DecodeRequest(msg)
		if err != nil {
			continue
		}

		n.mu.Lock()
		n.requests = append(n.requests, req)
		handler, ok := n.handlers[req.Method]
		n.mu.Unlock()

		if !ok {
			handler = Error(-32601, fmt.Sprintf("method not found: %s", req.Method))
		}

		frame := handler(req)
		if frame == nil {
			continue
		}
		if err := n.write(conn, frame); err != nil {
			return
		}
	}
}

// Result answers with {"id":<id>,"result":v}.
func Result(v any) Handler {
	return func(req rpc.Request) []byte {
		return ResultFrame(req.ID, v)
	}
}

// Error answers with an error object.
func Error(code int, message string) Handler {
	return func(req rpc.Request) []byte {
		return ErrorFrame(req.ID, code, message)
	}
}

// Raw answers with frame verbatim.
func Raw(frame string) Handler {
	return func(rpc.Request) []byte {
		return []byte(frame)
	}
}

// Silent never answers.
func Silent() Handler {
	return func(rpc.Request) []byte { return nil }
}

// ResultFrame encodes a result frame.
func ResultFrame(id uint64, v any) []byte {
	frame, err := json.Marshal(map[string]any{"id": id, "result": v})
	if err != nil {
		panic(err)
	}
	return frame
}

// ErrorFrame encodes an error frame.
func ErrorFrame(id uint64, code int, message string) []byte {
	frame, err := json.Marshal(map[string]any{
		"id":    id,
		"error": map[string]any{"code": code, "message": message},
	})
	if err != nil {
		panic(err)
	}
	return frame
}

// Publish makes the node accept any login and answer get_api_by_name with
// the position of each api in apis, or null for the rest.
func (n *Node) Publish(apis ...rpc.SubAPI) {
	ids := make(map[string]int, len(apis))
	for i, api := range apis {
		ids[string(api)] = i
	}

	n.Handle(rpc.LoginMethod, Result(true))
	n.Handle(rpc.GetAPIByName, func(req rpc.Request) []byte {
		if len(req.Params) > 0 {
			if name, ok := req.Params[0].(string); ok {
				if id, ok := ids[name]; ok {
					return ResultFrame(req.ID, id)
				}
			}
		}
		return ResultFrame(req.ID, nil)
	})
}
