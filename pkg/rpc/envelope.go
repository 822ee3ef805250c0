package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// callMethod is the JSON-RPC method of every outbound frame; the real
// procedure travels inside params.
const callMethod = "call"

// Request is one remote call.
//
// On the wire it is encoded as
//
//	{"id": 7, "method": "call", "params": ["database_api", "get_content", ["alice", "hello-world"]]}
//
// Params keep their order. A structured parameter is a single element of the
// inner array holding an object; it is never flattened.
type Request struct {
	// ID is assigned by the dialer when the request is sent.
	ID     uint64
	API    SubAPI
	// APIID, when set, replaces the sub-API name with the numeric id the node
	// reported during discovery.
	APIID  *uint32
	Method Method
	Params []any
}

// NewRequest builds a request for method on api. The id is assigned on send.
func NewRequest(api SubAPI, method Method, params ...any) Request {
	return Request{
		API:    api,
		Method: method,
		Params: params,
	}
}

type wireRequest struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params [3]any `json:"params"`
}

// MarshalJSON emits the fixed call envelope.
func (r Request) MarshalJSON() ([]byte, error) {
	var api any = string(r.API)
	if r.APIID != nil {
		api = *r.APIID
	}

	params := r.Params
	if params == nil {
		params = []any{}
	}

	return json.Marshal(wireRequest{
		ID:     r.ID,
		Method: callMethod,
		Params: [3]any{api, string(r.Method), params},
	})
}

// EncodeRequest returns the text frame for r.
func EncodeRequest(r Request) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}
	return data, nil
}

// DecodeRequest parses a call envelope. The rpctest stub node reads incoming
// requests with it; the dialer itself never decodes requests.
func DecodeRequest(data []byte) (Request, error) {
	var wire struct {
		ID     uint64            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrProtocolViolation, err)
	}
	if wire.Method != callMethod || len(wire.Params) != 3 {
		return Request{}, fmt.Errorf("%w: not a call envelope", ErrProtocolViolation)
	}

	req := Request{ID: wire.ID}
	var apiID uint32
	if err := json.Unmarshal(wire.Params[0], &apiID); err == nil {
		req.APIID = &apiID
	} else if err := json.Unmarshal(wire.Params[0], &req.API); err != nil {
		return Request{}, fmt.Errorf("%w: invalid sub-api: %w", ErrProtocolViolation, err)
	}
	if err := json.Unmarshal(wire.Params[1], &req.Method); err != nil {
		return Request{}, fmt.Errorf("%w: invalid method: %w", ErrProtocolViolation, err)
	}

	dec := json.NewDecoder(bytes.NewReader(wire.Params[2]))
	dec.UseNumber()
	if err := dec.Decode(&req.Params); err != nil {
		return Request{}, fmt.Errorf("%w: invalid params: %w", ErrProtocolViolation, err)
	}
	if req.Params == nil {
		req.Params = []any{}
	}

	return req, nil
}

// ResponseError is the error object of a failed call.
type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Response is a decoded inbound frame. Exactly one of Result and Error is set.
type Response struct {
	ID     uint64
	Result json.RawMessage
	Error  *ResponseError
}

// DecodeResponse parses an inbound frame. Frames that are not a JSON object,
// lack an id, or carry neither or both of result and error are protocol
// violations and are reported as connection failures.
func DecodeResponse(data []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("malformed frame: %w", err))
	}

	rawID, hasID := fields["id"]
	result, hasResult := fields["result"]
	rawErr, hasError := fields["error"]

	switch {
	case !hasID:
		return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("frame without id"))
	case hasResult && hasError:
		return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("frame with both result and error"))
	case !hasResult && !hasError:
		return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("frame with neither result nor error"))
	}

	res := &Response{}
	if err := json.Unmarshal(rawID, &res.ID); err != nil {
		return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("invalid id %s: %w", rawID, err))
	}

	if hasError {
		res.Error = &ResponseError{}
		if err := json.Unmarshal(rawErr, res.Error); err != nil {
			return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("invalid error object: %w", err))
		}
		return res, nil
	}

	res.Result = result
	return res, nil
}

// Err returns the node error as a *RemoteError, or nil.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return &RemoteError{
		Code:    r.Error.Code,
		Message: r.Error.Message,
		Data:    r.Error.Data,
	}
}
