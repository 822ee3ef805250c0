package rpc

import (
	"context"
	"encoding/json"
)

// Invoker sends a method call to a sub-API and returns the decoded response.
// A returned response may still carry a node error; Transform turns it into a
// *RemoteError.
type Invoker interface {
	Invoke(ctx context.Context, api SubAPI, method Method, params ...any) (*Response, error)
}

// DialerInvoker adapts a Dialer into an Invoker that always sends sub-API
// names on the wire.
type DialerInvoker struct {
	Dialer Dialer
}

func (i DialerInvoker) Invoke(ctx context.Context, api SubAPI, method Method, params ...any) (*Response, error) {
	req := NewRequest(api, method, params...)
	return i.Dialer.Call(ctx, &req)
}

// Invoke calls method on api and converts the result with Transform.
//
//	counts, err := rpc.Invoke[uint64](ctx, client, rpc.DatabaseAPI, rpc.GetAccountCount, rpc.ShapeScalar)
func Invoke[T any](ctx context.Context, inv Invoker, api SubAPI, method Method, shape Shape, params ...any) ([]T, error) {
	res, err := inv.Invoke(ctx, api, method, params...)
	if err != nil {
		return nil, err
	}
	return Transform[T](res, shape)
}

// InvokeOne calls method on api and decodes the whole result into one T.
func InvokeOne[T any](ctx context.Context, inv Invoker, api SubAPI, method Method, params ...any) (T, error) {
	var zero T
	res, err := inv.Invoke(ctx, api, method, params...)
	if err != nil {
		return zero, err
	}
	return TransformOne[T](res)
}

// InvokeRaw calls method on api and returns the result untouched. It serves
// methods whose result shape is not modelled.
func InvokeRaw(ctx context.Context, inv Invoker, api SubAPI, method Method, params ...any) (json.RawMessage, error) {
	res, err := inv.Invoke(ctx, api, method, params...)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Result, nil
}
