package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Shape tells Transform how a result maps onto typed values.
type Shape int

const (
	// ShapeAuto treats an array result as ShapeArray and anything else as
	// ShapeScalar.
	ShapeAuto Shape = iota
	// ShapeScalar decodes the whole result into a single value.
	ShapeScalar
	// ShapeArray requires an array result and decodes every element.
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeArray:
		return "array"
	default:
		return "auto"
	}
}

// Transform converts a decoded response into typed values.
//
// A response carrying an error yields a *RemoteError. Otherwise the result is
// decoded according to shape; a value that does not fit T yields a
// *TransformationError and no partial result. A null result decodes to the
// zero T for ShapeScalar and to no elements for ShapeArray.
func Transform[T any](res *Response, shape Shape) ([]T, error) {
	if res == nil {
		return nil, connectionFailure(ErrProtocolViolation, fmt.Errorf("nil response"))
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(res.Result)
	if shape == ShapeAuto {
		shape = ShapeScalar
		if len(raw) > 0 && raw[0] == '[' {
			shape = ShapeArray
		}
	}

	target := reflect.TypeFor[T]().String()

	if shape == ShapeScalar {
		var v T
		if err := decodeJSON(raw, &v); err != nil {
			return nil, &TransformationError{Value: truncateValue(raw), Target: target, Index: -1, Err: err}
		}
		return []T{v}, nil
	}

	if bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &TransformationError{Value: truncateValue(raw), Target: "[]" + target, Index: -1, Err: err}
	}

	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var v T
		if err := decodeJSON(elem, &v); err != nil {
			return nil, &TransformationError{Value: truncateValue(elem), Target: target, Index: i, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// TransformOne is Transform with ShapeScalar, unwrapped.
func TransformOne[T any](res *Response) (T, error) {
	var zero T
	values, err := Transform[T](res, ShapeScalar)
	if err != nil {
		return zero, err
	}
	return values[0], nil
}

// decodeJSON keeps numbers as json.Number when the target is untyped, so
// 64-bit counters survive a round trip through any.
func decodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// IndexedEntry is an element of a list of [index, record] pairs, as returned
// by get_account_history.
type IndexedEntry[T any] struct {
	Index uint64
	Value T
}

func (e *IndexedEntry[T]) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [index, record] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Index); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := decodeJSON(pair[1], &e.Value); err != nil {
		return fmt.Errorf("record %d: %w", e.Index, err)
	}
	return nil
}

func (e IndexedEntry[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Index, e.Value})
}
