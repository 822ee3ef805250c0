package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrConnectionFailure = errors.New("connection failure")
	ErrTimeout           = errors.New("request timed out")
	ErrTransformation    = errors.New("transformation failure")
	ErrRemote            = errors.New("remote error")
)

// Connection failure causes.
var (
	ErrAlreadyConnected     = errors.New("already connected")
	ErrNotConnected         = errors.New("not connected to node")
	ErrDialingWebsocket     = errors.New("error dialing websocket node")
	ErrReadingMessage       = errors.New("error reading message")
	ErrConnectionTimeout    = errors.New("websocket connection timeout")
	ErrSendingRequest       = errors.New("error sending request")
	ErrSendingPing          = errors.New("error sending ping")
	ErrMarshalingRequest    = errors.New("error marshaling request")
	ErrProtocolViolation    = errors.New("protocol violation")
	ErrUnexpectedResponseID = errors.New("unexpected response id")
	ErrNilRequest           = errors.New("nil request")
)

// Kind classifies a failure.
type Kind int

const (
	KindNone Kind = iota
	KindConnectionFailure
	KindTimeout
	KindTransformation
	KindRemote
	// KindUnknown is an error that did not come from this package.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConnectionFailure:
		return "connection_failure"
	case KindTimeout:
		return "timeout"
	case KindTransformation:
		return "transformation_failure"
	case KindRemote:
		return "remote_error"
	default:
		return "unknown"
	}
}

// Classify returns the kind wrapped by err.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrRemote):
		return KindRemote
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrTransformation):
		return KindTransformation
	case errors.Is(err, ErrConnectionFailure):
		return KindConnectionFailure
	default:
		return KindUnknown
	}
}

// connectionFailure wraps cause (and optional detail) under ErrConnectionFailure.
func connectionFailure(cause error, detail error) error {
	if detail == nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailure, cause)
	}
	return fmt.Errorf("%w: %w: %w", ErrConnectionFailure, cause, detail)
}

// RemoteError is an error object reported by the node. Code and Message are
// passed through unmodified.
type RemoteError struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: code %d: %s", ErrRemote, e.Code, e.Message)
}

// Is makes errors.Is(err, ErrRemote) hold for every RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// TransformationError reports a result that does not fit the expected shape.
type TransformationError struct {
	// Value is the offending JSON, possibly truncated.
	Value string
	// Target describes the expected shape, e.g. "[]int" or "steem.Version".
	Target string
	// Index is the array position of Value, or -1 for a whole result.
	Index int
	Err   error
}

func (e *TransformationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: element %d: cannot convert %s into %s: %v", ErrTransformation, e.Index, e.Value, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: cannot convert %s into %s: %v", ErrTransformation, e.Value, e.Target, e.Err)
}

func (e *TransformationError) Is(target error) bool {
	return target == ErrTransformation
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

const maxErrorValueLen = 256

func truncateValue(raw []byte) string {
	if len(raw) <= maxErrorValueLen {
		return string(raw)
	}
	return string(raw[:maxErrorValueLen]) + "..."
}
