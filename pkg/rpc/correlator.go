package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// pendingCall is the single outstanding request of a session. Its slot holds
// one raw frame at a time.
type pendingCall struct {
	id     uint64
	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func newPendingCall(id uint64) *pendingCall {
	return &pendingCall{
		id:     id,
		frames: make(chan []byte, 1),
		done:   make(chan struct{}),
	}
}

// deliver stores frame in the slot. If the slot is occupied it waits until
// the caller takes the previous frame. It reports false when the call has
// already finished.
func (p *pendingCall) deliver(frame []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.frames <- frame:
		return true
	case <-p.done:
		return false
	}
}

// finish releases a reader blocked in deliver. Safe to call more than once.
func (p *pendingCall) finish() {
	p.once.Do(func() { close(p.done) })
}

// await blocks until a frame arrives, timeout elapses, ctx is done, or closed
// fires. A non-positive timeout waits on ctx alone.
func (p *pendingCall) await(ctx context.Context, timeout time.Duration, closed <-chan struct{}) ([]byte, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case frame := <-p.frames:
		return frame, nil
	case <-timer:
		return nil, fmt.Errorf("%w: no response to request %d", ErrTimeout, p.id)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: request %d: %w", ErrTimeout, p.id, ctx.Err())
	case <-closed:
		// A frame may have raced the closure.
		select {
		case frame := <-p.frames:
			return frame, nil
		default:
		}
		return nil, connectionFailure(ErrNotConnected, fmt.Errorf("session closed while awaiting request %d", p.id))
	}
}
