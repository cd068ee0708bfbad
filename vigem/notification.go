package vigem

import (
	"errors"
	"fmt"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/util"
)

var notifyLogger = util.NewLogger("[NOTIFY] ", util.LogLevelTrace)

// notificationBuffer is the in-flight buffer layout of a notification
// request: the header going in, the report coming back.
type notificationBuffer[R any] struct {
	Size     uint32
	SerialNo uint32
	Report   R
}

// NotificationRequest drives the two-phase feedback protocol for one
// target: Request arms an asynchronous "tell me when output state changes"
// call, Poll inspects its completion. The request buffer is allocated once
// and owned for the object's whole lifetime, since the driver keeps
// writing into it while a request is outstanding.
//
// A NotificationRequest can be handed between goroutines but is not safe
// for unsynchronized concurrent use. Create at most one live request per
// target; the driver broadcasts completions, it does not queue per
// listener.
type NotificationRequest[R any] struct {
	client   *Client
	event    *bus.Event
	code     uint32
	buf      []byte
	serialNo uint32
	pending  bus.PendingRequest
	failure  error
}

func newNotificationRequest[R any](t *target, code uint32) (*NotificationRequest[R], error) {
	if !t.IsAttached() {
		return nil, ErrNotPluggedIn
	}
	client, err := t.client.TryClone()
	if err != nil {
		return nil, err
	}
	event, err := bus.NewEvent(false, false)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create completion event: %w", err)
	}
	buf := util.ToLE(notificationBuffer[R]{
		Size:     util.SizeOf[notificationBuffer[R]](),
		SerialNo: t.serialNo,
	})
	return &NotificationRequest[R]{
		client:   client,
		event:    event,
		code:     code,
		buf:      buf,
		serialNo: t.serialNo,
	}, nil
}

// IsAttached reports whether the underlying target was still attached the
// last time this object heard from the driver.
func (request *NotificationRequest[R]) IsAttached() bool {
	return request.serialNo != 0
}

// Request arms the next notification. It is a no-op once the target is
// detached or a previous request is still outstanding.
func (request *NotificationRequest[R]) Request() {
	if request.serialNo == 0 || request.failure != nil {
		return
	}
	if request.pending != nil && errors.Is(request.pending.Poll(false), bus.ErrPending) {
		return
	}
	pending, err := request.client.channel.SendRequestAsync(request.code, request.buf, request.event)
	if err != nil {
		notifyLogger.Printf("REQUEST FAILED slot %d: %v\n", request.serialNo, err)
		request.failure = fmt.Errorf("issue notification request: %w", err)
		return
	}
	request.pending = pending
}

// Poll inspects the outstanding request.
//
// Returns:
//   - (nil, nil): no completed notification yet (and wait was false, or no
//     request was ever armed).
//   - (report, nil): the notification completed; arm the next one with
//     Request, or further Poll calls return the same stale report.
//   - (nil, ErrOperationAborted): the target was unplugged while the
//     request was outstanding. Terminal; every later call fails the same
//     way without blocking.
//   - (nil, err): an unexpected channel error.
func (request *NotificationRequest[R]) Poll(wait bool) (*R, error) {
	if request.failure != nil {
		return nil, request.failure
	}
	if request.pending == nil {
		return nil, nil
	}
	err := request.pending.Poll(wait)
	switch {
	case err == nil:
		buffer := util.FromLE[notificationBuffer[R]](request.buf)
		report := buffer.Report
		return &report, nil
	case errors.Is(err, bus.ErrPending):
		return nil, nil
	case errors.Is(err, bus.ErrAborted):
		// The abort means the target was unplugged. A different target may
		// already have reused the slot by the time the abort is observed;
		// that race is part of the protocol and deliberately left as is.
		request.serialNo = 0
		request.failure = ErrOperationAborted
		return nil, request.failure
	default:
		return nil, fmt.Errorf("poll notification: %w", err)
	}
}

// SpawnLoop runs the request/poll cycle on a new goroutine, invoking callback for
// every completed notification. The loop owns the request object from this
// point on and closes it when it exits. The first failed poll terminates
// the loop and delivers the terminal error on the returned channel;
// receive from it after unplugging the target to join the loop.
func (request *NotificationRequest[R]) SpawnLoop(callback func(R)) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer request.Close()
		for {
			request.Request()
			report, err := request.Poll(true)
			if err != nil {
				done <- err
				return
			}
			if report != nil {
				callback(*report)
			}
		}
	}()
	return done
}

// Close cancels any outstanding request and releases the channel clone and
// completion event. The cancellation is synchronous: the driver is done
// with the in-flight buffer before Close returns.
func (request *NotificationRequest[R]) Close() error {
	if request.pending != nil {
		_ = request.pending.Cancel()
		request.pending = nil
	}
	request.serialNo = 0
	request.event.Close()
	return request.client.Close()
}
