package bus

import "errors"

// Channel is an open handle to the bus driver. Channels are safe for
// concurrent use by independent owners; the driver multiplexes requests by
// handle and serial number.
type Channel interface {
	// SendRequest issues a device-control request and blocks until the
	// driver completes it. The event is the rendezvous the driver signals
	// on completion; it is reset before the request is issued.
	SendRequest(code uint32, in []byte, out []byte, event *Event) error

	// SendRequestAsync issues a device-control request that the driver
	// completes later. buf is both the request input and the region the
	// driver writes the result into; it must stay untouched and reachable
	// until the returned PendingRequest reports completion or is canceled.
	SendRequestAsync(code uint32, buf []byte, event *Event) (PendingRequest, error)

	// Clone duplicates the handle. The clone has an independent lifetime.
	Clone() (Channel, error)

	Close() error
}

// PendingRequest tracks one outstanding asynchronous device-control call.
type PendingRequest interface {
	// Poll reports the completion state: nil once the driver has finished
	// writing the result, ErrPending while the call is still outstanding
	// (only when wait is false), ErrAborted if the driver aborted the call.
	// When wait is true Poll blocks until the call leaves the pending state.
	Poll(wait bool) error

	// Cancel cancels the call best-effort and does not return until the
	// driver is no longer writing into the request buffer.
	Cancel() error
}

var (
	// ErrPending reports that an asynchronous request has not completed.
	ErrPending = errors.New("bus: request still pending")

	// ErrAborted reports that the driver aborted an outstanding request,
	// which happens when the slot it targets is unplugged.
	ErrAborted = errors.New("bus: request aborted")

	// ErrSlotBusy reports that a plugin request named a serial number that
	// is already attached.
	ErrSlotBusy = errors.New("bus: serial number already in use")

	// ErrNoSuchSlot reports a request against a serial number with no
	// attached device.
	ErrNoSuchSlot = errors.New("bus: no device on serial number")

	// ErrVersionMismatch reports a failed check-version handshake.
	ErrVersionMismatch = errors.New("bus: driver protocol version mismatch")
)

// NotificationHeader is the leading layout shared by every notification
// buffer: the total buffer size followed by the slot's serial number.
type NotificationHeader struct {
	Size     uint32
	SerialNo uint32
}
