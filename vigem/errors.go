package vigem

import "errors"

var (
	// ErrAlreadyConnected is returned by Plugin on a target that is
	// already attached.
	ErrAlreadyConnected = errors.New("vigem: target already plugged in")

	// ErrNotPluggedIn is returned by operations that require an attached
	// target.
	ErrNotPluggedIn = errors.New("vigem: target not plugged in")

	// ErrNoFreeSlot is returned by Plugin once every candidate serial
	// number in the 16-bit slot space has been rejected.
	ErrNoFreeSlot = errors.New("vigem: no free device slot")

	// ErrOperationAborted is the terminal failure of a notification
	// request whose target was unplugged while the request was
	// outstanding.
	ErrOperationAborted = errors.New("vigem: notification request aborted")
)
