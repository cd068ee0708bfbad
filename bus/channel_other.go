//go:build !windows

package bus

import "errors"

// Connect opens a channel to the bus driver. The driver only exists on
// Windows; other platforms can still exercise the protocol through
// NewDummyChannel.
func Connect() (Channel, error) {
	return nil, errors.New("bus: driver channel is only available on windows")
}
