//go:build windows

package bus

import "golang.org/x/sys/windows"

// Event is a binary, manually-resettable completion signal. On Windows it
// wraps a real event handle so the driver can signal overlapped completion
// through it.
type Event struct {
	handle windows.Handle
	manual bool
}

func NewEvent(initialState bool, manualReset bool) (*Event, error) {
	var manual, initial uint32
	if manualReset {
		manual = 1
	}
	if initialState {
		initial = 1
	}
	handle, err := windows.CreateEvent(nil, manual, initial, nil)
	if err != nil {
		return nil, err
	}
	return &Event{handle: handle, manual: manualReset}, nil
}

func (event *Event) Set() {
	windows.SetEvent(event.handle)
}

func (event *Event) Reset() {
	windows.ResetEvent(event.handle)
}

// Wait blocks until the event is set.
func (event *Event) Wait() {
	windows.WaitForSingleObject(event.handle, windows.INFINITE)
}

// Handle exposes the raw event handle for overlapped requests.
func (event *Event) Handle() windows.Handle {
	return event.handle
}

func (event *Event) Close() error {
	return windows.CloseHandle(event.handle)
}
