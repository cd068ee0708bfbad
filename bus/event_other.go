//go:build !windows

package bus

import "sync"

// Event is a binary, manually-resettable completion signal. On non-Windows
// builds it is backed by a channel that is closed while the event is set.
type Event struct {
	manual bool

	mu  sync.Mutex
	set bool
	ch  chan struct{}
}

func NewEvent(initialState bool, manualReset bool) (*Event, error) {
	event := &Event{
		manual: manualReset,
		set:    initialState,
		ch:     make(chan struct{}),
	}
	if initialState {
		close(event.ch)
	}
	return event, nil
}

func (event *Event) Set() {
	event.mu.Lock()
	defer event.mu.Unlock()
	if !event.set {
		event.set = true
		close(event.ch)
	}
}

func (event *Event) Reset() {
	event.mu.Lock()
	defer event.mu.Unlock()
	if event.set {
		event.set = false
		event.ch = make(chan struct{})
	}
}

// Wait blocks until the event is set. Auto-reset events are reset again on
// the way out.
func (event *Event) Wait() {
	event.mu.Lock()
	ch := event.ch
	event.mu.Unlock()
	<-ch
	if !event.manual {
		event.Reset()
	}
}

func (event *Event) Close() error {
	return nil
}
