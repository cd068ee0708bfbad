package bus

import (
	"fmt"
	"sync"

	"github.com/santarl/vigem-client/util"
)

var dummyLogger = util.NewLogger("[DUMMYBUS] ", util.LogLevelTrace)

// DummyChannel is an in-memory stand-in for the bus driver: it arbitrates
// slot allocation, accepts report submissions and pends notification
// requests the way the real driver does. Tests and demos play the driver
// side through CompleteDS4Notification / CompleteXUSBNotification.
type DummyChannel struct {
	state *dummyControllerState
}

type dummyControllerState struct {
	mu         sync.Mutex
	slots      map[uint32]*dummySlot
	pluginHook func(serialNo uint32) bool
}

type dummySlot struct {
	targetType TargetType
	vendorID   uint16
	productID  uint16
	ready      bool
	lastReport []byte
	pending    *dummyPendingRequest
}

func NewDummyChannel() *DummyChannel {
	return &DummyChannel{
		state: &dummyControllerState{
			slots: make(map[uint32]*dummySlot),
		},
	}
}

// SetPluginHook installs a hook consulted for every plugin request; when it
// returns true the candidate serial number is rejected as busy.
func (channel *DummyChannel) SetPluginHook(hook func(serialNo uint32) bool) {
	channel.state.mu.Lock()
	defer channel.state.mu.Unlock()
	channel.state.pluginHook = hook
}

// SlotAttached reports whether a device is attached on serialNo.
func (channel *DummyChannel) SlotAttached(serialNo uint32) bool {
	channel.state.mu.Lock()
	defer channel.state.mu.Unlock()
	_, ok := channel.state.slots[serialNo]
	return ok
}

// NotificationOutstanding reports whether a notification request is
// currently pending on serialNo.
func (channel *DummyChannel) NotificationOutstanding(serialNo uint32) bool {
	channel.state.mu.Lock()
	defer channel.state.mu.Unlock()
	slot, ok := channel.state.slots[serialNo]
	return ok && slot.pending != nil
}

// LastReport returns a copy of the most recent report submitted for the
// slot, or nil if none has been submitted.
func (channel *DummyChannel) LastReport(serialNo uint32) []byte {
	channel.state.mu.Lock()
	defer channel.state.mu.Unlock()
	slot, ok := channel.state.slots[serialNo]
	if !ok || slot.lastReport == nil {
		return nil
	}
	report := make([]byte, len(slot.lastReport))
	copy(report, slot.lastReport)
	return report
}

// CompleteDS4Notification completes the notification request outstanding on
// serialNo with the given feedback state.
func (channel *DummyChannel) CompleteDS4Notification(serialNo uint32, report DS4OutputReport) error {
	return channel.completeNotification(serialNo, util.ToLE(report))
}

// CompleteXUSBNotification completes the notification request outstanding on
// serialNo with the given feedback state.
func (channel *DummyChannel) CompleteXUSBNotification(serialNo uint32, report XUSBOutputReport) error {
	return channel.completeNotification(serialNo, util.ToLE(report))
}

func (channel *DummyChannel) completeNotification(serialNo uint32, report []byte) error {
	channel.state.mu.Lock()
	slot, ok := channel.state.slots[serialNo]
	if !ok {
		channel.state.mu.Unlock()
		return ErrNoSuchSlot
	}
	pending := slot.pending
	slot.pending = nil
	channel.state.mu.Unlock()

	if pending == nil {
		return fmt.Errorf("no notification request outstanding on slot %d", serialNo)
	}
	pending.complete(nil, report)
	return nil
}

func (channel *DummyChannel) SendRequest(code uint32, in []byte, out []byte, event *Event) error {
	event.Reset()
	defer event.Set()
	dummyLogger.Printf("REQUEST %s\n", IoctlDescription(code))

	state := channel.state
	state.mu.Lock()
	defer state.mu.Unlock()

	switch code {
	case IoctlCheckVersion:
		check := util.FromLE[CheckVersion](in)
		if check.Version != BusVersion {
			return ErrVersionMismatch
		}
		return nil
	case IoctlPluginTarget:
		plugin := util.FromLE[PluginTarget](in)
		if plugin.SerialNo == 0 {
			return fmt.Errorf("plugin request with zero serial number")
		}
		if state.pluginHook != nil && state.pluginHook(plugin.SerialNo) {
			return ErrSlotBusy
		}
		if _, ok := state.slots[plugin.SerialNo]; ok {
			return ErrSlotBusy
		}
		state.slots[plugin.SerialNo] = &dummySlot{
			targetType: plugin.TargetType,
			vendorID:   plugin.VendorID,
			productID:  plugin.ProductID,
		}
		return nil
	case IoctlUnplugTarget:
		unplug := util.FromLE[UnplugTarget](in)
		slot, ok := state.slots[unplug.SerialNo]
		if !ok {
			return ErrNoSuchSlot
		}
		delete(state.slots, unplug.SerialNo)
		if slot.pending != nil {
			// The driver aborts outstanding notification requests when
			// their slot goes away.
			slot.pending.complete(ErrAborted, nil)
			slot.pending = nil
		}
		return nil
	case IoctlWaitDeviceReady:
		wait := util.FromLE[WaitDeviceReady](in)
		slot, ok := state.slots[wait.SerialNo]
		if !ok {
			return ErrNoSuchSlot
		}
		slot.ready = true
		return nil
	case IoctlDS4SubmitReport, IoctlXUSBSubmitReport:
		header := util.FromLE[NotificationHeader](in[:8])
		slot, ok := state.slots[header.SerialNo]
		if !ok {
			return ErrNoSuchSlot
		}
		if !slot.ready {
			return fmt.Errorf("slot %d not ready", header.SerialNo)
		}
		slot.lastReport = make([]byte, len(in))
		copy(slot.lastReport, in)
		return nil
	default:
		return fmt.Errorf("unsupported control code %s", IoctlDescription(code))
	}
}

func (channel *DummyChannel) SendRequestAsync(code uint32, buf []byte, event *Event) (PendingRequest, error) {
	event.Reset()
	dummyLogger.Printf("ASYNC REQUEST %s\n", IoctlDescription(code))

	if code != IoctlDS4RequestNotification && code != IoctlXUSBRequestNotification {
		return nil, fmt.Errorf("unsupported async control code %s", IoctlDescription(code))
	}

	state := channel.state
	state.mu.Lock()
	defer state.mu.Unlock()

	header := util.FromLE[NotificationHeader](buf[:8])
	slot, ok := state.slots[header.SerialNo]
	if !ok {
		return nil, ErrNoSuchSlot
	}
	if slot.pending != nil {
		return nil, fmt.Errorf("notification request already outstanding on slot %d", header.SerialNo)
	}
	pending := &dummyPendingRequest{
		state:    state,
		serialNo: header.SerialNo,
		buf:      buf,
		event:    event,
		done:     make(chan struct{}),
	}
	slot.pending = pending
	return pending, nil
}

func (channel *DummyChannel) Clone() (Channel, error) {
	return &DummyChannel{state: channel.state}, nil
}

func (channel *DummyChannel) Close() error {
	return nil
}

// dummyPendingRequest is the dummy driver's view of one outstanding
// notification request. The result payload is written into the caller's
// buffer right after the 8-byte header, before the completion is published.
type dummyPendingRequest struct {
	state    *dummyControllerState
	serialNo uint32
	buf      []byte
	event    *Event
	done     chan struct{}

	once   sync.Once
	status error
}

func (pending *dummyPendingRequest) complete(status error, payload []byte) {
	pending.once.Do(func() {
		pending.status = status
		if status == nil {
			copy(pending.buf[8:], payload)
		}
		close(pending.done)
		pending.event.Set()
	})
}

func (pending *dummyPendingRequest) Poll(wait bool) error {
	if wait {
		<-pending.done
	} else {
		select {
		case <-pending.done:
		default:
			return ErrPending
		}
	}
	return pending.status
}

func (pending *dummyPendingRequest) Cancel() error {
	pending.state.mu.Lock()
	if slot, ok := pending.state.slots[pending.serialNo]; ok && slot.pending == pending {
		slot.pending = nil
	}
	pending.state.mu.Unlock()
	pending.complete(ErrAborted, nil)
	return nil
}
