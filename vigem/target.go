package vigem

import (
	"fmt"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/util"
)

var targetLogger = util.NewLogger("[TARGET] ", util.LogLevelDebug)

// target is the lifecycle state machine shared by every emulated device
// type. A serial number of zero means unattached; anything else is the
// driver-assigned slot.
//
// Targets can be handed between goroutines, but their methods require
// external synchronization: there is no internal locking, matching the
// driver's expectation of one caller per slot.
type target struct {
	client   *Client
	event    *bus.Event
	serialNo uint32
	id       TargetId
	kind     bus.TargetType
}

func newTarget(client *Client, id TargetId, kind bus.TargetType) target {
	event, err := bus.NewEvent(false, false)
	util.CheckErr(err, "Could not create completion event")
	return target{
		client: client,
		event:  event,
		id:     id,
		kind:   kind,
	}
}

// IsAttached reports whether the target is plugged into the bus.
func (t *target) IsAttached() bool {
	return t.serialNo != 0
}

// ID returns the id the target was constructed with.
func (t *target) ID() TargetId {
	return t.id
}

// SerialNo returns the driver-assigned slot, or zero while unattached.
func (t *target) SerialNo() uint32 {
	return t.serialNo
}

// Client returns the client backing this target.
func (t *target) Client() *Client {
	return t.client
}

// Plugin attaches the target to the bus. Slot allocation is arbitrated by
// the driver: candidates are probed linearly starting at 1, advancing on
// every rejection, until one is accepted or the 16-bit slot space is
// exhausted.
func (t *target) Plugin() error {
	if t.IsAttached() {
		return ErrAlreadyConnected
	}

	plugin := bus.NewPluginTarget(1, t.kind, t.id.Vendor, t.id.Product)
	// Yes, probing until the driver stops rejecting is how slots are
	// allocated; the retry sequence must match the driver's policy.
	for {
		err := t.client.channel.SendRequest(bus.IoctlPluginTarget, util.ToLE(plugin), nil, t.event)
		if err == nil {
			break
		}
		plugin.SerialNo++
		if plugin.SerialNo >= 0xffff {
			return ErrNoFreeSlot
		}
	}

	t.serialNo = plugin.SerialNo
	targetLogger.Printf("PLUGIN %s slot %d (%04x:%04x)\n", t.kind, t.serialNo, t.id.Vendor, t.id.Product)
	return nil
}

// Unplug detaches the target. Any notification request outstanding for the
// slot is aborted by the driver.
func (t *target) Unplug() error {
	if !t.IsAttached() {
		return ErrNotPluggedIn
	}

	unplug := bus.NewUnplugTarget(t.serialNo)
	if err := t.client.channel.SendRequest(bus.IoctlUnplugTarget, util.ToLE(unplug), nil, t.event); err != nil {
		return fmt.Errorf("unplug target: %w", err)
	}

	targetLogger.Printf("UNPLUG slot %d\n", t.serialNo)
	t.serialNo = 0
	return nil
}

// WaitReady blocks until the driver has finished attaching the slot.
// Reports submitted before WaitReady completes may be rejected.
func (t *target) WaitReady() error {
	if !t.IsAttached() {
		return ErrNotPluggedIn
	}

	wait := bus.NewWaitDeviceReady(t.serialNo)
	if err := t.client.channel.SendRequest(bus.IoctlWaitDeviceReady, util.ToLE(wait), nil, t.event); err != nil {
		return fmt.Errorf("wait device ready: %w", err)
	}
	return nil
}

// Close unplugs the target best-effort and releases the completion event.
// Teardown never fails; unplug errors are discarded.
func (t *target) Close() {
	if t.IsAttached() {
		_ = t.Unplug()
	}
	t.event.Close()
}

func (t *target) submit(code uint32, buf []byte) error {
	if err := t.client.channel.SendRequest(code, buf, nil, t.event); err != nil {
		return fmt.Errorf("submit report: %w", err)
	}
	return nil
}
