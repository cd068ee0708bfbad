package vigem

import (
	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/util"
)

// Xbox360Wired is a virtual wired Xbox 360 controller.
type Xbox360Wired struct {
	target
}

// X360NotificationRequest receives Xbox 360 feedback (rumble motors and
// the LED ring position).
type X360NotificationRequest = NotificationRequest[bus.XUSBOutputReport]

func NewXbox360Wired(client *Client, id TargetId) *Xbox360Wired {
	return &Xbox360Wired{target: newTarget(client, id, bus.TargetXbox360Wired)}
}

// Update submits the input state.
func (t *Xbox360Wired) Update(report bus.XUSBReport) error {
	if !t.IsAttached() {
		return ErrNotPluggedIn
	}
	submit := bus.NewXUSBSubmitReport(t.serialNo, report)
	return t.submit(bus.IoctlXUSBSubmitReport, util.ToLE(submit))
}

// RequestNotification creates the feedback listener for this target, bound
// to a fresh channel clone and the current slot. Create at most one live
// notification request per target.
func (t *Xbox360Wired) RequestNotification() (*X360NotificationRequest, error) {
	return newNotificationRequest[bus.XUSBOutputReport](&t.target, bus.IoctlXUSBRequestNotification)
}
