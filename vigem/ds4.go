package vigem

import (
	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/util"
)

// DualShock4Wired is a virtual wired DualShock 4 controller.
type DualShock4Wired struct {
	target
}

// DS4NotificationRequest receives DualShock 4 feedback (rumble motors and
// light bar color).
type DS4NotificationRequest = NotificationRequest[bus.DS4OutputReport]

func NewDualShock4Wired(client *Client, id TargetId) *DualShock4Wired {
	return &DualShock4Wired{target: newTarget(client, id, bus.TargetDualShock4Wired)}
}

// Update submits the basic input state.
func (t *DualShock4Wired) Update(report bus.DS4Report) error {
	if !t.IsAttached() {
		return ErrNotPluggedIn
	}
	submit := bus.NewDS4SubmitReport(t.serialNo, report)
	return t.submit(bus.IoctlDS4SubmitReport, util.ToLE(submit))
}

// UpdateEx submits the extended input state, which additionally carries
// sensor data and touch-surface points.
func (t *DualShock4Wired) UpdateEx(report bus.DS4ReportEx) error {
	if !t.IsAttached() {
		return ErrNotPluggedIn
	}
	submit := bus.NewDS4SubmitReportEx(t.serialNo, report)
	return t.submit(bus.IoctlDS4SubmitReport, util.ToLE(submit))
}

// RequestNotification creates the feedback listener for this target, bound
// to a fresh channel clone and the current slot. Create at most one live
// notification request per target.
func (t *DualShock4Wired) RequestNotification() (*DS4NotificationRequest, error) {
	return newNotificationRequest[bus.DS4OutputReport](&t.target, bus.IoctlDS4RequestNotification)
}
