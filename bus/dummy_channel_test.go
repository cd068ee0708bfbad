package bus

import (
	"testing"

	"github.com/santarl/vigem-client/test"
	"github.com/santarl/vigem-client/util"
)

func newTestEvent(t *testing.T) *Event {
	event, err := NewEvent(false, false)
	test.AssertNoError(t, err, "Could not create event")
	return event
}

func pluginSlot(t *testing.T, channel *DummyChannel, event *Event, serialNo uint32) {
	plugin := util.ToLE(NewPluginTarget(serialNo, TargetDualShock4Wired, 0x054c, 0x05c4))
	test.AssertNoError(t, channel.SendRequest(IoctlPluginTarget, plugin, nil, event), "Plugin failed")
}

func armNotification(t *testing.T, channel *DummyChannel, event *Event, serialNo uint32) ([]byte, PendingRequest) {
	size := util.SizeOf[NotificationHeader]() + util.SizeOf[DS4OutputReport]()
	buf := util.Pad(util.ToLE(NotificationHeader{Size: size, SerialNo: serialNo}), int(size))
	pending, err := channel.SendRequestAsync(IoctlDS4RequestNotification, buf, event)
	test.AssertNoError(t, err, "Could not arm notification")
	return buf, pending
}

func TestPluginRejectsBusySlot(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	pluginSlot(t, channel, event, 1)
	plugin := util.ToLE(NewPluginTarget(1, TargetDualShock4Wired, 0x054c, 0x05c4))
	err := channel.SendRequest(IoctlPluginTarget, plugin, nil, event)
	test.AssertErrorIs(t, err, ErrSlotBusy, "Second plugin on slot 1")
}

func TestUnplugUnknownSlot(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	unplug := util.ToLE(NewUnplugTarget(7))
	err := channel.SendRequest(IoctlUnplugTarget, unplug, nil, event)
	test.AssertErrorIs(t, err, ErrNoSuchSlot, "Unplug without plugin")
}

func TestCheckVersion(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	good := util.ToLE(NewCheckVersion())
	test.AssertNoError(t, channel.SendRequest(IoctlCheckVersion, good, nil, event), "Matching version")

	bad := util.ToLE(CheckVersion{Size: util.SizeOf[CheckVersion](), Version: 0xdead})
	err := channel.SendRequest(IoctlCheckVersion, bad, nil, event)
	test.AssertErrorIs(t, err, ErrVersionMismatch, "Mismatched version")
}

func TestSubmitRequiresReadySlot(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	pluginSlot(t, channel, event, 1)

	submit := util.ToLE(NewDS4SubmitReport(1, NewDS4Report()))
	if err := channel.SendRequest(IoctlDS4SubmitReport, submit, nil, event); err == nil {
		t.Fatal("Submit before wait-ready should be rejected")
	}

	wait := util.ToLE(NewWaitDeviceReady(1))
	test.AssertNoError(t, channel.SendRequest(IoctlWaitDeviceReady, wait, nil, event), "Wait ready failed")
	test.AssertNoError(t, channel.SendRequest(IoctlDS4SubmitReport, submit, nil, event), "Submit after wait-ready")
	test.AssertBytesEqual(t, channel.LastReport(1), submit, "Recorded report")
}

func TestNotificationCompletion(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	pluginSlot(t, channel, event, 1)
	buf, pending := armNotification(t, channel, event, 1)

	test.AssertErrorIs(t, pending.Poll(false), ErrPending, "Poll before completion")

	report := DS4OutputReport{
		SmallMotor:    3,
		LargeMotor:    200,
		LightbarColor: DS4LightbarColor{Red: 1, Green: 2, Blue: 3},
	}
	test.AssertNoError(t, channel.CompleteDS4Notification(1, report), "Complete notification")
	test.AssertNoError(t, pending.Poll(false), "Poll after completion")
	test.AssertEqual(t, util.FromLE[DS4OutputReport](buf[8:]), report, "Report written into buffer")
}

func TestNotificationAbortedOnUnplug(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	pluginSlot(t, channel, event, 1)
	_, pending := armNotification(t, channel, event, 1)

	unplug := util.ToLE(NewUnplugTarget(1))
	test.AssertNoError(t, channel.SendRequest(IoctlUnplugTarget, unplug, nil, event), "Unplug failed")
	test.AssertErrorIs(t, pending.Poll(true), ErrAborted, "Poll after unplug")
}

func TestCancelReleasesSlot(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	pluginSlot(t, channel, event, 1)
	_, pending := armNotification(t, channel, event, 1)

	test.AssertNoError(t, pending.Cancel(), "Cancel failed")
	test.AssertErrorIs(t, pending.Poll(false), ErrAborted, "Poll after cancel")

	// The slot must accept a new request once the canceled one is retired.
	_, replacement := armNotification(t, channel, event, 1)
	test.AssertErrorIs(t, replacement.Poll(false), ErrPending, "Replacement request not pending")
}

func TestCloneSharesControllerState(t *testing.T) {
	channel := NewDummyChannel()
	event := newTestEvent(t)
	pluginSlot(t, channel, event, 1)

	cloned, err := channel.Clone()
	test.AssertNoError(t, err, "Clone failed")
	clone := cloned.(*DummyChannel)
	test.AssertEqual(t, clone.SlotAttached(1), true, "Clone sees attached slot")
}
