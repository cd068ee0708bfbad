package vigem

import (
	"testing"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/test"
	"github.com/santarl/vigem-client/util"
)

func newTestDS4(t *testing.T) (*bus.DummyChannel, *DualShock4Wired) {
	t.Helper()
	channel := bus.NewDummyChannel()
	target := NewDualShock4Wired(NewClient(channel), TargetIdDualShock4Wired)
	return channel, target
}

func attach(t *testing.T, target interface {
	Plugin() error
	WaitReady() error
}) {
	t.Helper()
	test.AssertNoError(t, target.Plugin(), "Plugin failed")
	test.AssertNoError(t, target.WaitReady(), "WaitReady failed")
}

func TestPluginTwice(t *testing.T) {
	_, target := newTestDS4(t)
	test.AssertNoError(t, target.Plugin(), "First plugin")
	test.AssertErrorIs(t, target.Plugin(), ErrAlreadyConnected, "Second plugin")
}

func TestUnplugBeforePlugin(t *testing.T) {
	_, target := newTestDS4(t)
	test.AssertErrorIs(t, target.Unplug(), ErrNotPluggedIn, "Unplug while unattached")
}

func TestOperationsRequireAttachment(t *testing.T) {
	_, target := newTestDS4(t)
	test.AssertErrorIs(t, target.Update(bus.NewDS4Report()), ErrNotPluggedIn, "Update while unattached")
	test.AssertErrorIs(t, target.UpdateEx(bus.DS4ReportEx{}), ErrNotPluggedIn, "UpdateEx while unattached")
	test.AssertErrorIs(t, target.WaitReady(), ErrNotPluggedIn, "WaitReady while unattached")
	_, err := target.RequestNotification()
	test.AssertErrorIs(t, err, ErrNotPluggedIn, "RequestNotification while unattached")
}

func TestLifecycleRoundTrip(t *testing.T) {
	channel, target := newTestDS4(t)
	attach(t, target)
	test.AssertEqual(t, target.IsAttached(), true, "Attached after plugin")
	test.AssertEqual(t, target.ID(), TargetIdDualShock4Wired, "Constructed id")
	test.AssertEqual(t, target.SerialNo(), 1, "Assigned slot")

	report := bus.NewDS4Report()
	report.TriggerR = 0x7f
	test.AssertNoError(t, target.Update(report), "Update failed")

	recorded := util.FromLE[bus.DS4SubmitReport](channel.LastReport(1))
	test.AssertEqual(t, recorded.SerialNo, 1, "Submitted serial number")
	test.AssertEqual(t, recorded.Report, report, "Submitted report")

	test.AssertNoError(t, target.Unplug(), "Unplug failed")
	test.AssertEqual(t, target.IsAttached(), false, "Detached after unplug")
	test.AssertEqual(t, target.SerialNo(), 0, "Slot cleared after unplug")
	test.AssertEqual(t, channel.SlotAttached(1), false, "Slot released")
	test.AssertErrorIs(t, target.Update(report), ErrNotPluggedIn, "Update after unplug")
}

func TestUpdateExRoundTrip(t *testing.T) {
	channel, target := newTestDS4(t)
	attach(t, target)

	report := bus.DS4ReportEx{
		ThumbLX:         0x40,
		NumTouchReports: 1,
	}
	report.TouchReports[0] = bus.DS4TouchReport{
		Timestamp: 9,
		Points:    [2]bus.DS4TouchPoint{bus.NewDS4TouchPoint(0, 1920, 942)},
	}
	test.AssertNoError(t, target.UpdateEx(report), "UpdateEx failed")

	recorded := util.FromLE[bus.DS4SubmitReportEx](channel.LastReport(1))
	test.AssertEqual(t, recorded.Report, report, "Submitted extended report")
}

func TestPluginProbesPastBusySlots(t *testing.T) {
	channel, target := newTestDS4(t)
	channel.SetPluginHook(func(serialNo uint32) bool {
		return serialNo <= 3
	})
	test.AssertNoError(t, target.Plugin(), "Plugin failed")
	test.AssertEqual(t, target.serialNo, 4, "First accepted candidate")
	test.AssertEqual(t, channel.SlotAttached(4), true, "Slot 4 attached")
}

func TestPluginExhaustsSlotSpace(t *testing.T) {
	channel, target := newTestDS4(t)
	channel.SetPluginHook(func(serialNo uint32) bool {
		return true
	})
	test.AssertErrorIs(t, target.Plugin(), ErrNoFreeSlot, "Exhausted slot space")
	test.AssertEqual(t, target.IsAttached(), false, "Still unattached")
}

func TestTwoTargetsGetDistinctSlots(t *testing.T) {
	channel := bus.NewDummyChannel()
	client := NewClient(channel)
	first := NewDualShock4Wired(client, TargetIdDualShock4Wired)
	second := NewXbox360Wired(client, TargetIdXbox360Wired)

	test.AssertNoError(t, first.Plugin(), "First plugin")
	test.AssertNoError(t, second.Plugin(), "Second plugin")
	test.AssertNotEqual(t, first.serialNo, second.serialNo, "Slots collide")
	test.AssertEqual(t, first.serialNo, 1, "First slot")
	test.AssertEqual(t, second.serialNo, 2, "Second slot")
}

func TestXbox360RoundTrip(t *testing.T) {
	channel := bus.NewDummyChannel()
	target := NewXbox360Wired(NewClient(channel), TargetIdXbox360Wired)
	attach(t, target)

	report := bus.XUSBReport{ThumbLX: -1234, RightTrigger: 88}
	test.AssertNoError(t, target.Update(report), "Update failed")

	recorded := util.FromLE[bus.XUSBSubmitReport](channel.LastReport(1))
	test.AssertEqual(t, recorded.Report, report, "Submitted report")
}

func TestCloseUnplugsBestEffort(t *testing.T) {
	channel, target := newTestDS4(t)
	attach(t, target)
	target.Close()
	test.AssertEqual(t, target.IsAttached(), false, "Detached after close")
	test.AssertEqual(t, channel.SlotAttached(1), false, "Slot released")

	// Closing an unattached target must not fail either.
	_, second := newTestDS4(t)
	second.Close()
}
