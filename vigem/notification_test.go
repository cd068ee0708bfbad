package vigem

import (
	"testing"
	"time"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/test"
)

func newTestNotification(t *testing.T) (*bus.DummyChannel, *DualShock4Wired, *DS4NotificationRequest) {
	t.Helper()
	channel, target := newTestDS4(t)
	attach(t, target)
	notification, err := target.RequestNotification()
	test.AssertNoError(t, err, "Could not create notification request")
	return channel, target, notification
}

var testOutputReport = bus.DS4OutputReport{
	SmallMotor:    10,
	LargeMotor:    250,
	LightbarColor: bus.DS4LightbarColor{Red: 0x12, Green: 0x34, Blue: 0x56},
}

func TestPollWithoutRequest(t *testing.T) {
	_, _, notification := newTestNotification(t)
	report, err := notification.Poll(false)
	test.AssertNoError(t, err, "Poll without request must not fail")
	if report != nil {
		t.Fatal("Poll without request returned a report")
	}
}

func TestNotificationRoundTrip(t *testing.T) {
	channel, _, notification := newTestNotification(t)
	notification.Request()

	report, err := notification.Poll(false)
	test.AssertNoError(t, err, "Poll while pending")
	if report != nil {
		t.Fatal("Report before the controller produced one")
	}

	test.AssertNoError(t, channel.CompleteDS4Notification(1, testOutputReport), "Complete notification")
	report, err = notification.Poll(false)
	test.AssertNoError(t, err, "Poll after completion")
	test.AssertEqual(t, *report, testOutputReport, "Round-tripped output report")

	// Without a new Request, further polls repeat the same stale result.
	stale, err := notification.Poll(true)
	test.AssertNoError(t, err, "Repeated poll")
	test.AssertEqual(t, *stale, testOutputReport, "Stale report repeated")
}

func TestPollWaitBlocksUntilCompletion(t *testing.T) {
	channel, _, notification := newTestNotification(t)
	notification.Request()

	go func() {
		time.Sleep(10 * time.Millisecond)
		channel.CompleteDS4Notification(1, testOutputReport)
	}()

	report, err := notification.Poll(true)
	test.AssertNoError(t, err, "Blocking poll")
	test.AssertEqual(t, *report, testOutputReport, "Report from blocking poll")
}

func TestAbortIsTerminal(t *testing.T) {
	_, target, notification := newTestNotification(t)
	notification.Request()
	test.AssertNoError(t, target.Unplug(), "Unplug failed")

	_, err := notification.Poll(true)
	test.AssertErrorIs(t, err, ErrOperationAborted, "Poll after unplug")
	test.AssertEqual(t, notification.IsAttached(), false, "Detached after abort")

	// Every later call fails the same way without blocking.
	notification.Request()
	_, err = notification.Poll(true)
	test.AssertErrorIs(t, err, ErrOperationAborted, "Poll after terminal abort")
}

func TestCloseCancelsOutstandingRequest(t *testing.T) {
	channel, target, notification := newTestNotification(t)
	notification.Request()
	test.AssertNoError(t, notification.Close(), "Close with outstanding request")

	// The canceled request must be fully retired: the slot accepts a
	// replacement immediately.
	replacement, err := target.RequestNotification()
	test.AssertNoError(t, err, "Replacement request")
	replacement.Request()
	test.AssertNoError(t, channel.CompleteDS4Notification(1, testOutputReport), "Complete replacement")
	report, err := replacement.Poll(false)
	test.AssertNoError(t, err, "Poll replacement")
	test.AssertEqual(t, *report, testOutputReport, "Replacement round trip")
}

func TestSpawnLoop(t *testing.T) {
	channel, target, notification := newTestNotification(t)
	reports := make(chan bus.DS4OutputReport, 16)
	done := notification.SpawnLoop(func(report bus.DS4OutputReport) {
		reports <- report
	})

	// The loop arms requests asynchronously; retry until one is
	// outstanding.
	for i := 0; i < 2; i++ {
		for channel.CompleteDS4Notification(1, testOutputReport) != nil {
			time.Sleep(time.Millisecond)
		}
		select {
		case report := <-reports:
			test.AssertEqual(t, report, testOutputReport, "Delivered report")
		case <-time.After(time.Second):
			t.Fatal("Callback not invoked")
		}
	}

	// Unplug only once the loop has re-armed, so the abort path is what
	// terminates it.
	for !channel.NotificationOutstanding(1) {
		time.Sleep(time.Millisecond)
	}
	test.AssertNoError(t, target.Unplug(), "Unplug failed")
	select {
	case err := <-done:
		test.AssertErrorIs(t, err, ErrOperationAborted, "Loop terminal error")
	case <-time.After(time.Second):
		t.Fatal("Loop did not terminate after unplug")
	}
}
