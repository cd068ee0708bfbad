package vigem

import (
	"testing"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/test"
)

func TestCheckVersionHandshake(t *testing.T) {
	client := NewClient(bus.NewDummyChannel())
	test.AssertNoError(t, client.checkVersion(), "Version handshake against matching driver")
}

func TestTryCloneSharesDriverState(t *testing.T) {
	channel := bus.NewDummyChannel()
	client := NewClient(channel)
	clone, err := client.TryClone()
	test.AssertNoError(t, err, "Clone failed")

	target := NewDualShock4Wired(clone, TargetIdDualShock4Wired)
	test.AssertNoError(t, target.Plugin(), "Plugin through clone")
	test.AssertEqual(t, channel.SlotAttached(1), true, "Original channel sees the slot")
	test.AssertNoError(t, clone.Close(), "Close clone")
}
