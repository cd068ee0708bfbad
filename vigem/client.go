// Package vigem is the client side of a virtual gamepad bus driver: it
// plugs emulated controllers into the bus, streams input reports to them
// and receives feedback (rumble, light bar, LED) notifications back.
package vigem

import (
	"fmt"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/util"
)

var clientLogger = util.NewLogger("[CLIENT] ", util.LogLevelDebug)

// Client owns one channel to the bus driver. A single client can back any
// number of targets; each notification request additionally clones the
// channel for itself.
type Client struct {
	channel bus.Channel
}

// Connect opens a channel to the bus driver and verifies the protocol
// version.
func Connect() (*Client, error) {
	channel, err := bus.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to bus driver: %w", err)
	}
	client := &Client{channel: channel}
	if err := client.checkVersion(); err != nil {
		channel.Close()
		return nil, err
	}
	clientLogger.Printf("CONNECTED, bus version 0x%04x\n", bus.BusVersion)
	return client, nil
}

// NewClient wraps an already open channel, such as a bus.DummyChannel. No
// version handshake is performed.
func NewClient(channel bus.Channel) *Client {
	return &Client{channel: channel}
}

// TryClone duplicates the underlying channel into an independent client.
func (client *Client) TryClone() (*Client, error) {
	channel, err := client.channel.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone bus channel: %w", err)
	}
	return &Client{channel: channel}, nil
}

func (client *Client) Close() error {
	return client.channel.Close()
}

func (client *Client) checkVersion() error {
	event, err := bus.NewEvent(false, false)
	if err != nil {
		return fmt.Errorf("create completion event: %w", err)
	}
	defer event.Close()
	check := util.ToLE(bus.NewCheckVersion())
	if err := client.channel.SendRequest(bus.IoctlCheckVersion, check, nil, event); err != nil {
		return fmt.Errorf("check bus version: %w", err)
	}
	return nil
}
