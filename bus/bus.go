// Package bus implements the device-control protocol spoken to the virtual
// gamepad bus driver: the control codes, the fixed little-endian buffer
// layouts, and the channel transport the requests travel over.
package bus

import (
	"fmt"

	"github.com/santarl/vigem-client/util"
)

// BusVersion is the protocol version negotiated with the driver on connect.
const BusVersion = 0x0001

// Control codes follow the kernel CTL_CODE packing: device type in the high
// word, access bits, function index, transfer method.
const (
	fileDeviceBusExtender = 0x2a

	methodBuffered = 0x0

	fileReadData  = 0x1
	fileWriteData = 0x2
)

func ctlCode(function uint32, method uint32, access uint32) uint32 {
	return fileDeviceBusExtender<<16 | access<<14 | function<<2 | method
}

const ioctlBase = 0x801

var (
	IoctlPluginTarget    = ctlCode(ioctlBase+0x000, methodBuffered, fileWriteData)
	IoctlUnplugTarget    = ctlCode(ioctlBase+0x001, methodBuffered, fileWriteData)
	IoctlCheckVersion    = ctlCode(ioctlBase+0x002, methodBuffered, fileWriteData)
	IoctlWaitDeviceReady = ctlCode(ioctlBase+0x003, methodBuffered, fileWriteData)

	IoctlXUSBSubmitReport        = ctlCode(ioctlBase+0x100, methodBuffered, fileWriteData)
	IoctlXUSBRequestNotification = ctlCode(ioctlBase+0x101, methodBuffered, fileReadData|fileWriteData)

	IoctlDS4SubmitReport        = ctlCode(ioctlBase+0x200, methodBuffered, fileWriteData)
	IoctlDS4RequestNotification = ctlCode(ioctlBase+0x201, methodBuffered, fileReadData|fileWriteData)
)

var ioctlDescriptions = map[uint32]string{
	IoctlPluginTarget:            "IoctlPluginTarget",
	IoctlUnplugTarget:            "IoctlUnplugTarget",
	IoctlCheckVersion:            "IoctlCheckVersion",
	IoctlWaitDeviceReady:         "IoctlWaitDeviceReady",
	IoctlXUSBSubmitReport:        "IoctlXUSBSubmitReport",
	IoctlXUSBRequestNotification: "IoctlXUSBRequestNotification",
	IoctlDS4SubmitReport:         "IoctlDS4SubmitReport",
	IoctlDS4RequestNotification:  "IoctlDS4RequestNotification",
}

func IoctlDescription(code uint32) string {
	description, ok := ioctlDescriptions[code]
	if !ok {
		description = fmt.Sprintf("0x%08x", code)
	}
	return description
}

// TargetType selects which kind of device the driver emulates for a slot.
type TargetType uint32

const (
	TargetXbox360Wired    TargetType = 0
	TargetDualShock4Wired TargetType = 2
)

var targetTypeDescriptions = map[TargetType]string{
	TargetXbox360Wired:    "TargetXbox360Wired",
	TargetDualShock4Wired: "TargetDualShock4Wired",
}

func (targetType TargetType) String() string {
	description, ok := targetTypeDescriptions[targetType]
	if !ok {
		description = fmt.Sprintf("TargetType(%d)", uint32(targetType))
	}
	return description
}

// CheckVersion is the handshake buffer sent right after opening a channel.
type CheckVersion struct {
	Size    uint32
	Version uint32
}

func NewCheckVersion() CheckVersion {
	return CheckVersion{
		Size:    util.SizeOf[CheckVersion](),
		Version: BusVersion,
	}
}

// PluginTarget asks the driver to attach a new emulated device on SerialNo.
// The driver rejects serial numbers already in use; callers probe upward
// from 1 until one is accepted.
type PluginTarget struct {
	Size       uint32
	SerialNo   uint32
	TargetType TargetType
	VendorID   uint16
	ProductID  uint16
}

func NewPluginTarget(serialNo uint32, targetType TargetType, vendorID uint16, productID uint16) PluginTarget {
	return PluginTarget{
		Size:       util.SizeOf[PluginTarget](),
		SerialNo:   serialNo,
		TargetType: targetType,
		VendorID:   vendorID,
		ProductID:  productID,
	}
}

// UnplugTarget detaches the emulated device on SerialNo. Any notification
// request outstanding for the slot is aborted by the driver.
type UnplugTarget struct {
	Size     uint32
	SerialNo uint32
}

func NewUnplugTarget(serialNo uint32) UnplugTarget {
	return UnplugTarget{
		Size:     util.SizeOf[UnplugTarget](),
		SerialNo: serialNo,
	}
}

// WaitDeviceReady completes once the driver has finished bringing up the
// slot's device stack. Reports submitted before that may be rejected.
type WaitDeviceReady struct {
	Size     uint32
	SerialNo uint32
}

func NewWaitDeviceReady(serialNo uint32) WaitDeviceReady {
	return WaitDeviceReady{
		Size:     util.SizeOf[WaitDeviceReady](),
		SerialNo: serialNo,
	}
}
