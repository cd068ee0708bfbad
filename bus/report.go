package bus

import "github.com/santarl/vigem-client/util"

// Report types are plain fixed-layout values copied across the
// device-control boundary. The driver defines the layouts; nothing here
// interprets individual fields.

// DS4Report is the basic DualShock 4 input state.
type DS4Report struct {
	ThumbLX  uint8
	ThumbLY  uint8
	ThumbRX  uint8
	ThumbRY  uint8
	Buttons  uint16
	Special  uint8
	TriggerL uint8
	TriggerR uint8
}

// NewDS4Report returns a report with sticks and d-pad centered.
func NewDS4Report() DS4Report {
	return DS4Report{
		ThumbLX: 0x80,
		ThumbLY: 0x80,
		ThumbRX: 0x80,
		ThumbRY: 0x80,
		Buttons: 0x8, // d-pad released
	}
}

// DS4TouchPoint is one packed touch-surface contact: a contact counter with
// the high bit clear while the finger is down, then 12-bit X and Y packed
// little-endian across three bytes.
type DS4TouchPoint struct {
	Contact uint8
	XLo     uint8
	XHiYLo  uint8
	YHi     uint8
}

// NewDS4TouchPoint packs a down contact at the given surface coordinates.
func NewDS4TouchPoint(contact uint8, x uint16, y uint16) DS4TouchPoint {
	return DS4TouchPoint{
		Contact: contact & 0x7f,
		XLo:     uint8(x),
		XHiYLo:  uint8(x>>8)&0x0f | uint8(y)<<4,
		YHi:     uint8(y >> 4),
	}
}

// DS4TouchReport carries up to two touch points sampled at Timestamp.
type DS4TouchReport struct {
	Timestamp uint8
	Points    [2]DS4TouchPoint
}

// DS4ReportEx is the full 63-byte extended input report, additionally
// carrying sensor data and up to three touch reports.
type DS4ReportEx struct {
	ThumbLX         uint8
	ThumbLY         uint8
	ThumbRX         uint8
	ThumbRY         uint8
	Buttons         uint16
	Special         uint8
	TriggerL        uint8
	TriggerR        uint8
	Timestamp       uint16
	BatteryLvl      uint8
	GyroX           int16
	GyroY           int16
	GyroZ           int16
	AccelX          int16
	AccelY          int16
	AccelZ          int16
	Reserved1       [5]uint8
	Status          uint16
	Reserved2       uint8
	NumTouchReports uint8
	TouchReports    [3]DS4TouchReport
	Reserved3       [3]uint8
}

// DS4LightbarColor is the RGB color of the controller's light bar.
type DS4LightbarColor struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// DS4OutputReport is the feedback state the driver reports for a
// DualShock 4 slot.
type DS4OutputReport struct {
	SmallMotor    uint8
	LargeMotor    uint8
	LightbarColor DS4LightbarColor
}

// XUSBReport is the Xbox 360 input state.
type XUSBReport struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// XUSBOutputReport is the feedback state the driver reports for an
// Xbox 360 slot.
type XUSBOutputReport struct {
	LargeMotor uint8
	SmallMotor uint8
	LedNumber  uint8
}

// DS4SubmitReport wraps a basic DualShock 4 report for submission.
type DS4SubmitReport struct {
	Size     uint32
	SerialNo uint32
	Report   DS4Report
}

func NewDS4SubmitReport(serialNo uint32, report DS4Report) DS4SubmitReport {
	return DS4SubmitReport{
		Size:     util.SizeOf[DS4SubmitReport](),
		SerialNo: serialNo,
		Report:   report,
	}
}

// DS4SubmitReportEx wraps an extended DualShock 4 report for submission.
// It travels on the same control code as DS4SubmitReport; the driver
// distinguishes the two by Size.
type DS4SubmitReportEx struct {
	Size     uint32
	SerialNo uint32
	Report   DS4ReportEx
}

func NewDS4SubmitReportEx(serialNo uint32, report DS4ReportEx) DS4SubmitReportEx {
	return DS4SubmitReportEx{
		Size:     util.SizeOf[DS4SubmitReportEx](),
		SerialNo: serialNo,
		Report:   report,
	}
}

// XUSBSubmitReport wraps an Xbox 360 report for submission.
type XUSBSubmitReport struct {
	Size     uint32
	SerialNo uint32
	Report   XUSBReport
}

func NewXUSBSubmitReport(serialNo uint32, report XUSBReport) XUSBSubmitReport {
	return XUSBSubmitReport{
		Size:     util.SizeOf[XUSBSubmitReport](),
		SerialNo: serialNo,
		Report:   report,
	}
}
