package vigem

// TargetId is the immutable vendor/product pair an emulated device reports
// to the operating system. It is fixed at target construction.
type TargetId struct {
	Vendor  uint16
	Product uint16
}

// Default hardware ids of the emulated device types.
var (
	TargetIdDualShock4Wired = TargetId{Vendor: 0x054c, Product: 0x05c4}
	TargetIdXbox360Wired    = TargetId{Vendor: 0x045e, Product: 0x028e}
)
