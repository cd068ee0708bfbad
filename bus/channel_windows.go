//go:build windows

package bus

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/santarl/vigem-client/util"
)

var channelLogger = util.NewLogger("[BUS] ", util.LogLevelDebug)

// busInterfaceGUID identifies the bus driver's device interface class.
var busInterfaceGUID = windows.GUID{
	Data1: 0x96e42b22,
	Data2: 0xf5e9,
	Data3: 0x42f8,
	Data4: [8]byte{0xb0, 0x43, 0xed, 0x0f, 0x93, 0x2f, 0x01, 0x4f},
}

// Connect opens a channel to the first present bus driver instance.
func Connect() (Channel, error) {
	path, err := busInterfacePath()
	if err != nil {
		return nil, err
	}
	channelLogger.Printf("OPENING %s\n", path)
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("open bus device: %w", err)
	}
	return &deviceChannel{handle: handle}, nil
}

type deviceChannel struct {
	handle windows.Handle
}

func (channel *deviceChannel) SendRequest(code uint32, in []byte, out []byte, event *Event) error {
	event.Reset()
	var overlapped windows.Overlapped
	overlapped.HEvent = event.Handle()

	var inPtr, outPtr *byte
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}
	var returned uint32
	err := windows.DeviceIoControl(channel.handle, code, inPtr, uint32(len(in)), outPtr, uint32(len(out)), &returned, &overlapped)
	if err == windows.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(channel.handle, &overlapped, &returned, true)
	}
	// The overlapped struct and buffers must survive until the driver is
	// done with them; the blocking wait above guarantees that.
	runtime.KeepAlive(in)
	runtime.KeepAlive(out)
	if err != nil {
		return fmt.Errorf("device io control %s: %w", IoctlDescription(code), err)
	}
	return nil
}

func (channel *deviceChannel) SendRequestAsync(code uint32, buf []byte, event *Event) (PendingRequest, error) {
	event.Reset()
	pending := &overlappedRequest{
		handle: channel.handle,
		buf:    buf,
	}
	pending.overlapped.HEvent = event.Handle()

	err := windows.DeviceIoControl(channel.handle, code,
		&buf[0], uint32(len(buf)),
		&buf[0], uint32(len(buf)),
		&pending.returned, &pending.overlapped)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return nil, fmt.Errorf("device io control %s: %w", IoctlDescription(code), err)
	}
	return pending, nil
}

func (channel *deviceChannel) Clone() (Channel, error) {
	process := windows.CurrentProcess()
	var clone windows.Handle
	err := windows.DuplicateHandle(process, channel.handle, process, &clone, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return nil, fmt.Errorf("duplicate bus handle: %w", err)
	}
	return &deviceChannel{handle: clone}, nil
}

func (channel *deviceChannel) Close() error {
	return windows.CloseHandle(channel.handle)
}

// overlappedRequest pins one outstanding overlapped device-control call.
// It keeps the request buffer reachable until the driver completes or the
// call is canceled.
type overlappedRequest struct {
	handle     windows.Handle
	overlapped windows.Overlapped
	returned   uint32
	buf        []byte
}

func (pending *overlappedRequest) Poll(wait bool) error {
	err := windows.GetOverlappedResult(pending.handle, &pending.overlapped, &pending.returned, wait)
	runtime.KeepAlive(pending.buf)
	switch err {
	case nil:
		return nil
	case windows.ERROR_IO_INCOMPLETE:
		return ErrPending
	case windows.ERROR_OPERATION_ABORTED:
		return ErrAborted
	default:
		return fmt.Errorf("overlapped result: %w", err)
	}
}

func (pending *overlappedRequest) Cancel() error {
	err := windows.CancelIoEx(pending.handle, &pending.overlapped)
	if err != nil && err != windows.ERROR_NOT_FOUND {
		return fmt.Errorf("cancel io: %w", err)
	}
	// Wait for the cancellation (or a racing completion) to retire the
	// request; only then is the buffer safe to release.
	windows.GetOverlappedResult(pending.handle, &pending.overlapped, &pending.returned, true)
	runtime.KeepAlive(pending.buf)
	return nil
}

// Device-interface discovery goes through SetupAPI directly.
var (
	modsetupapi                          = windows.NewLazySystemDLL("setupapi.dll")
	procSetupDiGetClassDevsW             = modsetupapi.NewProc("SetupDiGetClassDevsW")
	procSetupDiEnumDeviceInterfaces      = modsetupapi.NewProc("SetupDiEnumDeviceInterfaces")
	procSetupDiGetDeviceInterfaceDetailW = modsetupapi.NewProc("SetupDiGetDeviceInterfaceDetailW")
	procSetupDiDestroyDeviceInfoList     = modsetupapi.NewProc("SetupDiDestroyDeviceInfoList")
)

const (
	digcfPresent         = 0x02
	digcfDeviceInterface = 0x10
)

type spDeviceInterfaceData struct {
	cbSize             uint32
	interfaceClassGUID windows.GUID
	flags              uint32
	reserved           uintptr
}

func busInterfacePath() (string, error) {
	devInfo, _, err := procSetupDiGetClassDevsW.Call(
		uintptr(unsafe.Pointer(&busInterfaceGUID)), 0, 0,
		digcfPresent|digcfDeviceInterface)
	if devInfo == uintptr(windows.InvalidHandle) {
		return "", fmt.Errorf("enumerate bus devices: %w", err)
	}
	defer procSetupDiDestroyDeviceInfoList.Call(devInfo)

	var ifaceData spDeviceInterfaceData
	ifaceData.cbSize = uint32(unsafe.Sizeof(ifaceData))
	ok, _, err := procSetupDiEnumDeviceInterfaces.Call(devInfo, 0,
		uintptr(unsafe.Pointer(&busInterfaceGUID)), 0,
		uintptr(unsafe.Pointer(&ifaceData)))
	if ok == 0 {
		return "", fmt.Errorf("bus driver not found: %w", err)
	}

	var required uint32
	procSetupDiGetDeviceInterfaceDetailW.Call(devInfo,
		uintptr(unsafe.Pointer(&ifaceData)), 0, 0,
		uintptr(unsafe.Pointer(&required)), 0)
	if required == 0 {
		return "", fmt.Errorf("empty bus device interface detail")
	}

	detail := make([]byte, required)
	// cbSize covers only the fixed header of the detail struct: the uint32
	// size plus one UTF-16 character, padded to pointer alignment.
	if unsafe.Sizeof(uintptr(0)) == 8 {
		*(*uint32)(unsafe.Pointer(&detail[0])) = 8
	} else {
		*(*uint32)(unsafe.Pointer(&detail[0])) = 6
	}
	ok, _, err = procSetupDiGetDeviceInterfaceDetailW.Call(devInfo,
		uintptr(unsafe.Pointer(&ifaceData)),
		uintptr(unsafe.Pointer(&detail[0])), uintptr(required), 0, 0)
	if ok == 0 {
		return "", fmt.Errorf("bus device interface detail: %w", err)
	}
	pathPtr := (*uint16)(unsafe.Pointer(&detail[4]))
	return windows.UTF16PtrToString(pathPtr), nil
}
