//go:build windows

// Package win32 wraps the kernel32 calls the injector needs that
// golang.org/x/sys/windows does not export.
package win32

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procVirtualAllocEx         = kernel32.NewProc("VirtualAllocEx")
	procWriteProcessMemory     = kernel32.NewProc("WriteProcessMemory")
	procCreateRemoteThread     = kernel32.NewProc("CreateRemoteThread")
	procDebugActiveProcessStop = kernel32.NewProc("DebugActiveProcessStop")
	procLoadLibraryW           = kernel32.NewProc("LoadLibraryW")
)

const (
	MEM_COMMIT  = 0x1000
	MEM_RESERVE = 0x2000

	PAGE_EXECUTE_READWRITE = 0x40

	DEBUG_PROCESS           = 0x00000001
	DEBUG_ONLY_THIS_PROCESS = 0x00000002
)

// VirtualAllocEx allocates memory in a foreign process.
func VirtualAllocEx(process windows.Handle, addr uintptr, size int, allocType, protect uint32) (uintptr, error) {
	r1, _, err := procVirtualAllocEx.Call(
		uintptr(process),
		addr,
		uintptr(size),
		uintptr(allocType),
		uintptr(protect),
	)
	if r1 == 0 {
		return 0, err
	}
	return r1, nil
}

// WriteProcessMemory copies data into a foreign process and returns the
// number of bytes actually written.
func WriteProcessMemory(process windows.Handle, baseAddr uintptr, data []byte) (int, error) {
	var written uintptr
	r1, _, err := procWriteProcessMemory.Call(
		uintptr(process),
		baseAddr,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&written)),
	)
	if r1 == 0 {
		return int(written), err
	}
	return int(written), nil
}

// CreateRemoteThread starts a thread in a foreign process.
func CreateRemoteThread(process windows.Handle, startAddr, parameter uintptr) (windows.Handle, uint32, error) {
	var threadID uint32
	r1, _, err := procCreateRemoteThread.Call(
		uintptr(process),
		0,
		0,
		startAddr,
		parameter,
		0,
		uintptr(unsafe.Pointer(&threadID)),
	)
	if r1 == 0 {
		return 0, 0, err
	}
	return windows.Handle(r1), threadID, nil
}

// DebugActiveProcessStop detaches the current process as debugger of pid.
func DebugActiveProcessStop(pid uint32) error {
	r1, _, err := procDebugActiveProcessStop.Call(uintptr(pid))
	if r1 == 0 {
		return err
	}
	return nil
}

// LoadLibraryAddr returns the address of kernel32!LoadLibraryW. kernel32 maps
// at the same base in every process of a session, so the local address is
// valid inside the target too.
func LoadLibraryAddr() (uintptr, error) {
	if err := procLoadLibraryW.Find(); err != nil {
		return 0, err
	}
	return procLoadLibraryW.Addr(), nil
}
