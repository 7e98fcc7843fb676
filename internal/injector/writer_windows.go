//go:build windows

// Package injector stages payload bytes into the game process.
package injector

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/silvermoth/bg3loader/internal/domain"
	"github.com/silvermoth/bg3loader/internal/injector/win32"
)

// WriteIn allocates an execute-read-write region in the target process and
// copies data into it, returning the remote allocation.
//
// The process handle is borrowed; the caller keeps ownership and closes it.
// The region is never freed by this tool - its lifetime is bounded by the
// target process. No access-rights precondition check is done up front: the
// OS calls are authoritative and their failures surface here.
func WriteIn(process windows.Handle, data []byte) (domain.RemoteAllocation, error) {
	// Zero-length writes are rejected up front rather than allocating an
	// empty region.
	if len(data) == 0 {
		return domain.RemoteAllocation{}, errors.New("refusing zero-length remote write")
	}

	addr, err := win32.VirtualAllocEx(process, 0, len(data),
		win32.MEM_COMMIT|win32.MEM_RESERVE, win32.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return domain.RemoteAllocation{}, errors.Wrap(err, "VirtualAllocEx")
	}

	written, err := win32.WriteProcessMemory(process, addr, data)
	if err != nil {
		return domain.RemoteAllocation{}, errors.Wrap(err, "WriteProcessMemory")
	}
	if written != len(data) {
		return domain.RemoteAllocation{}, errors.Errorf(
			"short remote write: %d of %d bytes", written, len(data))
	}

	return domain.RemoteAllocation{Base: addr, Size: len(data)}, nil
}
