//go:build windows

package injector

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/silvermoth/bg3loader/internal/domain"
	"github.com/silvermoth/bg3loader/internal/injector/win32"
)

// injectAccess is the minimum the injection pipeline needs: memory
// allocation and writing plus remote thread creation.
const injectAccess = windows.PROCESS_CREATE_THREAD |
	windows.PROCESS_QUERY_INFORMATION |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE

// LoaderInjector implements domain.Injector: it stages the embedded loader
// DLL on disk, writes its UTF-16 path into the target process and starts the
// loader with a remote LoadLibraryW thread.
type LoaderInjector struct {
	stager domain.Stager
	logger *zap.Logger
}

// NewLoaderInjector creates an injector using the given stager.
func NewLoaderInjector(stager domain.Stager, logger *zap.Logger) *LoaderInjector {
	return &LoaderInjector{stager: stager, logger: logger}
}

// Inject runs the full pipeline against pid.
func (i *LoaderInjector) Inject(pid uint32) (string, domain.RemoteAllocation, error) {
	loaderPath, err := i.stager.Stage()
	if err != nil {
		return "", domain.RemoteAllocation{}, err
	}

	process, err := windows.OpenProcess(injectAccess, false, pid)
	if err != nil {
		return "", domain.RemoteAllocation{}, &domain.InjectionError{
			Op: "OpenProcess", PID: pid, Err: err,
		}
	}
	defer windows.CloseHandle(process)

	pathUTF16, err := windows.UTF16FromString(loaderPath)
	if err != nil {
		return "", domain.RemoteAllocation{}, &domain.InjectionError{
			Op: "encode loader path", PID: pid, Err: err,
		}
	}

	alloc, err := WriteIn(process, utf16Bytes(pathUTF16))
	if err != nil {
		return "", domain.RemoteAllocation{}, &domain.InjectionError{
			Op: "write loader path", PID: pid, Err: err,
		}
	}

	i.logger.Debug("loader path staged in target",
		zap.Uint32("pid", pid),
		zap.Uintptr("addr", alloc.Base),
		zap.Int("size", alloc.Size))

	loadLibrary, err := win32.LoadLibraryAddr()
	if err != nil {
		return "", domain.RemoteAllocation{}, &domain.InjectionError{
			Op: "resolve LoadLibraryW", PID: pid, Err: errors.WithStack(err),
		}
	}

	thread, tid, err := win32.CreateRemoteThread(process, loadLibrary, alloc.Base)
	if err != nil {
		return "", domain.RemoteAllocation{}, &domain.InjectionError{
			Op: "CreateRemoteThread", PID: pid, Err: err,
		}
	}
	defer windows.CloseHandle(thread)

	i.logger.Info("loader injected",
		zap.Uint32("pid", pid),
		zap.Uint32("tid", tid),
		zap.String("loader", loaderPath))

	return loaderPath, alloc, nil
}

// utf16Bytes lays out a NUL-terminated UTF-16 string as the little-endian
// byte sequence LoadLibraryW expects to read remotely.
func utf16Bytes(s []uint16) []byte {
	out := make([]byte, len(s)*2)
	for i, c := range s {
		binary.LittleEndian.PutUint16(out[i*2:], c)
	}
	return out
}

var _ domain.Injector = (*LoaderInjector)(nil)
