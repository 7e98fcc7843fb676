//go:build windows

package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

// TestWriteIn_RejectsEmptyBuffer verifies zero-length writes fail before any
// allocation happens; the handle is never touched.
func TestWriteIn_RejectsEmptyBuffer(t *testing.T) {
	_, err := WriteIn(windows.Handle(0), nil)
	assert.ErrorContains(t, err, "zero-length")

	_, err = WriteIn(windows.Handle(0), []byte{})
	assert.ErrorContains(t, err, "zero-length")
}

// TestWriteIn_RoundTripIntoOwnProcess writes into the test process itself and
// reads the bytes back through the returned allocation.
func TestWriteIn_RoundTripIntoOwnProcess(t *testing.T) {
	data := []byte(`C:\Temp\loader-0123456789abcdef.dll`)

	alloc, err := WriteIn(windows.CurrentProcess(), data)
	require.NoError(t, err)
	require.NotZero(t, alloc.Base)
	assert.Equal(t, len(data), alloc.Size)

	buf := make([]byte, alloc.Size)
	var n uintptr
	err = windows.ReadProcessMemory(windows.CurrentProcess(), alloc.Base,
		&buf[0], uintptr(len(buf)), &n)
	require.NoError(t, err)
	assert.Equal(t, data, buf[:n])
}
