//go:build windows

package util

import (
	"syscall"
	"unsafe"
)

type DiskSpace struct {
	AvailGB float64
	TotalGB float64
}

func GetDiskSpace(path string) (DiskSpace, error) {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	getDiskFreeSpaceEx := kernel32.NewProc("GetDiskFreeSpaceExW")

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return DiskSpace{}, err
	}

	ret, _, err := getDiskFreeSpaceEx.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&freeBytesAvailable)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&totalFreeBytes)),
	)
	if ret == 0 {
		return DiskSpace{}, err
	}

	const gb = 1024 * 1024 * 1024
	return DiskSpace{
		AvailGB: float64(freeBytesAvailable) / gb,
		TotalGB: float64(totalBytes) / gb,
	}, nil
}
