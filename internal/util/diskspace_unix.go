//go:build !windows

package util

import "syscall"

type DiskSpace struct {
	AvailGB float64
	TotalGB float64
}

func GetDiskSpace(path string) (DiskSpace, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return DiskSpace{}, err
	}
	const gb = 1024 * 1024 * 1024
	return DiskSpace{
		AvailGB: float64(stat.Bavail*uint64(stat.Bsize)) / gb,
		TotalGB: float64(stat.Blocks*uint64(stat.Bsize)) / gb,
	}, nil
}
