//go:build unix

package sysmon

import "golang.org/x/sys/unix"

// AddressSpaceLimit returns the soft RLIMIT_AS of the process in bytes, or
// 0 when the limit is infinite or cannot be read.
func AddressSpaceLimit() uint64 {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_AS, &rlim); err != nil {
		return 0
	}
	if rlim.Cur == unix.RLIM_INFINITY {
		return 0
	}
	return uint64(rlim.Cur)
}
