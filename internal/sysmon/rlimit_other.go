//go:build !unix

package sysmon

// AddressSpaceLimit is not available on this platform.
func AddressSpaceLimit() uint64 { return 0 }
