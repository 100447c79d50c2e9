package memory

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/agbru/fibseq/internal/sysmon"
)

// ParseMemoryLimit parses a size such as "4GiB", "512MB" or "1073741824".
// An empty string or "0" means no configured limit and returns 0.
func ParseMemoryLimit(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid memory limit %q: %w", s, err)
	}
	return v, nil
}

// HostProbe reports host memory ceilings. Zero means unknown.
type HostProbe interface {
	AvailableMemory() uint64
	AddressSpaceLimit() uint64
}

type sysmonProbe struct{}

func (sysmonProbe) AvailableMemory() uint64   { return sysmon.AvailableMemory() }
func (sysmonProbe) AddressSpaceLimit() uint64 { return sysmon.AddressSpaceLimit() }

// DefaultHostProbe queries the running host.
var DefaultHostProbe HostProbe = sysmonProbe{}

// EffectiveLimit returns the smallest of the configured limit, the memory
// the host reports as available and the process address-space limit,
// ignoring unknown (zero) values. It returns 0 when none is known.
func EffectiveLimit(configured uint64, probe HostProbe) uint64 {
	if probe == nil {
		probe = DefaultHostProbe
	}
	limit := configured
	for _, v := range []uint64{probe.AvailableMemory(), probe.AddressSpaceLimit()} {
		if v > 0 && (limit == 0 || v < limit) {
			limit = v
		}
	}
	return limit
}
