package memory

import "testing"

type fakeHost struct{ available, addressSpace uint64 }

func (p fakeHost) AvailableMemory() uint64   { return p.available }
func (p fakeHost) AddressSpaceLimit() uint64 { return p.addressSpace }

func TestParseMemoryLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1024", 1024, false},
		{"4GiB", 4 << 30, false},
		{"512 MiB", 512 << 20, false},
		{"2GB", 2_000_000_000, false},
		{"lots", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMemoryLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMemoryLimit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMemoryLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEffectiveLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		configured uint64
		host       fakeHost
		want       uint64
	}{
		{"nothing known", 0, fakeHost{}, 0},
		{"configured only", 100, fakeHost{}, 100},
		{"host tighter", 100, fakeHost{available: 50}, 50},
		{"rlimit tighter", 100, fakeHost{available: 80, addressSpace: 60}, 60},
		{"configured tighter", 10, fakeHost{available: 80, addressSpace: 60}, 10},
		{"host only", 0, fakeHost{available: 70}, 70},
	}
	for _, tt := range tests {
		if got := EffectiveLimit(tt.configured, tt.host); got != tt.want {
			t.Errorf("%s: EffectiveLimit = %d, want %d", tt.name, got, tt.want)
		}
	}
}
