package format

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatNumberString inserts thousands separators into a decimal integer
// string, keeping a leading minus sign. It works on strings because terms
// are far beyond any native integer type.
func FormatNumberString(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(sign) + len(s) + len(s)/3)
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatBytes renders a byte count in IEC units, e.g. "1.5 GiB".
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// TruncateDigits shortens a long decimal string to its first and last
// keep digits joined by "...", reporting the number of digits dropped.
// Strings of at most 2*keep digits are returned unchanged.
func TruncateDigits(s string, keep int) (string, int) {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if keep <= 0 || len(s) <= 2*keep {
		return sign + s, 0
	}
	return sign + s[:keep] + "..." + s[len(s)-keep:], len(s) - 2*keep
}
