package app

import (
	"fmt"
	"io"
	"runtime"
)

// Version information, set at build time with
// -ldflags "-X github.com/agbru/fibseq/internal/app.Version=v1.2.3".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args (without the program name) ask for
// the version. It is checked before flag parsing so that --version works
// without the otherwise required -n.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "fibseq %s\n", Version)
	fmt.Fprintf(out, "  commit:     %s\n", Commit)
	fmt.Fprintf(out, "  built:      %s\n", BuildDate)
	fmt.Fprintf(out, "  go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
