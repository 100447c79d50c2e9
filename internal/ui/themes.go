package ui

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// ThemeEnv selects the theme by name ("dark", "light" or "none").
const ThemeEnv = "FIBSEQ_THEME"

// Theme maps output roles to ANSI escape codes.
type Theme struct {
	Name string
	// Primary highlights task names.
	Primary string
	// Secondary highlights values in banners (seeds, sizes).
	Secondary string
	// Success marks computed counts and successful checks.
	Success string
	// Warning marks durations and limits.
	Warning string
	// Error marks failures.
	Error string
	// Info marks hints and indices.
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme uses bright 256-colour codes.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;87m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;213m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker codes readable on light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;25m",
		Secondary: "\033[38;5;30m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;90m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme has only empty codes.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// themeByName returns the named theme, DarkTheme for unknown names.
func themeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme
	case "none":
		return NoColorTheme
	default:
		return DarkTheme
	}
}

// SetTheme activates a theme by name: "dark", "light" or "none". Unknown
// names select dark.
func SetTheme(name string) {
	SetCurrentTheme(themeByName(name))
}

// NoColorEnv reports whether NO_COLOR is present in the environment,
// whatever its value.
func NoColorEnv() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// InitTheme picks the theme for this process. Colours are off when noColor
// is set, when NO_COLOR is present (https://no-color.org/) or when stdout
// is not a terminal, so piped output stays free of escape codes. Otherwise
// FIBSEQ_THEME names the theme.
func InitTheme(noColor bool) {
	if noColor || NoColorEnv() || !stdoutIsTerminal() {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}
