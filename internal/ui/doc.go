// Package ui provides the ANSI colour themes used by the one-shot CLI and
// by error reporting. Colours are disabled by --no-color or the NO_COLOR
// environment variable.
package ui
