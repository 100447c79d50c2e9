package ui

// Colour accessors read the active theme on every call so a theme change
// (InitTheme, SetTheme) applies to output produced afterwards.

// ColorReset returns the escape code that clears formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error colour.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success colour.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning colour.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary accent colour.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info colour.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary colour.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return GetCurrentTheme().Underline }
