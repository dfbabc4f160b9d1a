// Package display renders terminal output: ANSI colors, aligned tables and
// the countdown progress bar.
//
// Colors follow NO_COLOR (https://no-color.org/) and are off when stdout is
// not a terminal. FORCE_COLOR turns them on regardless.
package display

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
	fgGray = "\033[90m"
)

var enabled = shouldEnable(os.Stdout)

func shouldEnable(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetEnabled overrides the detected color state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is active.
func Enabled() bool {
	return enabled
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

func Bold(text string) string   { return wrap(bold, text) }
func Dim(text string) string    { return wrap(dim, text) }
func Red(text string) string    { return wrap(red, text) }
func Green(text string) string  { return wrap(green, text) }
func Yellow(text string) string { return wrap(yellow, text) }
func Blue(text string) string   { return wrap(blue, text) }
func Cyan(text string) string   { return wrap(cyan, text) }
func Gray(text string) string   { return wrap(fgGray, text) }

// Accent highlights the next prayer.
func Accent(text string) string {
	if !enabled {
		return text
	}
	return bold + cyan + text + reset
}

// Phase colors text by interval: yellow while fasting, blue in the evening.
func Phase(text string, fasting bool) string {
	if fasting {
		return Yellow(text)
	}
	return Blue(text)
}

// Boldf formats and bolds a string.
func Boldf(format string, a ...interface{}) string {
	return Bold(fmt.Sprintf(format, a...))
}

// Errorf formats an error line for stderr.
func Errorf(format string, a ...interface{}) string {
	return Red("error: ") + fmt.Sprintf(format, a...)
}
