// Package color styles the CLI's stderr status lines.
package color

import (
	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	info    = color.New(color.FgGreen)
	warning = color.New(color.FgYellow, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
	step    = color.New(color.FgHiYellow, color.Bold)
	found   = color.New(color.FgGreen, color.Bold)
	missed  = color.New(color.FgMagenta, color.Bold)
)

// Heading marks the start of an extraction or search.
func Heading(s string) string { return heading.Sprint(s) }

func Info(s string) string { return info.Sprint(s) }

func Warning(s string) string { return warning.Sprint(s) }

func Error(s string) string { return failure.Sprint(s) }

// Step labels one agent step, e.g. "[3/12] click".
func Step(s string) string { return step.Sprint(s) }

// Found reports a call that returned documents.
func Found(s string) string { return found.Sprint(s) }

// Missed reports a call that ended without documents.
func Missed(s string) string { return missed.Sprint(s) }

// Disable turns styling off for the whole process.
func Disable() {
	color.NoColor = true
}
