// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui centralizes the CLI's TTY-aware presentation: color toggling,
// formatted status output, and an indexing progress bar. Commands that emit
// --json output never touch this package beyond InitColors.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	subColor    = color.New(color.FgCyan)
	labelColor  = color.New(color.Bold)
	dimColor    = color.New(color.Faint)
	countColor  = color.New(color.FgGreen)

	// Cyan, Green, Yellow, and Dim are exposed directly for callers that
	// need a color.Color's full Print/Printf/Sprint family rather than one
	// of the message-shaped helpers below.
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Dim    = color.New(color.Faint)
)

// InitColors disables fatih/color output when noColor is set, NO_COLOR is
// present in the environment, or stdout is not a terminal.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// IsTerminal reports whether stderr (where progress bars render) is an
// interactive terminal.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd())
}

// NewIndexProgressBar returns a progress bar for the indexer's file loop,
// or nil when stderr is not a terminal or quiet was requested — callers
// must nil-check before calling Add.
func NewIndexProgressBar(total int, quiet bool) *progressbar.ProgressBar {
	if quiet || !IsTerminal() || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Header prints a bold section header to stdout.
func Header(msg string) {
	fmt.Println(headerColor.Sprint(msg))
}

// SubHeader prints a secondary header to stdout.
func SubHeader(msg string) {
	fmt.Println(subColor.Sprint(msg))
}

// Label renders a bold field label for inline use, e.g. fmt.Printf("%s %s\n", ui.Label("Project:"), name).
func Label(msg string) string {
	return labelColor.Sprint(msg)
}

// DimText renders low-emphasis text, e.g. file paths alongside a label.
func DimText(msg string) string {
	return dimColor.Sprint(msg)
}

// CountText renders an integer count in the success color, used for status
// tables where zero and nonzero carry no differing semantics.
func CountText(n int) string {
	return countColor.Sprintf("%d", n)
}

// Success prints a success message in green.
func Success(msg string) {
	fmt.Println(color.GreenString(msg))
}

// Successf formats and prints a success message in green.
func Successf(format string, a ...any) {
	fmt.Println(color.GreenString(format, a...))
}

// Info prints an informational message in cyan.
func Info(msg string) {
	fmt.Println(color.CyanString(msg))
}

// Infof formats and prints an informational message in cyan.
func Infof(format string, a ...any) {
	fmt.Println(color.CyanString(format, a...))
}

// Warning prints a warning message in yellow.
func Warning(msg string) {
	fmt.Fprintln(os.Stderr, color.YellowString(msg))
}

// Warningf formats and prints a warning message in yellow.
func Warningf(format string, a ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString(format, a...))
}

// ErrorMsg prints an error message in red.
func ErrorMsg(msg string) {
	fmt.Fprintln(os.Stderr, color.RedString(msg))
}
