// Package printer formats user-facing CLI output. Diagnostics go to stderr,
// results to stdout; render logs from the worker units never pass through here.
package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Stdout and Stderr are the destinations of all printer output.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(Stdout, msg)
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

// Warning prints a warning message in yellow to stderr
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(Stderr, msg)
}

// Step prints a step message with emphasis
func Step(format string, a ...any) {
	cyan.Fprintf(Stdout, "→ %s", fmt.Sprintf(format, a...))
}

// Runtime prints the wall-clock summary of a render run.
func Runtime(processes, threads int, elapsed time.Duration) {
	fmt.Fprintf(Stdout, "Runtime with %d processes and %d threads: %.6f seconds\n",
		processes, threads, elapsed.Seconds())
}

// Frames formats frame indices as a compact list, collapsing runs:
// [0 1 2 5 7 8] becomes "0-2, 5, 7-8".
func Frames(indices []int) string {
	if len(indices) == 0 {
		return "none"
	}

	var parts []string
	start := indices[0]
	prev := start
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, i := range indices[1:] {
		if i == prev+1 {
			prev = i
			continue
		}
		flush()
		start, prev = i, i
	}
	flush()
	return strings.Join(parts, ", ")
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext creates a formatted error with context details, printed
// in key order. Returns a simple error for Cobra.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Stderr, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(Stderr, "\n")
		for _, k := range keys {
			fmt.Fprintf(Stderr, "  %s: %s\n", k, context[k])
		}
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(Stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(Stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(Stderr, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(Stderr, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}
