// Package resolver expands a run ID prefix, as typed on the command line,
// to the full run ID recorded in the ledger.
package resolver

import (
	"context"
	"fmt"
	"strings"
)

// MinShortIDLength is the minimum required length for run ID prefixes.
const MinShortIDLength = 6

// RunScanner lists recorded run IDs starting with a prefix.
type RunScanner interface {
	ScanRuns(ctx context.Context, prefix string) ([]string, error)
}

// ResolveRunID resolves a run ID prefix to a full run ID.
// A full UUID is returned unchanged without a lookup; existence is checked
// by whoever reads the run. Anything shorter must match exactly one run.
func ResolveRunID(ctx context.Context, scanner RunScanner, shortID string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("run ID prefix must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := scanner.ScanRuns(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to search for run: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no run matched the prefix.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no runs found matching '%s'", e.ShortID)
}

// AmbiguousError indicates several runs matched the prefix.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous run ID '%s' matches %d runs", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError lists the matching run IDs, at most 10.
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run ID '%s' matches %d runs:\n", err.ShortID, len(err.Matches))

	shown := err.Matches
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, m := range shown {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-10)
	}

	b.WriteString("\nUse a longer prefix to pick one run.")
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
