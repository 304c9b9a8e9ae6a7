// Package resolver turns user-typed run ID prefixes into full run IDs.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/prdflow/internal/store"
)

// MinShortIDLength is the minimum length accepted for a run ID prefix.
const MinShortIDLength = 6

// maxListedMatches caps how many candidates an ambiguity message prints.
const maxListedMatches = 10

// ResolveRunID resolves a run ID or unique prefix to a full run ID.
//
// A full UUID is returned as-is once its existence is confirmed. Shorter input
// must be at least MinShortIDLength characters and match exactly one run.
func ResolveRunID(ctx context.Context, client *store.Client, shortID string) (string, error) {
	shortID = strings.ToLower(strings.TrimSpace(shortID))

	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		if _, err := client.GetRun(ctx, shortID); err != nil {
			if store.IsNotFound(err) {
				return "", &NotFoundError{ShortID: shortID}
			}
			return "", fmt.Errorf("failed to verify run existence: %w", err)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := client.ScanRunIDs(ctx, shortID)
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

// NotFoundError indicates no run matched the ID or prefix.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no runs found matching '%s'", e.ShortID)
}

// AmbiguousError indicates more than one run matched the prefix.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d runs", e.ShortID, len(e.Matches))
}

// Candidates returns the matches to show the user and how many were left out.
func (e *AmbiguousError) Candidates() ([]string, int) {
	if len(e.Matches) <= maxListedMatches {
		return e.Matches, 0
	}
	return e.Matches[:maxListedMatches], len(e.Matches) - maxListedMatches
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
