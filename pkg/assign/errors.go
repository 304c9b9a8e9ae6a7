package assign

import (
	"errors"
	"fmt"
)

// ErrEmptyRoster indicates that a policy was given zero engineers.
var ErrEmptyRoster = errors.New("empty roster: at least one engineer is required")

// SimilarityUnavailableError reports that the similarity capability failed,
// or returned a score vector that cannot be used, while scoring Story.
type SimilarityUnavailableError struct {
	Story string
	Err   error
}

func (e *SimilarityUnavailableError) Error() string {
	return fmt.Sprintf("similarity unavailable for story %q: %v", truncate(e.Story, 60), e.Err)
}

func (e *SimilarityUnavailableError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed input record.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid engineer at index %d (%s): %s", e.Index, e.Field, e.Reason)
}

// IsSimilarityUnavailable checks if err wraps a SimilarityUnavailableError.
func IsSimilarityUnavailable(err error) bool {
	var target *SimilarityUnavailableError
	return errors.As(err, &target)
}

// IsValidationError checks if err wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
