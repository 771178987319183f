package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MinShortIDLength is the minimum length of an id prefix.
// Shorter inputs are only ever matched exactly.
const MinShortIDLength = 3

// ResolveEntityID resolves user input to one of the known ids.
//
// The function handles three cases:
// 1. Input equals a known id - returned as-is, even if it is also a prefix of others
// 2. Input is too short (< MinShortIDLength) - NotFoundError
// 3. Input is a prefix - the unique match, or AmbiguousError
func ResolveEntityID(known []string, input string) (string, error) {
	input = strings.TrimSpace(input)

	for _, id := range known {
		if id == input {
			return id, nil
		}
	}

	if len(input) < MinShortIDLength {
		return "", &NotFoundError{ShortID: input}
	}

	var matches []string
	for _, id := range known {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: input}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguousError{ShortID: input, Matches: matches}
	}
}

// NotFoundError indicates no entity matched the input.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no entities found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple entities matched the prefix.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d entities", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous prefixes.
// Lists all matching ids (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous short ID '%s' matches %d entities:\n", err.ShortID, len(err.Matches))

	displayCount := min(len(err.Matches), 10)
	for i := 0; i < displayCount; i++ {
		fmt.Fprintf(&b, "  %s\n", err.Matches[i])
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-10)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the entity.")
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}
