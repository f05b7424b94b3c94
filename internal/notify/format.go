// Package notify formats run summaries and delivers them over LINE push
// messaging with bounded retry.
package notify

import (
	"fmt"
	"strings"

	"github.com/wlchen/slipbot/internal/domain"
)

// MaxMessageLength is the LINE push API limit for a single text message.
const MaxMessageLength = 5000

// JoinWithAnd renders items as a comma-joined list with "and" before the
// last element: [] -> "", [A] -> "A", [A B] -> "A and B",
// [A B C] -> "A, B and C".
func JoinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// FormatSummary renders an execution summary as one line, success segment
// first: "Max and Bito Success, Hoya failed". Names keep their original run
// order within each segment. An empty summary renders as the empty string.
func FormatSummary(summary domain.ExecutionSummary) string {
	var successes, failures []string
	for _, r := range summary.Results {
		if r.Success {
			successes = append(successes, r.Exchange)
		} else {
			failures = append(failures, r.Exchange)
		}
	}

	var segments []string
	if len(successes) > 0 {
		segments = append(segments, JoinWithAnd(successes)+" Success")
	}
	if len(failures) > 0 {
		segments = append(segments, JoinWithAnd(failures)+" failed")
	}
	return strings.Join(segments, ", ")
}

// ValidateLength rejects messages over the transport limit. Truncation would
// hide which exchanges ran, so an oversized message is an error instead.
func ValidateLength(message string) error {
	if len(message) > MaxMessageLength {
		return fmt.Errorf("%w: %d chars exceeds limit of %d", domain.ErrMessageTooLong, len(message), MaxMessageLength)
	}
	return nil
}
