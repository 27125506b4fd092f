package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAIResponse indicates the text-generation provider returned
// output that could not be parsed into a classification. It is handled the
// same way as a permanent provider error.
var ErrMalformedAIResponse = errors.New("malformed AI response")

// ProviderError is a failure from an external provider, carrying the HTTP
// status when one was available.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// IsRateLimited reports whether an error looks like a quota or rate-limit
// failure. Only these are worth retrying with backoff.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Status == 429 || pe.Status == 503 {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "503")
}
