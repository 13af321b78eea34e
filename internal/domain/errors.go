package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey      = errors.New("gemini api key is not configured")
	ErrRateLimitExhausted = errors.New("rate limited by upstream, retries exhausted")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNotGroupProfile    = errors.New("profile is not a group")
	ErrNotIndividual      = errors.New("profile is not an individual companion")
	ErrMissingPrompt      = errors.New("prompt is empty")
	ErrMissingPersona     = errors.New("persona is missing a name")
	ErrGroupTooSmall      = errors.New("group needs at least two members")
	ErrChatFull           = errors.New("chat reached the ambient message cap")
	ErrAlreadyGreeted     = errors.New("profile was already greeted")
)

// UpstreamError is a non-OK, non-429 response from the generation API.
// It is never retried.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream api error: %d: %s", e.Status, e.Body)
}
