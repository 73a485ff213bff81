package sources

import "errors"

// Fetch failures. Errors returned by RedditFetcher wrap exactly one of these.
var (
	ErrUserNotFound  = errors.New("reddit user not found")
	ErrUserSuspended = errors.New("reddit user suspended")
	ErrRateLimited   = errors.New("reddit rate limit exceeded")
	ErrUnavailable   = errors.New("reddit unavailable")
	ErrUnauthorized  = errors.New("reddit credentials rejected")
)
