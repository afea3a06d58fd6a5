package check_rate_limit

import "time"

// Output represents the result of a rate limit check operation
type Output struct {
	// Allowed indicates whether the request should be permitted to proceed.
	Allowed bool

	// Remaining is the number of admissions left in the current window.
	// Nil when the caller was not identified and no record was consulted.
	Remaining *int

	// RetryAfter is the advisory wait in whole seconds, set only when Allowed is false.
	RetryAfter int

	// ResetAt is the end of the current window. Zero for unidentified callers.
	ResetAt time.Time

	// Limit is the configured maximum number of requests per window.
	Limit int

	// Message is the client-facing explanation, set only when Allowed is false.
	Message string
}
