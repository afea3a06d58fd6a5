package check_rate_limit

import "strings"

// Input represents the input data for rate limit checking (DTO - Data Transfer Object).
// An empty Identifier means the caller could not be identified.
type Input struct {
	Identifier string
}

// Identified reports whether there is a usable client identifier
func (i Input) Identified() bool {
	return i.identifier() != ""
}

func (i Input) identifier() string {
	return strings.TrimSpace(i.Identifier)
}
