package entity

import "fmt"

// Scope names the endpoint class a limiter protects. Each scope keeps its own
// counters so exhausting one never affects another.
type Scope string

const (
	// ScopeContact is the contact form endpoint
	ScopeContact Scope = "contact"
	// ScopeQuote is the quote request endpoint
	ScopeQuote Scope = "quote"
)

// LimiterKey is a value object that identifies one client within one scope
type LimiterKey struct {
	Scope Scope  // Endpoint class the counter belongs to
	Value string // Client identifier (usually an IP address)
}

// NewLimiterKey creates a key for the given scope and client identifier
func NewLimiterKey(scope Scope, identifier string) LimiterKey {
	return LimiterKey{Scope: scope, Value: identifier}
}

// String returns the storage representation, e.g. "rate_limit:contact:10.0.0.1"
func (k LimiterKey) String() string {
	return fmt.Sprintf("%s%s", ScopePrefix(k.Scope), k.Value)
}

// IsValid validates the value object
func (k LimiterKey) IsValid() bool {
	return k.Scope != "" && k.Value != ""
}

// ScopePrefix returns the storage prefix shared by every key of a scope
func ScopePrefix(scope Scope) string {
	return fmt.Sprintf("rate_limit:%s:", scope)
}
