package check_rate_limit

import (
	"time"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// ContactPolicy admits 5 contact submissions per client per minute
func ContactPolicy() entity.RateLimitConfig {
	return entity.RateLimitConfig{MaxRequests: 5, Window: time.Minute}
}

// QuotePolicy admits 5 quote requests per client per 15 minutes
func QuotePolicy() entity.RateLimitConfig {
	return entity.RateLimitConfig{MaxRequests: 5, Window: 15 * time.Minute}
}

// PolicyFor returns the default policy of a scope
func PolicyFor(scope entity.Scope) (entity.RateLimitConfig, bool) {
	switch scope {
	case entity.ScopeContact:
		return ContactPolicy(), true
	case entity.ScopeQuote:
		return QuotePolicy(), true
	default:
		return entity.RateLimitConfig{}, false
	}
}
