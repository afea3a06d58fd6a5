package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/usecase/check_rate_limit"
)

// UseCase interface para permitir mock em testes
type UseCase interface {
	Execute(ctx context.Context, input check_rate_limit.Input) (*check_rate_limit.Output, error)
	Scope() entity.Scope
}

// DecisionRecorder receives one call per admission decision
type DecisionRecorder interface {
	RateLimitDecision(scope string, allowed bool)
}

type RateLimiterMiddleware struct {
	useCase UseCase
	metrics DecisionRecorder
	log     *zap.Logger
}

// NewRateLimiterMiddleware wraps one scope's limiter. metrics may be nil.
func NewRateLimiterMiddleware(useCase UseCase, metrics DecisionRecorder, log *zap.Logger) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		useCase: useCase,
		metrics: metrics,
		log:     log,
	}
}

func (m *RateLimiterMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		scope := string(m.useCase.Scope())

		// 1. Extrai o IP dos headers do proxy; sem IP o limiter admite
		ip, _ := ClientIP(r.Header)

		// 2. Executa use case
		output, err := m.useCase.Execute(ctx, check_rate_limit.Input{Identifier: ip})
		if err != nil {
			// Falha no storage não bloqueia o formulário
			m.log.Error("Rate limiter failed, admitting request",
				zap.String("scope", scope),
				zap.String("ip", ip),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		if m.metrics != nil {
			m.metrics.RateLimitDecision(scope, output.Allowed)
		}
		if output.Remaining != nil {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(output.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(*output.Remaining))
		}

		// 3. Se não permitido, bloqueia com 429
		if !output.Allowed {
			m.log.Warn("Rate limit exceeded",
				zap.String("scope", scope),
				zap.String("ip", ip),
				zap.Int("retry_after", output.RetryAfter),
			)
			m.sendRateLimitExceeded(w, output)
			return
		}

		// 4. Permitido - continua para próximo handler
		next.ServeHTTP(w, r)
	})
}

// sendRateLimitExceeded envia resposta de rate limit exceeded 429
func (m *RateLimiterMiddleware) sendRateLimitExceeded(w http.ResponseWriter, output *check_rate_limit.Output) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(output.RetryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]any{
		"ok":    false,
		"error": output.Message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		m.log.Error("Failed to encode rate limit response", zap.Error(err))
	}
}
