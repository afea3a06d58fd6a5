package mail

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

// Throttled caps the outbound message rate so a burst of submissions does not
// trip the relay's own limits. Waiting honours ctx.
type Throttled struct {
	next    repository.Mailer
	limiter *rate.Limiter
}

func NewThrottled(next repository.Mailer, perSecond float64, burst int) *Throttled {
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (t *Throttled) Send(ctx context.Context, msg entity.EmailMessage) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttle: %w", err)
	}
	return t.next.Send(ctx, msg)
}
