package mail

import (
	"context"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

// Disabled stands in when SMTP_HOST is unset; every send fails with ErrMailDisabled
type Disabled struct{}

func (Disabled) Send(context.Context, entity.EmailMessage) error {
	return ErrMailDisabled
}
