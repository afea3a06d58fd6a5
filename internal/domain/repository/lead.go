package repository

import (
	"context"
	"errors"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

var (
	ErrLeadNotFound = errors.New("lead not found")

	// ErrMailDisabled is returned by a Mailer with no transport configured
	ErrMailDisabled = errors.New("mail transport not configured")
)

// LeadFilter narrows an admin listing. Zero Kind means every kind.
type LeadFilter struct {
	Kind   entity.LeadKind
	Limit  int
	Offset int
}

// LeadRepository persists submissions and hands back the generated id
type LeadRepository interface {
	InsertContact(ctx context.Context, sub entity.ContactSubmission, meta entity.SubmissionMeta) (string, error)
	InsertQuote(ctx context.Context, sub entity.QuoteSubmission, meta entity.SubmissionMeta) (string, error)

	// List returns leads newest first.
	List(ctx context.Context, filter LeadFilter) ([]entity.Lead, error)

	// Get returns a single lead or ErrLeadNotFound.
	Get(ctx context.Context, id string) (*entity.Lead, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Mailer sends one transactional message
type Mailer interface {
	Send(ctx context.Context, msg entity.EmailMessage) error
}
