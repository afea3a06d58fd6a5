package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

// LeadRepository keeps leads in process memory. Used when DATABASE_URL is unset.
type LeadRepository struct {
	mu    sync.RWMutex
	leads []entity.Lead
	now   func() time.Time
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{now: time.Now}
}

func (r *LeadRepository) InsertContact(ctx context.Context, sub entity.ContactSubmission, meta entity.SubmissionMeta) (string, error) {
	return r.insert(ctx, entity.Lead{
		Kind:    entity.LeadKindContact,
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
		Meta:    meta,
	})
}

func (r *LeadRepository) InsertQuote(ctx context.Context, sub entity.QuoteSubmission, meta entity.SubmissionMeta) (string, error) {
	return r.insert(ctx, entity.Lead{
		Kind:        entity.LeadKindQuote,
		Name:        sub.Name,
		Company:     sub.Company,
		Email:       sub.Email,
		Phone:       sub.Phone,
		Message:     sub.Message,
		ServiceType: sub.ServiceType,
		Meta:        meta,
	})
}

func (r *LeadRepository) insert(ctx context.Context, lead entity.Lead) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate lead id: %w", err)
	}
	lead.ID = id.String()
	lead.CreatedAt = r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, lead)
	return lead.ID, nil
}

func (r *LeadRepository) List(ctx context.Context, filter repository.LeadFilter) ([]entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]entity.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		if filter.Kind == "" || lead.Kind == filter.Kind {
			matched = append(matched, lead)
		}
	}
	r.mu.RUnlock()

	// newest first; uuid v7 ids break ties in insertion order
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.Offset >= len(matched) {
		return []entity.Lead{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lead := range r.leads {
		if lead.ID == id {
			found := lead
			return &found, nil
		}
	}
	return nil, repository.ErrLeadNotFound
}

// Migrate is a no-op; there is no schema
func (r *LeadRepository) Migrate(context.Context) error {
	return nil
}

func (r *LeadRepository) Close() error {
	return nil
}
