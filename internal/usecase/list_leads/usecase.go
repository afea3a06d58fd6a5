package list_leads

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

type Output struct {
	Leads  []entity.Lead `json:"leads"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// UseCase serves the admin listing, newest first
type UseCase struct {
	leads    repository.LeadRepository
	validate *validator.Validate
}

func NewUseCase(leads repository.LeadRepository) *UseCase {
	return &UseCase{leads: leads, validate: newValidator()}
}

func (uc *UseCase) Execute(ctx context.Context, input Input) (*Output, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, formatValidationErrors(err)
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	leads, err := uc.leads.List(ctx, repository.LeadFilter{
		Kind:   entity.LeadKind(input.Kind),
		Limit:  limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &Output{Leads: leads, Limit: limit, Offset: input.Offset}, nil
}

// Get returns one lead or repository.ErrLeadNotFound
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	return uc.leads.Get(ctx, id)
}
