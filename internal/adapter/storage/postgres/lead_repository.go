// Package postgres stores leads in PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

// leadModel is the row shape of the leads table
type leadModel struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	Kind        string    `gorm:"not null;size:16;index:idx_leads_kind_created,priority:1"`
	Name        string    `gorm:"not null;size:100"`
	Company     string    `gorm:"size:200"`
	Email       string    `gorm:"size:254;index"`
	Phone       string    `gorm:"size:20"`
	Message     string    `gorm:"type:text;not null"`
	ServiceType string    `gorm:"size:100"`
	IP          string    `gorm:"size:64"`
	UserAgent   string    `gorm:"type:text"`
	SubmittedAt time.Time `gorm:"not null"`
	ElapsedMs   *int64
	FastSubmit  *bool
	CreatedAt   time.Time `gorm:"not null;index:idx_leads_kind_created,priority:2,sort:desc"`
}

func (leadModel) TableName() string {
	return "leads"
}

// LeadRepository implements repository.LeadRepository on a *gorm.DB
type LeadRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db, now: time.Now}
}

// Migrate creates or updates the leads table
func (r *LeadRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&leadModel{}); err != nil {
		return fmt.Errorf("failed to migrate leads table: %w", err)
	}
	return nil
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
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate lead id: %w", err)
	}
	lead.ID = id.String()
	lead.CreatedAt = r.now().UTC()

	row := toModel(lead)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to insert %s lead: %w", lead.Kind, err)
	}
	return row.ID, nil
}

func (r *LeadRepository) List(ctx context.Context, filter repository.LeadFilter) ([]entity.Lead, error) {
	query := r.db.WithContext(ctx).Model(&leadModel{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []leadModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	leads := make([]entity.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, toEntity(row))
	}
	return leads, nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrLeadNotFound
	}

	var row leadModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead %s: %w", id, err)
	}

	lead := toEntity(row)
	return &lead, nil
}

func (r *LeadRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModel(lead entity.Lead) leadModel {
	return leadModel{
		ID:          lead.ID,
		Kind:        string(lead.Kind),
		Name:        lead.Name,
		Company:     lead.Company,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Message:     lead.Message,
		ServiceType: lead.ServiceType,
		IP:          lead.Meta.IP,
		UserAgent:   lead.Meta.UserAgent,
		SubmittedAt: lead.Meta.Timestamp.UTC(),
		ElapsedMs:   lead.Meta.ElapsedMs,
		FastSubmit:  lead.Meta.FastSubmit,
		CreatedAt:   lead.CreatedAt,
	}
}

func toEntity(row leadModel) entity.Lead {
	return entity.Lead{
		ID:          row.ID,
		Kind:        entity.LeadKind(row.Kind),
		Name:        row.Name,
		Company:     row.Company,
		Email:       row.Email,
		Phone:       row.Phone,
		Message:     row.Message,
		ServiceType: row.ServiceType,
		Meta: entity.SubmissionMeta{
			IP:         row.IP,
			UserAgent:  row.UserAgent,
			Timestamp:  row.SubmittedAt,
			ElapsedMs:  row.ElapsedMs,
			FastSubmit: row.FastSubmit,
		},
		CreatedAt: row.CreatedAt,
	}
}
