package submit_lead

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/form"
	"github.com/mechinsul/leadform/internal/domain/repository"
)

// ErrDeliveryFailed means the lead was neither stored nor emailed
var ErrDeliveryFailed = errors.New("lead could not be stored or delivered")

// Input is one decoded request body plus request metadata
type Input struct {
	Body      any
	IP        string
	UserAgent string
}

// Output reports the validation verdict and, for accepted leads, which side
// effects went through
type Output struct {
	Valid  bool
	Errors map[string]string
	IsSpam bool

	// Silent marks a honeypot hit answered as a success with no side effects
	Silent bool

	LeadID    string
	Persisted bool
	Emailed   bool
}

// Service validates a submission, then stores and emails it. Either side effect
// succeeding is enough for the submission to count as accepted.
type Service struct {
	leads      repository.LeadRepository
	mailer     repository.Mailer
	validator  *form.Validator
	recipients Recipients
	log        *zap.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(leads repository.LeadRepository, mailer repository.Mailer, validator *form.Validator, recipients Recipients, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		leads:      leads,
		mailer:     mailer,
		validator:  validator,
		recipients: recipients,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SubmitContact(ctx context.Context, input Input) (*Output, error) {
	result := s.validator.ValidateContactForm(input.Body)
	if result.Honeypot {
		s.log.Info("Contact honeypot triggered", zap.String("ip", input.IP))
		return &Output{Valid: true, Errors: result.Errors, Silent: true}, nil
	}
	if !result.Valid {
		return &Output{Errors: result.Errors}, nil
	}

	meta := s.meta(input)
	sub := *result.Submission
	return s.deliver(ctx, entity.LeadKindContact,
		func(ctx context.Context) (string, error) { return s.leads.InsertContact(ctx, sub, meta) },
		contactEmail(sub, meta, s.recipients),
	)
}

func (s *Service) SubmitQuote(ctx context.Context, input Input) (*Output, error) {
	result := s.validator.ValidateQuoteForm(input.Body)
	if result.IsSpam {
		s.log.Info("Quote honeypot triggered", zap.String("ip", input.IP))
	}
	if !result.Valid {
		return &Output{Errors: result.Errors, IsSpam: result.IsSpam}, nil
	}

	meta := s.meta(input)
	meta.ElapsedMs = result.ElapsedMs
	meta.FastSubmit = result.FastSubmit()
	sub := *result.Submission
	return s.deliver(ctx, entity.LeadKindQuote,
		func(ctx context.Context) (string, error) { return s.leads.InsertQuote(ctx, sub, meta) },
		quoteEmail(sub, meta, s.recipients),
	)
}

func (s *Service) meta(input Input) entity.SubmissionMeta {
	return entity.SubmissionMeta{
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Timestamp: s.now().UTC(),
	}
}

// deliver runs persistence and notification side by side; neither waits on or
// cancels the other
func (s *Service) deliver(ctx context.Context, kind entity.LeadKind, persist func(context.Context) (string, error), msg entity.EmailMessage) (*Output, error) {
	var (
		g                   errgroup.Group
		leadID              string
		persistErr, mailErr error
	)

	g.Go(func() error {
		leadID, persistErr = persist(ctx)
		return nil
	})
	g.Go(func() error {
		mailErr = s.mailer.Send(ctx, msg)
		return nil
	})
	_ = g.Wait()

	out := &Output{
		Valid:     true,
		Errors:    map[string]string{},
		LeadID:    leadID,
		Persisted: persistErr == nil,
		Emailed:   mailErr == nil,
	}

	if persistErr != nil {
		s.log.Error("Failed to store lead", zap.String("kind", string(kind)), zap.Error(persistErr))
	}
	switch {
	case mailErr == nil:
	case errors.Is(mailErr, repository.ErrMailDisabled):
		s.log.Debug("Lead notification skipped, mail disabled", zap.String("kind", string(kind)))
	default:
		s.log.Error("Failed to send lead notification", zap.String("kind", string(kind)), zap.Error(mailErr))
	}

	if !out.Persisted && !out.Emailed {
		return nil, ErrDeliveryFailed
	}

	s.log.Info("Lead accepted",
		zap.String("kind", string(kind)),
		zap.String("lead_id", leadID),
		zap.Bool("persisted", out.Persisted),
		zap.Bool("emailed", out.Emailed),
	)
	return out, nil
}
