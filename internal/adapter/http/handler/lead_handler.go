package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/adapter/http/middleware"
	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/form"
	"github.com/mechinsul/leadform/internal/infrastructure/metrics"
	"github.com/mechinsul/leadform/internal/usecase/submit_lead"
)

// Submitter is the lead intake service
type Submitter interface {
	SubmitContact(ctx context.Context, input submit_lead.Input) (*submit_lead.Output, error)
	SubmitQuote(ctx context.Context, input submit_lead.Input) (*submit_lead.Output, error)
}

// SubmissionRecorder counts submissions by kind and outcome
type SubmissionRecorder interface {
	Submission(kind, outcome string)
}

type submitResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// LeadHandler serves POST /api/contact and POST /api/quote
type LeadHandler struct {
	service      Submitter
	metrics      SubmissionRecorder
	log          *zap.Logger
	maxBodyBytes int64
}

func NewLeadHandler(service Submitter, metrics SubmissionRecorder, log *zap.Logger, maxBodyBytes int64) *LeadHandler {
	return &LeadHandler{
		service:      service,
		metrics:      metrics,
		log:          log,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *LeadHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, entity.LeadKindContact, h.service.SubmitContact)
}

func (h *LeadHandler) Quote(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, entity.LeadKindQuote, h.service.SubmitQuote)
}

func (h *LeadHandler) submit(w http.ResponseWriter, r *http.Request, kind entity.LeadKind, submit func(context.Context, submit_lead.Input) (*submit_lead.Output, error)) {
	body, err := decodeBody(w, r, h.maxBodyBytes)
	switch {
	case errors.Is(err, errBodyTooLarge):
		h.record(kind, metrics.OutcomeInvalid)
		respondWithError(w, h.log, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	case err != nil:
		h.record(kind, metrics.OutcomeInvalid)
		respondWithErrors(w, h.log, http.StatusBadRequest, map[string]string{form.FieldGeneral: form.MsgInvalidBody})
		return
	}

	ip, _ := middleware.ClientIP(r.Header)
	out, err := submit(r.Context(), submit_lead.Input{
		Body:      body,
		IP:        ip,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.log.Error("Lead submission failed", zap.String("kind", string(kind)), zap.Error(err))
		h.record(kind, metrics.OutcomeFailed)
		respondWithError(w, h.log, http.StatusInternalServerError, GenericErrorMessage)
		return
	}

	switch {
	case !out.Valid && out.IsSpam:
		h.record(kind, metrics.OutcomeSpam)
		respondWithErrors(w, h.log, http.StatusBadRequest, out.Errors)
	case !out.Valid:
		h.record(kind, metrics.OutcomeInvalid)
		respondWithErrors(w, h.log, http.StatusBadRequest, out.Errors)
	case out.Silent:
		h.record(kind, metrics.OutcomeSilent)
		respondWithJSON(w, h.log, http.StatusOK, submitResponse{OK: true})
	default:
		h.record(kind, metrics.OutcomeAccepted)
		respondWithJSON(w, h.log, http.StatusOK, submitResponse{OK: true, ID: out.LeadID})
	}
}

func (h *LeadHandler) record(kind entity.LeadKind, outcome string) {
	if h.metrics != nil {
		h.metrics.Submission(string(kind), outcome)
	}
}
