package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
	"github.com/mechinsul/leadform/internal/usecase/list_leads"
)

// LeadReader is the admin listing use case
type LeadReader interface {
	Execute(ctx context.Context, input list_leads.Input) (*list_leads.Output, error)
	Get(ctx context.Context, id string) (*entity.Lead, error)
}

// Limiter is the administrative surface of one scope's rate limiter
type Limiter interface {
	Scope() entity.Scope
	GetState(ctx context.Context, identifier string) (*entity.RateLimitRecord, error)
	Reset(ctx context.Context, identifier string) error
	ClearAll(ctx context.Context) error
	GetConfig() entity.RateLimitConfig
	UpdateConfig(patch entity.RateLimitConfigPatch) error
}

type leadsResponse struct {
	OK bool `json:"ok"`
	*list_leads.Output
}

type leadResponse struct {
	OK   bool         `json:"ok"`
	Lead *entity.Lead `json:"lead"`
}

type rateLimitConfigResponse struct {
	OK          bool   `json:"ok"`
	Scope       string `json:"scope"`
	MaxRequests int    `json:"maxRequests"`
	WindowMs    int64  `json:"windowMs"`
}

type rateLimitRecordView struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

type rateLimitStateResponse struct {
	OK         bool                 `json:"ok"`
	Scope      string               `json:"scope"`
	Identifier string               `json:"identifier"`
	Record     *rateLimitRecordView `json:"record"`
}

// rateLimitConfigPatch is the PATCH body; omitted fields stay unchanged
type rateLimitConfigPatch struct {
	MaxRequests *int   `json:"maxRequests"`
	WindowMs    *int64 `json:"windowMs"`
}

// AdminHandler serves /api/admin. Authentication happens in middleware.
type AdminHandler struct {
	leads    LeadReader
	limiters map[entity.Scope]Limiter
	log      *zap.Logger
}

func NewAdminHandler(leads LeadReader, log *zap.Logger, limiters ...Limiter) *AdminHandler {
	byScope := make(map[entity.Scope]Limiter, len(limiters))
	for _, l := range limiters {
		byScope[l.Scope()] = l
	}
	return &AdminHandler{leads: leads, limiters: byScope, log: log}
}

// RegisterRoutes mounts the admin endpoints on r
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leads", h.ListLeads)
	r.Get("/leads/{id}", h.GetLead)
	r.Route("/rate-limits/{scope}", func(r chi.Router) {
		r.Get("/", h.GetRateLimitConfig)
		r.Patch("/", h.UpdateRateLimitConfig)
		r.Delete("/", h.ClearRateLimits)
		r.Get("/{identifier}", h.GetRateLimitState)
		r.Delete("/{identifier}", h.ResetRateLimit)
	})
}

func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	input := list_leads.Input{Kind: query.Get("kind")}
	fieldErrs := map[string]string{}

	for name, dst := range map[string]*int{"limit": &input.Limit, "offset": &input.Offset} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrs[name] = "must be an integer"
			continue
		}
		*dst = n
	}
	if len(fieldErrs) > 0 {
		respondWithErrors(w, h.log, http.StatusBadRequest, fieldErrs)
		return
	}

	out, err := h.leads.Execute(r.Context(), input)
	if err != nil {
		var inputErr *list_leads.InputError
		if errors.As(err, &inputErr) {
			respondWithErrors(w, h.log, http.StatusBadRequest, inputErr.Fields)
			return
		}
		h.log.Error("Failed to list leads", zap.Error(err))
		respondWithError(w, h.log, http.StatusInternalServerError, GenericErrorMessage)
		return
	}

	respondWithJSON(w, h.log, http.StatusOK, leadsResponse{OK: true, Output: out})
}

func (h *AdminHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrLeadNotFound) {
		respondWithError(w, h.log, http.StatusNotFound, "Lead not found")
		return
	}
	if err != nil {
		h.log.Error("Failed to get lead", zap.Error(err))
		respondWithError(w, h.log, http.StatusInternalServerError, GenericErrorMessage)
		return
	}

	respondWithJSON(w, h.log, http.StatusOK, leadResponse{OK: true, Lead: lead})
}

func (h *AdminHandler) GetRateLimitConfig(w http.ResponseWriter, r *http.Request) {
	limiter, ok := h.limiter(w, r)
	if !ok {
		return
	}
	h.respondWithConfig(w, limiter)
}

func (h *AdminHandler) UpdateRateLimitConfig(w http.ResponseWriter, r *http.Request) {
	limiter, ok := h.limiter(w, r)
	if !ok {
		return
	}

	var body rateLimitConfigPatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := entity.RateLimitConfigPatch{MaxRequests: body.MaxRequests}
	if body.WindowMs != nil {
		window := time.Duration(*body.WindowMs) * time.Millisecond
		patch.Window = &window
	}
	if err := limiter.UpdateConfig(patch); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info("Rate limit config updated",
		zap.String("scope", string(limiter.Scope())),
		zap.Int("max_requests", limiter.GetConfig().MaxRequests),
		zap.Duration("window", limiter.GetConfig().Window),
	)
	h.respondWithConfig(w, limiter)
}

func (h *AdminHandler) ClearRateLimits(w http.ResponseWriter, r *http.Request) {
	limiter, ok := h.limiter(w, r)
	if !ok {
		return
	}
	if err := limiter.ClearAll(r.Context()); err != nil {
		h.log.Error("Failed to clear rate limits", zap.String("scope", string(limiter.Scope())), zap.Error(err))
		respondWithError(w, h.log, http.StatusInternalServerError, GenericErrorMessage)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, submitResponse{OK: true})
}

func (h *AdminHandler) GetRateLimitState(w http.ResponseWriter, r *http.Request) {
	limiter, ok := h.limiter(w, r)
	if !ok {
		return
	}

	identifier := chi.URLParam(r, "identifier")
	record, err := limiter.GetState(r.Context(), identifier)
	if err != nil {
		h.log.Error("Failed to read rate limit state", zap.String("scope", string(limiter.Scope())), zap.Error(err))
		respondWithError(w, h.log, http.StatusInternalServerError, GenericErrorMessage)
		return
	}

	resp := rateLimitStateResponse{OK: true, Scope: string(limiter.Scope()), Identifier: identifier}
	if record != nil {
		resp.Record = &rateLimitRecordView{Count: record.Count, ResetAt: record.ResetAt.UTC()}
	}
	respondWithJSON(w, h.log, http.StatusOK, resp)
}

func (h *AdminHandler) ResetRateLimit(w http.ResponseWriter, r *http.Request) {
	limiter, ok := h.limiter(w, r)
	if !ok {
		return
	}
	if err := limiter.Reset(r.Context(), chi.URLParam(r, "identifier")); err != nil {
		h.log.Error("Failed to reset rate limit", zap.String("scope", string(limiter.Scope())), zap.Error(err))
		respondWithError(w, h.log, http.StatusInternalServerError, GenericErrorMessage)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, submitResponse{OK: true})
}

func (h *AdminHandler) limiter(w http.ResponseWriter, r *http.Request) (Limiter, bool) {
	limiter, ok := h.limiters[entity.Scope(chi.URLParam(r, "scope"))]
	if !ok {
		respondWithError(w, h.log, http.StatusNotFound, "Unknown rate limit scope")
	}
	return limiter, ok
}

func (h *AdminHandler) respondWithConfig(w http.ResponseWriter, limiter Limiter) {
	config := limiter.GetConfig()
	respondWithJSON(w, h.log, http.StatusOK, rateLimitConfigResponse{
		OK:          true,
		Scope:       string(limiter.Scope()),
		MaxRequests: config.MaxRequests,
		WindowMs:    config.Window.Milliseconds(),
	})
}
