package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/adapter/http/handler"
	"github.com/mechinsul/leadform/internal/adapter/http/router"
	"github.com/mechinsul/leadform/internal/domain/form"
	"github.com/mechinsul/leadform/internal/infrastructure/metrics"
	"github.com/mechinsul/leadform/internal/usecase/list_leads"
	"github.com/mechinsul/leadform/internal/usecase/submit_lead"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a)
		},
	}
}

func runServe(cmd *cobra.Command, a *app) error {
	if err := a.load(true); err != nil {
		return err
	}
	defer a.sync()
	cfg, log := a.cfg, a.log

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting leadform",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.ServerPort),
		zap.String("rate_limit_store", cfg.RateLimitStore),
		zap.Bool("mail_enabled", cfg.MailEnabled()),
		zap.Bool("admin_enabled", cfg.AdminEnabled()),
	)

	// Storage layer
	storage, err := newRateLimitStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	leads, err := newLeadRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer leads.Close()
	if err := leads.Migrate(ctx); err != nil {
		return err
	}

	// Use case layer
	contactLimiter, quoteLimiter, err := newLimiters(cfg, storage)
	if err != nil {
		return err
	}
	service := submit_lead.NewService(leads, newMailer(cfg, log), form.NewValidator(),
		submit_lead.Recipients{From: cfg.MailFrom, To: cfg.MailTo}, log)

	// HTTP layer
	m := metrics.New()
	r := router.New(router.Deps{
		Log:            log,
		Metrics:        m,
		Leads:          handler.NewLeadHandler(service, m, log, cfg.MaxBodyBytes),
		Admin:          handler.NewAdminHandler(list_leads.NewUseCase(leads), log, contactLimiter, quoteLimiter),
		ContactLimiter: contactLimiter,
		QuoteLimiter:   quoteLimiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AdminTokenHash: cfg.AdminTokenHash,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("Server stopped")
	return nil
}
