package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/adapter/mail"
	"github.com/mechinsul/leadform/internal/adapter/storage/memory"
	"github.com/mechinsul/leadform/internal/adapter/storage/postgres"
	redisAdapter "github.com/mechinsul/leadform/internal/adapter/storage/redis"
	"github.com/mechinsul/leadform/internal/domain/entity"
	"github.com/mechinsul/leadform/internal/domain/repository"
	"github.com/mechinsul/leadform/internal/infrastructure/config"
	"github.com/mechinsul/leadform/internal/infrastructure/database"
	infraRedis "github.com/mechinsul/leadform/internal/infrastructure/redis"
	"github.com/mechinsul/leadform/internal/usecase/check_rate_limit"
)

func newRateLimitStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Storage, error) {
	if cfg.RateLimitStore != config.StoreRedis {
		log.Info("Rate limit state kept in process memory")
		return memory.NewStorage(), nil
	}

	client, err := infraRedis.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr()), zap.Int("db", cfg.RedisDB))
	return redisAdapter.NewRedisStorage(client), nil
}

func newLimiters(cfg *config.Config, storage repository.Storage) (contact, quote *check_rate_limit.UseCase, err error) {
	contact, err = check_rate_limit.NewUseCase(entity.ScopeContact, storage, limitPolicy(cfg.Contact))
	if err != nil {
		return nil, nil, err
	}
	quote, err = check_rate_limit.NewUseCase(entity.ScopeQuote, storage, limitPolicy(cfg.Quote))
	if err != nil {
		return nil, nil, err
	}
	return contact, quote, nil
}

func limitPolicy(c config.LimitConfig) entity.RateLimitConfig {
	return entity.RateLimitConfig{MaxRequests: c.Limit, Window: c.Window}
}

func newLeadRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.LeadRepository, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, leads are kept in memory and lost on restart")
		return memory.NewLeadRepository(), nil
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxRetries, log)
	if err != nil {
		return nil, err
	}
	return postgres.NewLeadRepository(db), nil
}

// requireDatabase guards commands that only make sense against a shared store
func requireDatabase(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set; in-memory leads live inside the server process")
	}
	return nil
}

func newMailer(cfg *config.Config, log *zap.Logger) repository.Mailer {
	if !cfg.MailEnabled() {
		log.Warn("SMTP_HOST not set, lead notifications are disabled")
		return mail.Disabled{}
	}
	smtp := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return mail.NewThrottled(smtp, cfg.MailRatePerSecond, cfg.MailBurst)
}
