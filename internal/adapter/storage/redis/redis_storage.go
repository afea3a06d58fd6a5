package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mechinsul/leadform/internal/domain/entity"
)

const (
	fieldCount   = "count"
	fieldResetAt = "reset_at"

	// expiryGrace mantém a chave um pouco além de reset_at, so a request landing
	// exactly on the boundary still sees the old window
	expiryGrace = time.Second

	scanBatch = 100
)

// RedisStorage implementa a interface repository.Storage usando Redis como backend.
// Each key is a hash with the window count and its end in Unix milliseconds.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage cria uma nova instância de RedisStorage usando dependency injection
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client: client,
	}
}

// Close fecha a conexão com o Redis
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Get implementa o método da interface Storage
func (r *RedisStorage) Get(ctx context.Context, key entity.LimiterKey) (*entity.RateLimitRecord, error) {
	keyStr := key.String()

	values, err := r.client.HMGet(ctx, keyStr, fieldCount, fieldResetAt).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read record for key %s: %w", keyStr, err)
	}

	record, err := parseRecord(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record for key %s: %w", keyStr, err)
	}
	return record, nil
}

// Set implementa o método da interface Storage.
// The key expires shortly after record.ResetAt; ttl is not needed because the
// window end is already absolute.
func (r *RedisStorage) Set(ctx context.Context, key entity.LimiterKey, record *entity.RateLimitRecord, _ time.Duration) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	keyStr := key.String()

	err := writeRecordScript.Run(
		ctx,
		r.client,
		[]string{keyStr}, // KEYS
		record.Count, record.ResetAt.UnixMilli(), record.ResetAt.Add(expiryGrace).UnixMilli(), // ARGV
	).Err()
	if err != nil {
		return fmt.Errorf("failed to write record for key %s: %w", keyStr, err)
	}
	return nil
}

// Delete implementa o método da interface Storage
func (r *RedisStorage) Delete(ctx context.Context, key entity.LimiterKey) error {
	if err := r.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key.String(), err)
	}
	return nil
}

// Clear remove todas as chaves do escopo usando SCAN, never KEYS, so a large
// keyspace does not block the server
func (r *RedisStorage) Clear(ctx context.Context, scope entity.Scope) error {
	pattern := entity.ScopePrefix(scope) + "*"
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to clear scope %s: %w", scope, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan scope %s: %w", scope, err)
	}

	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear scope %s: %w", scope, err)
		}
	}
	return nil
}

// parseRecord converte a resposta do HMGET; a missing hash yields nil
func parseRecord(values []interface{}) (*entity.RateLimitRecord, error) {
	if len(values) != 2 {
		return nil, fmt.Errorf("expected 2 fields, got: %d", len(values))
	}
	if values[0] == nil || values[1] == nil {
		return nil, nil
	}

	count, err := parseInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", fieldCount, err)
	}
	resetAtMs, err := parseInt(values[1])
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", fieldResetAt, err)
	}

	return &entity.RateLimitRecord{
		Count:   int(count),
		ResetAt: time.UnixMilli(resetAtMs).UTC(),
	}, nil
}

// parseInt aceita os tipos que o go-redis devolve para campos de hash
func parseInt(value interface{}) (int64, error) {
	switch v := value.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse '%s': %w", v, err)
		}
		return n, nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected value type %T with value %v", v, v)
	}
}
