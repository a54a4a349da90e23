package backend

import (
	"context"
	"encoding/json"
	"errors"
	"puspa_backend/internal/assessment"
	"puspa_backend/pkg/logger"
	"puspa_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const schemaKeyPrefix = "assessment:schema:"

// CachedBackend 在 Redis 中缓存题库，提交与历史直接透传
type CachedBackend struct {
	Backend
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedBackend(inner Backend, rdb *redis.Client, ttl time.Duration) *CachedBackend {
	return &CachedBackend{Backend: inner, rdb: rdb, ttl: ttl}
}

func SchemaKey(category assessment.Category) string {
	return schemaKeyPrefix + string(category)
}

func (b *CachedBackend) FetchQuestions(ctx context.Context, category assessment.Category) (assessment.RawSchema, error) {
	if b.rdb == nil {
		return b.Backend.FetchQuestions(ctx, category)
	}

	key := SchemaKey(category)
	data, err := b.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var schema assessment.RawSchema
		if err := json.Unmarshal(data, &schema); err == nil {
			monitoring.SchemaCache.WithLabelValues("hit").Inc()
			return schema, nil
		}
		logger.Log.Warn("Discarding unreadable cached schema", zap.String("key", key))
		monitoring.SchemaCache.WithLabelValues("miss").Inc()
	case errors.Is(err, redis.Nil):
		monitoring.SchemaCache.WithLabelValues("miss").Inc()
	default:
		// Redis 不可用时直接走后端
		logger.Log.Warn("Schema cache read failed", zap.String("key", key), zap.Error(err))
		monitoring.SchemaCache.WithLabelValues("error").Inc()
	}

	schema, err := b.Backend.FetchQuestions(ctx, category)
	if err != nil {
		return schema, err
	}

	if data, err := json.Marshal(schema); err == nil {
		if err := b.rdb.Set(ctx, key, data, b.ttl).Err(); err != nil {
			logger.Log.Warn("Schema cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return schema, nil
}

// Invalidate 题库导入后清掉对应分类的缓存
func (b *CachedBackend) Invalidate(ctx context.Context, category assessment.Category) error {
	if b.rdb == nil {
		return nil
	}
	return b.rdb.Del(ctx, SchemaKey(category)).Err()
}
