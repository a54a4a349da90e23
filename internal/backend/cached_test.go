package backend

import (
	"context"
	"puspa_backend/internal/assessment"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBackend struct {
	Backend
	calls int
}

func (b *countingBackend) FetchQuestions(ctx context.Context, category assessment.Category) (assessment.RawSchema, error) {
	b.calls++
	return assessment.RawSchema{Groups: []assessment.RawGroup{{GroupKey: string(category)}}}, nil
}

func TestSchemaKey(t *testing.T) {
	assert.Equal(t, "assessment:schema:wicara_oral", SchemaKey(assessment.CategoryWicaraOral))
}

func TestCachedBackendWithoutRedis(t *testing.T) {
	inner := &countingBackend{}
	b := NewCachedBackend(inner, nil, time.Minute)

	schema, err := b.FetchQuestions(context.Background(), assessment.CategoryParentFisio)
	require.NoError(t, err)
	assert.Equal(t, "parent_fisio", schema.Groups[0].GroupKey)
	assert.NoError(t, b.Invalidate(context.Background(), assessment.CategoryParentFisio))
	assert.Equal(t, 1, inner.calls)
}

func TestCachedBackendRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	inner := &countingBackend{}
	b := NewCachedBackend(inner, rdb, time.Minute)

	for i := 0; i < 2; i++ {
		schema, err := b.FetchQuestions(context.Background(), assessment.CategoryParentGeneral)
		require.NoError(t, err)
		assert.Equal(t, "parent_general", schema.Groups[0].GroupKey)
	}
	assert.Equal(t, 2, inner.calls)
}
