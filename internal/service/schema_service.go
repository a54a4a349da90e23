package service

import (
	"context"
	"puspa_backend/internal/assessment"
	"puspa_backend/pkg/logger"

	"go.uber.org/zap"
)

// SchemaInvalidator 由带缓存的后端实现
type SchemaInvalidator interface {
	Invalidate(ctx context.Context, category assessment.Category) error
}

type SchemaService struct {
	Cache SchemaInvalidator
}

func NewSchemaService(cache SchemaInvalidator) *SchemaService {
	return &SchemaService{Cache: cache}
}

// Invalidate 未启用缓存时什么也不做
func (s *SchemaService) Invalidate(ctx context.Context, category assessment.Category) error {
	if _, err := assessment.LookupProfile(category); err != nil {
		return err
	}
	if s.Cache == nil {
		return nil
	}
	if err := s.Cache.Invalidate(ctx, category); err != nil {
		return err
	}
	logger.Log.Info("Schema cache invalidated", zap.String("category", string(category)))
	return nil
}
