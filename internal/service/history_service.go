package service

import (
	"context"
	"fmt"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/backend"
	"puspa_backend/internal/util"
	"puspa_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type HistoryResult struct {
	Category       assessment.Category       `json:"category"`
	SubmissionType assessment.SubmissionType `json:"submission_type"`
	AssessmentID   string                    `json:"assessment_id"`
	Groups         []assessment.HistoryGroup `json:"groups"`
}

type HistoryService struct {
	Backend backend.Backend
	Ranges  *RangeStore
}

func NewHistoryService(b backend.Backend, ranges *RangeStore) *HistoryService {
	return &HistoryService{Backend: b, Ranges: ranges}
}

// Get 拉取题库与已提交答案并按分类的分组方式重建
func (s *HistoryService) Get(ctx context.Context, userID uint, token, assessmentID string, category assessment.Category) (*HistoryResult, error) {
	profile, err := assessment.LookupProfile(category)
	if err != nil {
		return nil, err
	}
	profile = profile.HistoryView()
	ctx = backend.WithUser(backend.WithToken(ctx, token), userID)

	var (
		raw     assessment.RawSchema
		records []assessment.HistoryRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = s.Backend.FetchQuestions(gctx, profile.Category)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.Backend.FetchHistory(gctx, assessmentID, profile.SubmissionType)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Log.Warn("Failed to load assessment history",
			zap.String("assessment", assessmentID),
			zap.String("category", string(category)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", util.ErrHistoryFailed, err)
	}

	schema := assessment.ParseSchema(string(profile.Category), raw, profile.Bootstrap)
	ranges := s.Ranges.Get()
	groups := assessment.Reconstruct(records, schema, assessment.GroupingFor(profile, schema, ranges), profile.LayoutHints)

	return &HistoryResult{
		Category:       profile.Category,
		SubmissionType: profile.SubmissionType,
		AssessmentID:   assessmentID,
		Groups:         groups,
	}, nil
}
