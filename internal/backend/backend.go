package backend

import (
	"context"
	"errors"
	"fmt"
	"puspa_backend/internal/assessment"
)

// Backend 诊所后端：提供题库、接收提交、返回已保存的答案
type Backend interface {
	FetchQuestions(ctx context.Context, category assessment.Category) (assessment.RawSchema, error)
	SubmitAnswers(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType, payload assessment.Payload) error
	FetchHistory(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType) ([]assessment.HistoryRecord, error)
}

var ErrUnavailable = errors.New("layanan asesmen tidak tersedia")

// StatusError 后端返回的非 2xx 响应
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.StatusCode, e.Message)
}

type tokenKey struct{}

type userKey struct{}

// WithToken 把调用方的 bearer token 带到出站请求
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func WithUser(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func UserFrom(ctx context.Context) uint {
	id, _ := ctx.Value(userKey{}).(uint)
	return id
}
