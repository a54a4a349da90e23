package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"puspa_backend/internal/assessment"
	"puspa_backend/pkg/logger"
	"puspa_backend/pkg/tracing"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

// RemoteBackend 通过 HTTP 调用诊所后端
type RemoteBackend struct {
	baseURL string
	client  *http.Client
}

func NewRemoteBackend(baseURL string, timeout time.Duration) *RemoteBackend {
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: tracing.NewTransport(nil),
		},
	}
}

// FetchQuestions GET /assessments/questions?category=...
func (b *RemoteBackend) FetchQuestions(ctx context.Context, category assessment.Category) (assessment.RawSchema, error) {
	q := url.Values{"category": {string(category)}}
	body, err := b.do(ctx, http.MethodGet, "/assessments/questions?"+q.Encode(), nil)
	if err != nil {
		return assessment.RawSchema{}, err
	}

	return DecodeSchema(body)
}

// SubmitAnswers POST /assessments/{id}/answers?type=...
func (b *RemoteBackend) SubmitAnswers(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType, payload assessment.Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q := url.Values{"type": {string(submissionType)}}
	_, err = b.do(ctx, http.MethodPost, "/assessments/"+url.PathEscape(assessmentID)+"/answers?"+q.Encode(), data)
	return err
}

// FetchHistory GET /assessments/{id}/answers?type=...
func (b *RemoteBackend) FetchHistory(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType) ([]assessment.HistoryRecord, error) {
	q := url.Values{"type": {string(submissionType)}}
	body, err := b.do(ctx, http.MethodGet, "/assessments/"+url.PathEscape(assessmentID)+"/answers?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return DecodeHistory(body)
}

// DecodeSchema 解析题库响应，也用于读取本地题库文件
func DecodeSchema(body []byte) (assessment.RawSchema, error) {
	groups, err := extractList(body, "groups")
	if err != nil {
		return assessment.RawSchema{}, fmt.Errorf("decode questions: %w", err)
	}

	var schema assessment.RawSchema
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &schema.Groups); err != nil {
			return assessment.RawSchema{}, fmt.Errorf("decode questions: %w", err)
		}
	}
	return schema, nil
}

func DecodeHistory(body []byte) ([]assessment.HistoryRecord, error) {
	list, err := extractList(body, "answers")
	if err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	var records []assessment.HistoryRecord
	if len(list) > 0 {
		if err := json.Unmarshal(list, &records); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	return records, nil
}

func (b *RemoteBackend) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		logger.Log.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	logger.Log.Debug("Backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage 读取错误响应里的 message / error 字段
func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// extractList 兼容几种响应包裹：{data:{key:[...]}}、{key:[...]}、{data:[...]}、[...]
func extractList(body []byte, key string) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		return body, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	if data, ok := env["data"]; ok {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '[' {
			return data, nil
		}
		var inner map[string]json.RawMessage
		if len(data) > 0 && data[0] == '{' {
			if err := json.Unmarshal(data, &inner); err != nil {
				return nil, err
			}
			if list, ok := inner[key]; ok {
				return list, nil
			}
		}
	}
	if list, ok := env[key]; ok {
		return list, nil
	}
	return nil, nil
}
