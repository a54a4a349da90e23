package service

import (
	"context"
	"errors"
	"fmt"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/backend"
	"puspa_backend/internal/config"
	"puspa_backend/internal/util"
	"puspa_backend/pkg/logger"
	"puspa_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	NavigateNext = "next"
	NavigatePrev = "prev"
	NavigateJump = "jump"
)

type OpenSessionRequest struct {
	Category string `json:"category" binding:"required"`
}

type NavigateRequest struct {
	Action string `json:"action" binding:"required,oneof=next prev jump"`
	Key    string `json:"key"`
}

type ContextRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SessionState 返回给前端的会话状态，题库加载完成前 View 为空
type SessionState struct {
	ID           string              `json:"session_id"`
	Category     assessment.Category `json:"category"`
	AssessmentID string              `json:"assessment_id"`
	Loading      bool                `json:"loading"`
	Submitting   bool                `json:"submitting"`
	Error        string              `json:"error,omitempty"`
	View         *assessment.View    `json:"view,omitempty"`
}

type sessionEntry struct {
	mu           sync.Mutex
	id           string
	owner        uint
	profile      assessment.Profile
	assessmentID string
	session      *assessment.Session
	loading      bool
	submitting   bool
	loadErr      error
	closed       bool
}

func (e *sessionEntry) state() SessionState {
	st := SessionState{
		ID:           e.id,
		Category:     e.profile.Category,
		AssessmentID: e.assessmentID,
		Loading:      e.loading,
		Submitting:   e.submitting,
	}
	if e.loadErr != nil {
		st.Error = util.ErrSchemaLoadFailed.Error()
	}
	if e.session != nil {
		v := e.session.View()
		st.View = &v
	}
	return st
}

func (e *sessionEntry) ready() (*assessment.Session, error) {
	switch {
	case e.loading:
		return nil, util.ErrSessionLoading
	case e.loadErr != nil:
		return nil, util.ErrSchemaLoadFailed
	case e.session == nil:
		return nil, util.ErrSessionNotFound
	}
	return e.session, nil
}

// mutable 提交进行中不接受修改
func (e *sessionEntry) mutable() (*assessment.Session, error) {
	sess, err := e.ready()
	if err != nil {
		return nil, err
	}
	if e.submitting {
		return nil, util.ErrSubmitInProgress
	}
	return sess, nil
}

// SessionService 内存中的评估会话表。同一会话的调用串行执行，淘汰即销毁
type SessionService struct {
	Backend backend.Backend
	Ranges  *RangeStore

	sessions      *lru.Cache[string, *sessionEntry]
	loadTimeout   time.Duration
	submitTimeout time.Duration
	wg            sync.WaitGroup
}

func NewSessionService(b backend.Backend, ranges *RangeStore, cfg config.SessionConfig) (*SessionService, error) {
	size := cfg.MaxActive
	if size <= 0 {
		size = 1000
	}

	s := &SessionService{
		Backend:       b,
		Ranges:        ranges,
		loadTimeout:   cfg.LoadTimeout(),
		submitTimeout: cfg.SubmitTimeout(),
	}
	cache, err := lru.NewWithEvict[string, *sessionEntry](size, s.onEvict)
	if err != nil {
		return nil, err
	}
	s.sessions = cache
	return s, nil
}

func (s *SessionService) onEvict(id string, e *sessionEntry) {
	e.mu.Lock()
	e.closed = true
	e.session = nil
	e.mu.Unlock()

	monitoring.ActiveSessions.Dec()
	logger.Log.Debug("Assessment session closed", zap.String("session", id))
}

func (s *SessionService) lookup(userID uint, id string) (*sessionEntry, error) {
	e, ok := s.sessions.Get(id)
	if !ok || e.owner != userID {
		return nil, util.ErrSessionNotFound
	}
	return e, nil
}

// Open 创建会话并在后台拉取题库
func (s *SessionService) Open(ctx context.Context, userID uint, token, assessmentID string, category assessment.Category) (SessionState, error) {
	profile, err := assessment.LookupProfile(category)
	if err != nil {
		return SessionState{}, err
	}

	e := &sessionEntry{
		id:           uuid.NewString(),
		owner:        userID,
		profile:      profile,
		assessmentID: assessmentID,
		loading:      true,
	}
	st := e.state()

	s.sessions.Add(e.id, e)
	monitoring.ActiveSessions.Inc()

	s.wg.Add(1)
	go s.load(ctx, e, token)

	logger.Log.Info("Assessment session opened",
		zap.String("session", e.id),
		zap.String("category", string(category)),
		zap.String("assessment", assessmentID),
		zap.Uint("user", userID))
	return st, nil
}

func (s *SessionService) load(parent context.Context, e *sessionEntry, token string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.loadTimeout)
	defer cancel()
	ctx = backend.WithUser(backend.WithToken(ctx, token), e.owner)

	raw, err := s.Backend.FetchQuestions(ctx, e.profile.Category)
	var sess *assessment.Session
	if err == nil {
		sess, err = assessment.NewSession(e.profile, e.assessmentID, raw, s.Ranges.Get())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		logger.Log.Debug("Dropping schema for closed session", zap.String("session", e.id))
		return
	}
	e.loading = false
	if err != nil {
		e.loadErr = err
		logger.Log.Warn("Failed to load assessment questions",
			zap.String("session", e.id),
			zap.String("category", string(e.profile.Category)),
			zap.Error(err))
		return
	}
	e.session = sess
}

func (s *SessionService) Get(userID uint, id string) (SessionState, error) {
	e, err := s.lookup(userID, id)
	if err != nil {
		return SessionState{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(), nil
}

func (s *SessionService) Answers(userID uint, id string) (map[int]any, error) {
	e, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.ready()
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

func (s *SessionService) Apply(userID uint, id string, questionID int, ev assessment.Event) (SessionState, error) {
	return s.mutate(userID, id, func(sess *assessment.Session) error {
		return sess.Apply(questionID, ev)
	})
}

func (s *SessionService) SetContext(userID uint, id string, req ContextRequest) (SessionState, error) {
	return s.mutate(userID, id, func(sess *assessment.Session) error {
		return sess.SetContext(req.Field, req.Value)
	})
}

// Navigate 越界的移动直接忽略
func (s *SessionService) Navigate(userID uint, id string, req NavigateRequest) (SessionState, error) {
	return s.mutate(userID, id, func(sess *assessment.Session) error {
		switch req.Action {
		case NavigateNext:
			sess.Next()
		case NavigatePrev:
			sess.Prev()
		case NavigateJump:
			sess.JumpTo(req.Key)
		default:
			return fmt.Errorf("%w: action %q", assessment.ErrInvalidInput, req.Action)
		}
		return nil
	})
}

func (s *SessionService) mutate(userID uint, id string, fn func(*assessment.Session) error) (SessionState, error) {
	e, err := s.lookup(userID, id)
	if err != nil {
		return SessionState{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.mutable()
	if err != nil {
		return SessionState{}, err
	}
	if err := fn(sess); err != nil {
		return SessionState{}, err
	}
	return e.state(), nil
}

// Submit 成功后会话被销毁；失败时保留答案，由用户重新提交
func (s *SessionService) Submit(ctx context.Context, userID uint, token, id string) error {
	e, err := s.lookup(userID, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	sess, err := e.mutable()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	payload, err := sess.Payload()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.submitting = true
	submissionType := e.profile.SubmissionType
	assessmentID := sess.AssessmentID()
	e.mu.Unlock()

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout)
	defer cancel()
	sctx = backend.WithUser(backend.WithToken(sctx, token), userID)

	err = s.Backend.SubmitAnswers(sctx, assessmentID, submissionType, payload)

	e.mu.Lock()
	e.submitting = false
	closed := e.closed
	e.mu.Unlock()

	if err != nil {
		monitoring.Submissions.WithLabelValues(string(submissionType), "failure").Inc()
		logger.Log.Error("Assessment submission failed",
			zap.String("session", id),
			zap.String("assessment", assessmentID),
			zap.String("type", string(submissionType)),
			zap.Error(err))
		return fmt.Errorf("%w: %w", util.ErrSubmitFailed, err)
	}

	monitoring.Submissions.WithLabelValues(string(submissionType), "success").Inc()
	logger.Log.Info("Assessment submitted",
		zap.String("session", id),
		zap.String("assessment", assessmentID),
		zap.String("type", string(submissionType)),
		zap.Int("answers", len(payload.Answers)))

	if !closed {
		s.sessions.Remove(id)
	}
	return nil
}

func (s *SessionService) Close(userID uint, id string) error {
	if _, err := s.lookup(userID, id); err != nil {
		return err
	}
	s.sessions.Remove(id)
	return nil
}

func (s *SessionService) Len() int {
	return s.sessions.Len()
}

// Shutdown 销毁全部会话并等待后台加载结束
func (s *SessionService) Shutdown(ctx context.Context) error {
	s.sessions.Purge()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("session loads still pending"), ctx.Err())
	}
}
