package service

import (
	"context"
	"encoding/json"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/backend"
	"sync"
)

type fakeBackend struct {
	mu sync.Mutex

	schema     assessment.RawSchema
	fetchErr   error
	fetchGate  chan struct{}
	submitErr  error
	submitGate chan struct{}
	history    []assessment.HistoryRecord
	historyErr error

	submitted []assessment.Payload
	tokens    []string
}

func (f *fakeBackend) FetchQuestions(ctx context.Context, category assessment.Category) (assessment.RawSchema, error) {
	if f.fetchGate != nil {
		<-f.fetchGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, backend.TokenFrom(ctx))
	return f.schema, f.fetchErr
}

func (f *fakeBackend) SubmitAnswers(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType, payload assessment.Payload) error {
	if f.submitGate != nil {
		<-f.submitGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, payload)
	return nil
}

func (f *fakeBackend) FetchHistory(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType) ([]assessment.HistoryRecord, error) {
	return f.history, f.historyErr
}

func (f *fakeBackend) submissions() []assessment.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]assessment.Payload(nil), f.submitted...)
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func generalSchema() assessment.RawSchema {
	return assessment.RawSchema{Groups: []assessment.RawGroup{
		{
			GroupKey: "kehamilan",
			Title:    "Riwayat Kehamilan",
			Questions: []assessment.RawQuestion{
				{ID: 435, QuestionText: "Kehamilan direncanakan?", AnswerType: "radio", AnswerOptions: raw(`["Ya","Tidak"]`)},
				{ID: 436, QuestionText: "Jelaskan", AnswerType: "text", ExtraSchema: raw(`{"conditional_rules":[{"when":"435","operator":"==","value":"Tidak"}]}`)},
			},
		},
		{
			GroupKey:  "kesehatan",
			Title:     "Riwayat Kesehatan",
			Questions: []assessment.RawQuestion{{ID: 470, QuestionText: "Imunisasi", AnswerType: "radio_with_text"}},
		},
	}}
}
