package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/model"
	"puspa_backend/internal/repository"
	"strings"
)

// LocalBackend 直接读写本地 MySQL，用于没有诊所后端的部署与开发环境
type LocalBackend struct {
	Repo *repository.AssessmentRepository
}

func NewLocalBackend(repo *repository.AssessmentRepository) *LocalBackend {
	return &LocalBackend{Repo: repo}
}

func (b *LocalBackend) FetchQuestions(ctx context.Context, category assessment.Category) (assessment.RawSchema, error) {
	groups, err := b.Repo.ListGroups(string(category))
	if err != nil {
		return assessment.RawSchema{}, fmt.Errorf("list groups: %w", err)
	}
	return SchemaFromGroups(groups), nil
}

func (b *LocalBackend) SubmitAnswers(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType, payload assessment.Payload) error {
	sub, answers, err := SubmissionFromPayload(assessmentID, submissionType, payload)
	if err != nil {
		return err
	}
	sub.SubmittedBy = UserFrom(ctx)
	return b.Repo.ReplaceAnswers(sub, answers)
}

func (b *LocalBackend) FetchHistory(ctx context.Context, assessmentID string, submissionType assessment.SubmissionType) ([]assessment.HistoryRecord, error) {
	rows, err := b.Repo.ListAnswers(assessmentID, string(submissionType))
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return HistoryFromRows(rows), nil
}

// SchemaFromGroups 把表结构转换成与远端接口相同的原始题库
func SchemaFromGroups(groups []model.AssessmentQuestionGroup) assessment.RawSchema {
	schema := assessment.RawSchema{Groups: make([]assessment.RawGroup, 0, len(groups))}
	for _, g := range groups {
		rg := assessment.RawGroup{
			GroupKey:  g.GroupKey,
			Title:     g.Title,
			Questions: make([]assessment.RawQuestion, 0, len(g.Questions)),
		}
		for _, q := range g.Questions {
			rg.Questions = append(rg.Questions, assessment.RawQuestion{
				ID:             int(q.ID),
				QuestionID:     textJSON(q.QuestionRef),
				QuestionCode:   q.QuestionCode,
				QuestionNumber: textJSON(q.QuestionNumber),
				QuestionText:   q.QuestionText,
				AnswerType:     q.AnswerType,
				AnswerOptions:  storedJSON(q.AnswerOptions),
				ExtraSchema:    storedJSON(q.ExtraSchema),
			})
		}
		schema.Groups = append(schema.Groups, rg)
	}
	return schema
}

// GroupsFromSchema 导入题库时使用，题目原有 id 不保留
func GroupsFromSchema(schema assessment.RawSchema) []model.AssessmentQuestionGroup {
	groups := make([]model.AssessmentQuestionGroup, 0, len(schema.Groups))
	for gi, g := range schema.Groups {
		mg := model.AssessmentQuestionGroup{
			GroupKey: g.GroupKey,
			Title:    g.Title,
			Order:    gi,
		}
		for qi, q := range g.Questions {
			ref := columnText(q.QuestionID)
			if ref == "" && q.ID != 0 {
				ref = fmt.Sprint(q.ID)
			}
			mg.Questions = append(mg.Questions, model.AssessmentQuestion{
				QuestionRef:    ref,
				QuestionCode:   q.QuestionCode,
				QuestionNumber: columnText(q.QuestionNumber),
				QuestionText:   q.QuestionText,
				AnswerType:     q.AnswerType,
				AnswerOptions:  columnText(q.AnswerOptions),
				ExtraSchema:    columnText(q.ExtraSchema),
				Order:          qi,
			})
		}
		groups = append(groups, mg)
	}
	return groups
}

func SubmissionFromPayload(assessmentID string, submissionType assessment.SubmissionType, payload assessment.Payload) (*model.AssessmentSubmission, []model.AssessmentAnswer, error) {
	sub := &model.AssessmentSubmission{
		AssessmentID:   assessmentID,
		SubmissionType: string(submissionType),
	}
	if len(payload.Context) > 0 {
		data, err := json.Marshal(payload.Context)
		if err != nil {
			return nil, nil, fmt.Errorf("encode context: %w", err)
		}
		sub.Context = data
	}

	answers := make([]model.AssessmentAnswer, 0, len(payload.Answers))
	for _, rec := range payload.Answers {
		data, err := json.Marshal(rec.Answer)
		if err != nil {
			return nil, nil, fmt.Errorf("encode answer %d: %w", rec.QuestionID, err)
		}
		answers = append(answers, model.AssessmentAnswer{
			QuestionID: uint(rec.QuestionID),
			Answer:     data,
			Note:       rec.Note,
		})
	}
	return sub, answers, nil
}

func HistoryFromRows(rows []repository.AnswerRow) []assessment.HistoryRecord {
	records := make([]assessment.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, assessment.HistoryRecord{
			QuestionID:     int(row.QuestionID),
			QuestionText:   row.QuestionText,
			QuestionNumber: textJSON(row.QuestionNumber),
			Answer:         row.Answer,
			Note:           row.Note,
		})
	}
	return records
}

func textJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	data, _ := json.Marshal(s)
	return data
}

// storedJSON 列里是合法 JSON 时原样返回，否则作为字符串交给解析层修复
func storedJSON(s string) json.RawMessage {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return textJSON(s)
}

// columnText JSON 字符串去掉引号保存，其余原样保存
func columnText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
