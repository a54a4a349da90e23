package model

import "encoding/json"

// AssessmentSubmission 一次提交（同一评估、同一类型再次提交时覆盖旧答案）
type AssessmentSubmission struct {
	UUIDBase
	AssessmentID   string          `gorm:"size:64;index:idx_submission_assessment_type;not null" json:"assessmentId"`
	SubmissionType string          `gorm:"size:50;index:idx_submission_assessment_type;not null" json:"submissionType"`
	Context        json.RawMessage `gorm:"type:json" json:"context,omitempty"`
	SubmittedBy    uint            `gorm:"index;type:bigint unsigned" json:"submittedBy"`
	AnswerCount    int             `gorm:"default:0" json:"answerCount"`
}

func (AssessmentSubmission) TableName() string {
	return "assessment_submissions"
}

type AssessmentAnswer struct {
	BaseModel
	SubmissionID   string          `gorm:"index;type:varchar(36)" json:"submissionId"`
	AssessmentID   string          `gorm:"size:64;index:idx_answer_assessment_type;not null" json:"assessmentId"`
	SubmissionType string          `gorm:"size:50;index:idx_answer_assessment_type;not null" json:"submissionType"`
	QuestionID     uint            `gorm:"index;type:bigint unsigned" json:"questionId"`
	Answer         json.RawMessage `gorm:"type:json" json:"answer"`
	Note           *string         `gorm:"type:text" json:"note"`
	Position       int             `gorm:"default:0" json:"position"`
}

func (AssessmentAnswer) TableName() string {
	return "assessment_answers"
}
