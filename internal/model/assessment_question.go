package model

// AssessmentQuestionGroup 题库中的一个分组，按分类（parent_general、wicara_oral…）组织
type AssessmentQuestionGroup struct {
	BaseModel
	Category  string               `gorm:"size:50;index:idx_group_category_key,unique;not null" json:"category"`
	GroupKey  string               `gorm:"size:100;index:idx_group_category_key,unique;not null" json:"groupKey"`
	Title     string               `gorm:"size:255" json:"title"`
	Order     int                  `gorm:"default:0" json:"order"`
	Questions []AssessmentQuestion `gorm:"foreignKey:GroupID" json:"questions,omitempty"`
}

func (AssessmentQuestionGroup) TableName() string {
	return "assessment_question_groups"
}

// AssessmentQuestion 题目。AnswerOptions / ExtraSchema 原样保存，可能是编码过的 JSON 文本
type AssessmentQuestion struct {
	BaseModel
	GroupID        uint   `gorm:"index;type:bigint unsigned" json:"groupId"`
	QuestionRef    string `gorm:"size:100" json:"questionId"`
	QuestionCode   string `gorm:"size:100;index" json:"questionCode"`
	QuestionNumber string `gorm:"size:20" json:"questionNumber"`
	QuestionText   string `gorm:"type:text;not null" json:"questionText"`
	AnswerType     string `gorm:"size:50;not null" json:"answerType"`
	AnswerOptions  string `gorm:"type:text" json:"answerOptions"`
	ExtraSchema    string `gorm:"type:text" json:"extraSchema"`
	Order          int    `gorm:"default:0" json:"order"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}
