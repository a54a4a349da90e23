package repository

import (
	"puspa_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

// ListGroups 按分类读取分组及题目，均按 order 排序
func (r *AssessmentRepository) ListGroups(category string) ([]model.AssessmentQuestionGroup, error) {
	var groups []model.AssessmentQuestionGroup
	err := r.DB.Where("category = ?", category).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, id asc")
		}).
		Order("`order` asc, id asc").
		Find(&groups).Error
	return groups, err
}

// ReplaceGroups 整体替换某个分类的题库
func (r *AssessmentRepository) ReplaceGroups(category string, groups []model.AssessmentQuestionGroup) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.AssessmentQuestionGroup{}).
			Where("category = ?", category).
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		if len(ids) > 0 {
			if err := tx.Unscoped().Where("group_id IN ?", ids).Delete(&model.AssessmentQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", ids).Delete(&model.AssessmentQuestionGroup{}).Error; err != nil {
				return err
			}
		}

		for i := range groups {
			groups[i].Category = category
			if err := tx.Create(&groups[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceAnswers 同一评估、同一提交类型只保留最新一次提交的答案
func (r *AssessmentRepository) ReplaceAnswers(sub *model.AssessmentSubmission, answers []model.AssessmentAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("assessment_id = ? AND submission_type = ?", sub.AssessmentID, sub.SubmissionType).
			Delete(&model.AssessmentAnswer{}).Error; err != nil {
			return err
		}

		sub.AnswerCount = len(answers)
		if err := tx.Create(sub).Error; err != nil {
			return err
		}

		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].SubmissionID = sub.ID
			answers[i].AssessmentID = sub.AssessmentID
			answers[i].SubmissionType = sub.SubmissionType
			answers[i].Position = i
		}
		return tx.CreateInBatches(answers, 100).Error
	})
}

// AnswerRow 答案连同题目文字
type AnswerRow struct {
	model.AssessmentAnswer
	QuestionText   string `gorm:"column:question_text"`
	QuestionNumber string `gorm:"column:question_number"`
}

func (r *AssessmentRepository) ListAnswers(assessmentID, submissionType string) ([]AnswerRow, error) {
	var rows []AnswerRow
	err := r.answersQuery(assessmentID, submissionType).Scan(&rows).Error
	return rows, err
}

func (r *AssessmentRepository) answersQuery(assessmentID, submissionType string) *gorm.DB {
	return r.DB.Table("assessment_answers").
		Select("assessment_answers.*, assessment_questions.question_text, assessment_questions.question_number").
		Joins("LEFT JOIN assessment_questions ON assessment_questions.id = assessment_answers.question_id AND assessment_questions.deleted_at IS NULL").
		Where("assessment_answers.assessment_id = ? AND assessment_answers.submission_type = ?", assessmentID, submissionType).
		Where("assessment_answers.deleted_at IS NULL").
		Order("assessment_answers.position asc")
}
