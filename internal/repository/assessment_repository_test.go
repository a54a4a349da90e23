package repository

import (
	"puspa_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB 只生成 SQL，不连接数据库
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "puspa@tcp(127.0.0.1:3306)/puspa?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestAnswersQuery(t *testing.T) {
	db := dryRunDB(t)
	repo := NewAssessmentRepository(db)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []AnswerRow
		return (&AssessmentRepository{DB: tx}).answersQuery("A-1", "umum_parent").Scan(&rows)
	})
	assert.Contains(t, sql, "LEFT JOIN assessment_questions")
	assert.Contains(t, sql, "assessment_answers.assessment_id = 'A-1'")
	assert.Contains(t, sql, "assessment_answers.submission_type = 'umum_parent'")
	assert.Contains(t, sql, "ORDER BY assessment_answers.position asc")
	assert.NotNil(t, repo)
}

func TestSubmissionGetsUUID(t *testing.T) {
	s := &model.AssessmentSubmission{}
	require.NoError(t, s.BeforeCreate(nil))
	assert.Len(t, s.ID, 36)

	s2 := &model.AssessmentSubmission{UUIDBase: model.UUIDBase{ID: "fixed"}}
	require.NoError(t, s2.BeforeCreate(nil))
	assert.Equal(t, "fixed", s2.ID)
}
