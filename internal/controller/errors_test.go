package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/backend"
	"puspa_backend/internal/util"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"session", util.ErrSessionNotFound, http.StatusNotFound, util.ErrSessionNotFound.Error()},
		{"question", fmt.Errorf("%w: 9", assessment.ErrQuestionNotFound), http.StatusNotFound, "pertanyaan tidak ditemukan: 9"},
		{"loading", util.ErrSessionLoading, http.StatusConflict, util.ErrSessionLoading.Error()},
		{"hidden", assessment.ErrQuestionHidden, http.StatusConflict, assessment.ErrQuestionHidden.Error()},
		{"missing id", assessment.ErrMissingAssessmentID, http.StatusBadRequest, "assessment_id tidak ditemukan"},
		{"range", assessment.ErrOutOfRange, http.StatusBadRequest, assessment.ErrOutOfRange.Error()},
		{"submit", fmt.Errorf("%w: %w", util.ErrSubmitFailed, errors.New("dial")), http.StatusBadGateway, util.ErrSubmitFailed.Error()},
		{"submit with message", fmt.Errorf("%w: %w", util.ErrSubmitFailed, &backend.StatusError{StatusCode: 422, Message: "data anak belum lengkap"}), http.StatusBadGateway, "data anak belum lengkap"},
		{"history", util.ErrHistoryFailed, http.StatusBadGateway, util.ErrHistoryFailed.Error()},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(ctx, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var resp util.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestCurrentUserMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	_, ok := currentUser(ctx)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
